// Package runtime wires the Jyro pipeline together: parse, validate, link,
// compile, and execute, plus the precompiled artifact path.
package runtime

import (
	"context"
	"time"

	"github.com/meschsystems/jyro/pkg/ast"
	"github.com/meschsystems/jyro/pkg/compiler"
	"github.com/meschsystems/jyro/pkg/diagnostics"
	"github.com/meschsystems/jyro/pkg/execution"
	"github.com/meschsystems/jyro/pkg/functions"
	"github.com/meschsystems/jyro/pkg/linker"
	"github.com/meschsystems/jyro/pkg/parser"
	"github.com/meschsystems/jyro/pkg/stdlib"
	"github.com/meschsystems/jyro/pkg/validator"
	"github.com/meschsystems/jyro/pkg/value"
)

// Stage names the pipeline stages reported to the stats collector.
type Stage string

const (
	StageParse       Stage = "parse"
	StageValidate    Stage = "validate"
	StageLink        Stage = "link"
	StageCompile     Stage = "compile"
	StageExecute     Stage = "execute"
	StageDeserialize Stage = "deserialize"
)

// StatsCollector receives per-stage wall-clock durations.
type StatsCollector interface {
	RecordStage(stage Stage, elapsed time.Duration)
}

// Engine hosts compiled programs. It is configured once and may compile and
// execute any number of scripts.
type Engine struct {
	builtins  *functions.Registry
	host      []functions.Function
	limits    *execution.Options
	templates diagnostics.TemplateProvider
	stats     StatsCollector
	logSink   func(string)
}

// Option is a functional option for configuring the Engine.
type Option func(*Engine)

// WithFunctions adds host-authored functions. A host function that shadows
// a builtin wins the binding and produces a FunctionOverride warning.
func WithFunctions(fns ...functions.Function) Option {
	return func(e *Engine) {
		e.host = append(e.host, fns...)
	}
}

// WithLimits installs the resource limiter. Without it programs run
// unbounded.
func WithLimits(opts *execution.Options) Option {
	return func(e *Engine) {
		e.limits = opts
	}
}

// WithTemplates sets the localization template provider.
func WithTemplates(p diagnostics.TemplateProvider) Option {
	return func(e *Engine) {
		e.templates = p
	}
}

// WithStatsCollector sets the per-stage stats sink.
func WithStatsCollector(c StatsCollector) Option {
	return func(e *Engine) {
		e.stats = c
	}
}

// WithLogSink routes the Log builtin to the host.
func WithLogSink(sink func(string)) Option {
	return func(e *Engine) {
		e.logSink = sink
	}
}

// New creates an Engine with the default builtin registry.
func New(opts ...Option) *Engine {
	e := &Engine{builtins: stdlib.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if e.logSink != nil {
		e.host = append(e.host, stdlib.LogFunction(e.logSink))
	}
	return e
}

// Program is a compiled, linked script ready to execute.
type Program struct {
	compiled *compiler.Program
	source   *ast.Program
	warnings []diagnostics.Diagnostic
}

// Warnings returns the non-fatal diagnostics gathered while building the
// program (unreachable code, builtin overrides, and the like).
func (p *Program) Warnings() []diagnostics.Diagnostic {
	return p.warnings
}

func (e *Engine) record(stage Stage, started time.Time) {
	if e.stats != nil {
		e.stats.RecordStage(stage, time.Since(started))
	}
}

// CompileSource runs the front half of the pipeline on source text. On any
// error-severity diagnostic the program is nil and the full list is
// returned; no stage runs past a failing predecessor.
func (e *Engine) CompileSource(source string) (*Program, []diagnostics.Diagnostic) {
	started := time.Now()
	program, diags := parser.Parse(source)
	e.record(StageParse, started)
	if len(diags) > 0 {
		return nil, e.localize(diags)
	}
	return e.build(program)
}

// build validates, links, and compiles a parsed AST.
func (e *Engine) build(program *ast.Program) (*Program, []diagnostics.Diagnostic) {
	started := time.Now()
	vDiags := validator.Validate(program)
	e.record(StageValidate, started)
	if diagnostics.HasErrors(vDiags) {
		return nil, e.localize(vDiags)
	}

	started = time.Now()
	table, overrides := functions.Merge(e.builtins, e.host)
	lDiags := linker.Link(program, table)
	e.record(StageLink, started)
	warnings := append(vDiags, overrides...)
	if diagnostics.HasErrors(lDiags) {
		return nil, e.localize(append(warnings, lDiags...))
	}
	warnings = append(warnings, lDiags...)

	started = time.Now()
	compiled := compiler.Compile(program, table)
	e.record(StageCompile, started)

	return &Program{
		compiled: compiled,
		source:   program,
		warnings: e.localize(warnings),
	}, nil
}

// Execute runs a compiled program against the input value. Runtime
// failures come back as a *diagnostics.ScriptError; use Diagnose to turn
// one into a wire-format diagnostic.
func (e *Engine) Execute(ctx context.Context, p *Program, data value.Value) (*compiler.Result, error) {
	started := time.Now()
	result, err := p.compiled.Execute(ctx, data, e.limits)
	e.record(StageExecute, started)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Run compiles and executes source in one step.
func (e *Engine) Run(ctx context.Context, source string, data value.Value) (*compiler.Result, []diagnostics.Diagnostic, error) {
	program, diags := e.CompileSource(source)
	if program == nil {
		return nil, diags, nil
	}
	result, err := e.Execute(ctx, program, data)
	return result, program.warnings, err
}

// Diagnose converts a runtime error into its diagnostic form, applying the
// engine's template provider.
func (e *Engine) Diagnose(err error) diagnostics.Diagnostic {
	if se, ok := err.(*diagnostics.ScriptError); ok {
		d := se.Diagnostic()
		d.Message = diagnostics.FormatMessage(e.templates, d.Code, d.Args)
		return d
	}
	return diagnostics.NewError(diagnostics.RuntimeError, nil, err.Error())
}

// localize re-renders diagnostic messages through the template provider.
func (e *Engine) localize(diags []diagnostics.Diagnostic) []diagnostics.Diagnostic {
	if e.templates == nil {
		return diags
	}
	out := make([]diagnostics.Diagnostic, len(diags))
	for i, d := range diags {
		d.Message = diagnostics.FormatMessage(e.templates, d.Code, d.Args)
		out[i] = d
	}
	return out
}
