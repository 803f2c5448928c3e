package runtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/meschsystems/jyro/pkg/diagnostics"
	"github.com/meschsystems/jyro/pkg/execution"
	"github.com/meschsystems/jyro/pkg/functions"
	"github.com/meschsystems/jyro/pkg/runtime"
	"github.com/meschsystems/jyro/pkg/value"
)

func dataFrom(t *testing.T, src string) value.Value {
	t.Helper()
	v, err := value.FromJSON([]byte(src))
	if err != nil {
		t.Fatalf("bad data: %v", err)
	}
	return v
}

func findCode(diags []diagnostics.Diagnostic, code diagnostics.Code) *diagnostics.Diagnostic {
	for i := range diags {
		if diags[i].Code == code {
			return &diags[i]
		}
	}
	return nil
}

func TestPipelineEndToEnd(t *testing.T) {
	engine := runtime.New()
	program, diags := engine.CompileSource(`data.n = data.n * 2`)
	if program == nil {
		t.Fatalf("compile failed: %s", diagnostics.FormatAll(diags, true))
	}

	result, err := engine.Execute(context.Background(), program, dataFrom(t, `{"n":21}`))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	out, _ := value.ToJSON(result.Value)
	if string(out) != `{"n":42}` {
		t.Errorf("result = %s", out)
	}
}

func TestCompileStopsAtFirstFailingStage(t *testing.T) {
	engine := runtime.New()

	// Parser error: no validator or linker diagnostics may appear.
	program, diags := engine.CompileSource(`var = `)
	if program != nil {
		t.Fatal("program built from broken source")
	}
	for _, d := range diags {
		if d.Subsystem != "parser" && d.Subsystem != "lexer" {
			t.Errorf("later-stage diagnostic leaked: %+v", d)
		}
	}

	// Validator error gates linking of unknown functions in dead code.
	program, diags = engine.CompileSource("data.n = missing\nreturn\nNope(1)")
	if program != nil {
		t.Fatal("program built despite validation error")
	}
	if findCode(diags, diagnostics.UndeclaredVariable) == nil {
		t.Errorf("missing validator diagnostic: %s", diagnostics.FormatAll(diags, true))
	}
	if findCode(diags, diagnostics.UndefinedFunction) != nil {
		t.Error("linker ran past a failing validator")
	}
}

func TestSuccessfulRunHasNoErrorDiagnostics(t *testing.T) {
	engine := runtime.New()
	program, _ := engine.CompileSource(`
return
data.n = 1
`)
	if program == nil {
		t.Fatal("unreachable code must stay a warning")
	}
	for _, d := range program.Warnings() {
		if d.Severity == diagnostics.Error {
			t.Errorf("error-severity diagnostic on successful build: %+v", d)
		}
	}
	if findCode(program.Warnings(), diagnostics.UnreachableCode) == nil {
		t.Error("unreachable-code warning missing")
	}
}

func hostIdentity(name string) functions.Function {
	return &functions.GoFunc{
		Sig: &functions.Signature{
			Name:       name,
			Params:     []functions.Parameter{{Name: "value", Type: functions.ParamAny}},
			ReturnType: functions.ParamAny,
		},
		Fn: func(ec *execution.Context, args []value.Value) (value.Value, error) {
			return args[0], nil
		},
	}
}

func TestHostFunctionAndOverrideWarning(t *testing.T) {
	engine := runtime.New(runtime.WithFunctions(hostIdentity("Clone")))
	program, diags := engine.CompileSource(`data.out = Clone(data.n)`)
	if program == nil {
		t.Fatalf("compile failed: %s", diagnostics.FormatAll(diags, true))
	}
	if findCode(program.Warnings(), diagnostics.FunctionOverride) == nil {
		t.Error("override warning missing")
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	engine := runtime.New()
	artifact, diags := engine.CompileToArtifact(`data.n = data.n + 1`)
	if artifact == nil {
		t.Fatalf("build failed: %s", diagnostics.FormatAll(diags, true))
	}

	program, diags := engine.CompileArtifact(artifact)
	if program == nil {
		t.Fatalf("load failed: %s", diagnostics.FormatAll(diags, true))
	}

	result, err := engine.Execute(context.Background(), program, dataFrom(t, `{"n":1}`))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	out, _ := value.ToJSON(result.Value)
	if string(out) != `{"n":2}` {
		t.Errorf("result = %s", out)
	}
}

func TestArtifactRelinksAgainstCurrentHost(t *testing.T) {
	// Build the artifact with a host function present.
	withHost := runtime.New(runtime.WithFunctions(hostIdentity("Custom")))
	artifact, diags := withHost.CompileToArtifact(`data.out = Custom(data.n)`)
	if artifact == nil {
		t.Fatalf("build failed: %s", diagnostics.FormatAll(diags, true))
	}

	// Loading into an engine without it must fail at link time.
	bare := runtime.New()
	program, diags := bare.CompileArtifact(artifact)
	if program != nil {
		t.Fatal("artifact linked against a missing host function")
	}
	if findCode(diags, diagnostics.UndefinedFunction) == nil {
		t.Errorf("expected UndefinedFunction, got: %s", diagnostics.FormatAll(diags, true))
	}
}

func TestArtifactRejectsGarbage(t *testing.T) {
	engine := runtime.New()
	if program, _ := engine.CompileArtifact([]byte("not an artifact")); program != nil {
		t.Fatal("garbage accepted")
	}
	if program, _ := engine.CompileArtifact([]byte{'J', 'Y', 'R', 'O', 99}); program != nil {
		t.Fatal("wrong version accepted")
	}
}

type recordingStats struct {
	stages map[runtime.Stage]time.Duration
}

func (s *recordingStats) RecordStage(stage runtime.Stage, elapsed time.Duration) {
	if s.stages == nil {
		s.stages = make(map[runtime.Stage]time.Duration)
	}
	s.stages[stage] += elapsed
}

func TestStatsCollectorSeesAllStages(t *testing.T) {
	stats := &recordingStats{}
	engine := runtime.New(runtime.WithStatsCollector(stats))

	artifact, _ := engine.CompileToArtifact(`data.n = 1`)
	program, _ := engine.CompileArtifact(artifact)
	if program == nil {
		t.Fatal("artifact load failed")
	}
	if _, err := engine.Execute(context.Background(), program, value.NewObject()); err != nil {
		t.Fatal(err)
	}

	for _, stage := range []runtime.Stage{
		runtime.StageParse, runtime.StageValidate, runtime.StageLink,
		runtime.StageCompile, runtime.StageExecute, runtime.StageDeserialize,
	} {
		if _, ok := stats.stages[stage]; !ok {
			t.Errorf("stage %s never recorded", stage)
		}
	}
}

type mapProvider map[diagnostics.Code]string

func (m mapProvider) Template(code diagnostics.Code) (string, bool) {
	s, ok := m[code]
	return s, ok
}

func TestLocalizedDiagnostics(t *testing.T) {
	engine := runtime.New(runtime.WithTemplates(mapProvider{
		diagnostics.DivisionByZero: "geteilt durch Null",
	}))
	program, _ := engine.CompileSource(`var x = 1 / 0`)
	if program == nil {
		t.Fatal("compile failed")
	}
	_, err := engine.Execute(context.Background(), program, value.NewObject())
	if err == nil {
		t.Fatal("expected failure")
	}
	d := engine.Diagnose(err)
	if d.Message != "geteilt durch Null" {
		t.Errorf("message = %q", d.Message)
	}
	if d.Code != diagnostics.DivisionByZero {
		t.Errorf("code = %s", d.Code)
	}
}

func TestEngineLimits(t *testing.T) {
	engine := runtime.New(runtime.WithLimits(&execution.Options{MaxStatements: 10}))
	program, _ := engine.CompileSource(`while true { }`)
	if program == nil {
		t.Fatal("compile failed")
	}
	_, err := engine.Execute(context.Background(), program, value.NewObject())
	if err == nil {
		t.Fatal("expected statement limit failure")
	}
	se, ok := err.(*diagnostics.ScriptError)
	if !ok || se.Code != diagnostics.StatementLimitExceeded {
		t.Errorf("err = %v", err)
	}
}

func TestLogSink(t *testing.T) {
	var lines []string
	engine := runtime.New(runtime.WithLogSink(func(msg string) { lines = append(lines, msg) }))
	_, _, err := engine.Run(context.Background(), `Log("hi there")`, value.NewObject())
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0] != "hi there" {
		t.Errorf("lines = %v", lines)
	}
}

func TestRunCompletionMessage(t *testing.T) {
	engine := runtime.New()
	result, _, err := engine.Run(context.Background(), `return "transformed"`, dataFrom(t, `{"a":1}`))
	if err != nil {
		t.Fatal(err)
	}
	if result.CompletionMessage != "transformed" {
		t.Errorf("message = %q", result.CompletionMessage)
	}
}
