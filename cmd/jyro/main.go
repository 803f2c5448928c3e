// Command jyro is the Jyro CLI: run scripts, check them, build precompiled
// artifacts, and poke at the language in a REPL.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/meschsystems/jyro/pkg/diagnostics"
	"github.com/meschsystems/jyro/pkg/execution"
	"github.com/meschsystems/jyro/pkg/runtime"
	"github.com/meschsystems/jyro/pkg/value"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: jyro <command> [options]")
		fmt.Fprintln(os.Stderr, "commands: run, check, build, repl")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "check":
		os.Exit(cmdCheck(os.Args[2:]))
	case "build":
		os.Exit(cmdBuild(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "help", "--help", "-h":
		fmt.Println("usage: jyro <run|check|build|repl> [options]")
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

// cliStats prints per-stage durations when --stats is set.
type cliStats struct {
	stages []string
}

func (s *cliStats) RecordStage(stage runtime.Stage, elapsed time.Duration) {
	s.stages = append(s.stages, fmt.Sprintf("%-12s %s", stage, elapsed))
}

func (s *cliStats) print() {
	for _, line := range s.stages {
		fmt.Fprintln(os.Stderr, line)
	}
}

func cmdRun(args []string) int {
	var file, dataPath string
	showStats := false
	var limits *execution.Options

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--data":
			if i+1 < len(args) {
				i++
				dataPath = args[i]
			}
		case "--stats":
			showStats = true
		case "--sandbox":
			limits = &execution.Options{
				MaxStatements:     1_000_000,
				MaxLoopIterations: 100_000,
				MaxCallDepth:      64,
				MaxExecutionTime:  5 * time.Second,
			}
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: jyro run <file> [--data <file>] [--sandbox] [--stats]")
		return 1
	}

	source, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read %s: %v\n", file, err)
		return 1
	}

	data, err := loadData(dataPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	stats := &cliStats{}
	opts := []runtime.Option{
		runtime.WithLogSink(func(msg string) { fmt.Fprintln(os.Stderr, msg) }),
	}
	if limits != nil {
		opts = append(opts, runtime.WithLimits(limits))
	}
	if showStats {
		opts = append(opts, runtime.WithStatsCollector(stats))
	}
	engine := runtime.New(opts...)

	var artifact []byte
	if strings.HasSuffix(file, ".jyc") {
		artifact = source
	}

	var program *runtime.Program
	var diags []diagnostics.Diagnostic
	if artifact != nil {
		program, diags = engine.CompileArtifact(artifact)
	} else {
		program, diags = engine.CompileSource(string(source))
	}
	if program == nil {
		fmt.Fprintln(os.Stderr, diagnostics.FormatAll(diags, true))
		return 1
	}
	for _, w := range program.Warnings() {
		fmt.Fprintln(os.Stderr, diagnostics.Format(w, true))
	}

	result, err := engine.Execute(context.Background(), program, data)
	if err != nil {
		fmt.Fprintln(os.Stderr, diagnostics.Format(engine.Diagnose(err), true))
		return 1
	}

	out, jsonErr := value.ToJSON(result.Value)
	if jsonErr != nil {
		fmt.Fprintf(os.Stderr, "result is not JSON-representable: %v\n", jsonErr)
		return 1
	}
	fmt.Println(string(out))
	if result.CompletionMessage != "" {
		fmt.Fprintf(os.Stderr, "completed: %s\n", result.CompletionMessage)
	}
	if showStats {
		stats.print()
		fmt.Fprintf(os.Stderr, "statements   %s\n", humanize.Comma(result.Statements))
		fmt.Fprintf(os.Stderr, "iterations   %s\n", humanize.Comma(result.LoopIterations))
	}
	return 0
}

func cmdCheck(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: jyro check <file>")
		return 1
	}
	source, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read %s: %v\n", args[0], err)
		return 1
	}

	engine := runtime.New()
	program, diags := engine.CompileSource(string(source))
	if program == nil {
		fmt.Fprintln(os.Stderr, diagnostics.FormatAll(diags, true))
		return 1
	}
	for _, w := range program.Warnings() {
		fmt.Fprintln(os.Stderr, diagnostics.Format(w, true))
	}
	fmt.Println("ok")
	return 0
}

func cmdBuild(args []string) int {
	var file, outPath string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o":
			if i+1 < len(args) {
				i++
				outPath = args[i]
			}
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}
	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: jyro build <file> [-o <out.jyc>]")
		return 1
	}
	if outPath == "" {
		outPath = strings.TrimSuffix(file, ".jyro") + ".jyc"
	}

	source, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read %s: %v\n", file, err)
		return 1
	}

	engine := runtime.New()
	artifact, diags := engine.CompileToArtifact(string(source))
	if artifact == nil {
		fmt.Fprintln(os.Stderr, diagnostics.FormatAll(diags, true))
		return 1
	}
	if err := os.WriteFile(outPath, artifact, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "cannot write %s: %v\n", outPath, err)
		return 1
	}
	fmt.Printf("wrote %s (%s)\n", outPath, humanize.Bytes(uint64(len(artifact))))
	return 0
}

// loadData reads the input value for a run: a JSON or YAML file, or an
// empty object when no path is given.
func loadData(path string) (value.Value, error) {
	if path == "" {
		return value.NewObject(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %v", path, err)
	}
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		v, err := value.FromYAML(raw)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %s: %v", path, err)
		}
		return v, nil
	}
	v, err := value.FromJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %s: %v", path, err)
	}
	return v, nil
}
