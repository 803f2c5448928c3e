package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/meschsystems/jyro/pkg/diagnostics"
	"github.com/meschsystems/jyro/pkg/runtime"
	"github.com/meschsystems/jyro/pkg/value"
)

// cmdRepl runs an interactive loop. The data value persists across inputs
// so scripts can build on each other's mutations.
func cmdRepl(args []string) int {
	var dataPath string
	for i := 0; i < len(args); i++ {
		if args[i] == "--data" && i+1 < len(args) {
			i++
			dataPath = args[i]
		}
	}

	data, err := loadData(dataPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	engine := runtime.New(
		runtime.WithLogSink(func(msg string) { fmt.Println(msg) }),
	)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := filepath.Join(os.TempDir(), ".jyro_history")
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println("jyro repl; .data shows the current value, .exit leaves")

	for {
		input, err := line.Prompt("jyro> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			return 0
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch input {
		case ".exit", ".quit":
			return 0
		case ".data":
			printValue(data)
			continue
		case ".reset":
			data = value.NewObject()
			continue
		}

		result, warnings, err := engine.Run(context.Background(), input, data)
		for _, w := range warnings {
			fmt.Println(diagnostics.Format(w, true))
		}
		if err != nil {
			fmt.Println(diagnostics.Format(engine.Diagnose(err), true))
			continue
		}
		if result == nil {
			continue
		}
		data = result.Value
		printValue(data)
		if result.CompletionMessage != "" {
			fmt.Printf("completed: %s\n", result.CompletionMessage)
		}
	}
}

func printValue(v value.Value) {
	out, err := value.ToJSON(v)
	if err != nil {
		fmt.Printf("<%s>\n", value.TypeName(v))
		return
	}
	fmt.Println(string(out))
}
