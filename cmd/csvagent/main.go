// Command csvagent runs an interactive session with the CSV cleaning agent.
// Instructions are read line by line from stdin; "exit" or "quit" ends the
// session while keeping the conversation history in between.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/csvagent"
	"github.com/hupe1980/csvagent/config"
	"github.com/hupe1980/csvagent/core"
	"github.com/hupe1980/csvagent/csvtools"
	"github.com/hupe1980/csvagent/logging"
	"github.com/hupe1980/csvagent/model"
	"github.com/hupe1980/csvagent/model/anthropic"
	"github.com/hupe1980/csvagent/model/openai"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	provider := flag.String("provider", "", "model backend: openai or anthropic (overrides config)")
	modelName := flag.String("model", "", "provider-specific model identifier (overrides config)")
	inputDir := flag.String("input", "", "directory holding the raw CSV files (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *provider != "" {
		cfg.Provider = *provider
	}
	if *modelName != "" {
		cfg.Model = *modelName
	}
	if *inputDir != "" {
		cfg.InputDir = *inputDir
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  parseLevel(cfg.Logging.Level),
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})

	generator, err := newGenerator(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.Timeout > 0 {
		generator = model.WithTimeout(generator, cfg.Timeout.Std())
	}

	goals := cfg.Goals
	if len(goals) == 0 {
		goals = csvagent.DefaultGoals()
	}
	goals = append(goals, core.Goal{
		Priority:    0,
		Name:        "Working Directories",
		Description: fmt.Sprintf("The raw CSV files live in %q; cleaned files go to %q.", cfg.InputDir, cfg.OutputDir),
	})

	agent, err := csvagent.New(generator, func(o *csvagent.Options) {
		o.Goals = goals
		o.Toolkit = csvtools.NewToolkit(func(to *csvtools.Options) {
			to.OutputDir = cfg.OutputDir
		})
		o.MaxIterations = cfg.MaxIterations
		o.MaxRetries = cfg.MaxRetries
		o.Logger = logger
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("CSV agent ready. Type an instruction, or 'exit' to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		outcome, err := agent.Run(context.Background(), line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(outcome.FinalOutput)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		os.Exit(1)
	}
}

func newGenerator(cfg config.Config) (model.Generator, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewGenerator(func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		}), nil
	case "anthropic":
		return anthropic.NewGenerator(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func parseLevel(level string) logging.LogLevel {
	switch level {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}
