// Package csvagent provides a high-level façade over the agent loop and the
// CSV toolkit. Most applications interact with this package by:
//  1. Creating a model.Generator (openai, anthropic or a mock)
//  2. Creating an agent via New() (optionally overriding goals, toolkit or limits)
//  3. Calling Run with a natural-language instruction, repeatedly for a
//     multi-turn conversation
//
// The façade wires the default goal set, the CSV file actions and the
// function-calling prompt format together; the underlying packages remain
// usable on their own when an application needs a different composition.
package csvagent

import (
	"context"

	"github.com/hupe1980/csvagent/action"
	"github.com/hupe1980/csvagent/agent"
	"github.com/hupe1980/csvagent/core"
	"github.com/hupe1980/csvagent/csvtools"
	"github.com/hupe1980/csvagent/environment"
	"github.com/hupe1980/csvagent/language"
	"github.com/hupe1980/csvagent/logging"
	"github.com/hupe1980/csvagent/memory"
	"github.com/hupe1980/csvagent/model"
)

// Options configures the assembled agent.
type Options struct {
	// Goals replace the default goal set when non-empty.
	Goals []core.Goal
	// Toolkit supplies the CSV actions. Defaults to csvtools.NewToolkit().
	Toolkit *csvtools.Toolkit
	// MaxIterations bounds loop turns per Run call.
	MaxIterations int
	// MaxRetries bounds in-turn recovery attempts after model or parse
	// failures.
	MaxRetries int
	// Logger receives progress from the loop and the environment. Defaults
	// to NoOpLogger.
	Logger logging.Logger
}

// DefaultGoals returns the built-in goal set guiding the agent through
// discovery, cleaning and consolidation of CSV files.
func DefaultGoals() []core.Goal {
	return []core.Goal{
		{
			Priority:    1,
			Name:        "Gather Information",
			Description: "List and inspect the available CSV files before modifying anything.",
		},
		{
			Priority:    2,
			Name:        "Clean And Consolidate",
			Description: "Clean the CSV files the user asks about into the standard report layout, then consolidate them on request.",
		},
		{
			Priority:    3,
			Name:        "Terminate",
			Description: "Call terminate with a final summary once the user's request is fulfilled, or say when only a conversational reply is needed.",
		},
	}
}

// CSVAgent is the assembled conversational agent.
type CSVAgent struct {
	agent    *agent.Agent
	registry *action.Registry
}

// New assembles an agent around the supplied generator. The returned agent
// keeps its memory across Run calls, so one CSVAgent holds one conversation.
func New(generator model.Generator, optFns ...func(o *Options)) (*CSVAgent, error) {
	opts := Options{
		Goals:         DefaultGoals(),
		Toolkit:       csvtools.NewToolkit(),
		MaxIterations: 10,
		MaxRetries:    2,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	registry := action.NewRegistry()
	if err := opts.Toolkit.Register(registry); err != nil {
		return nil, err
	}

	env := environment.New(func(o *environment.Options) {
		o.Logger = opts.Logger
	})

	a := agent.New(
		opts.Goals,
		language.NewFunctionCalling(),
		registry,
		generator,
		env,
		func(o *agent.Options) {
			o.MaxIterations = opts.MaxIterations
			o.MaxRetries = opts.MaxRetries
			o.Logger = opts.Logger
		},
	)

	return &CSVAgent{agent: a, registry: registry}, nil
}

// Run processes one user instruction and returns the session outcome.
func (c *CSVAgent) Run(ctx context.Context, userInput string) (*agent.Outcome, error) {
	return c.agent.Run(ctx, userInput)
}

// Registry exposes the action registry, mainly so callers can register
// additional actions before the first Run.
func (c *CSVAgent) Registry() *action.Registry { return c.registry }

// Memory exposes the conversation log for inspection.
func (c *CSVAgent) Memory() *memory.Memory { return c.agent.Memory() }
