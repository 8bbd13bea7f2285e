package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/csvagent/action"
	"github.com/hupe1980/csvagent/core"
	"github.com/hupe1980/csvagent/environment"
	"github.com/hupe1980/csvagent/language"
	"github.com/hupe1980/csvagent/logging"
	"github.com/hupe1980/csvagent/memory"
	"github.com/hupe1980/csvagent/model"
)

// State is the coarse lifecycle of a session.
type State int

const (
	// StateRunning means the loop is mid-session.
	StateRunning State = iota
	// StateTerminated means the session ended and will not restart.
	StateTerminated
)

// Status explains why a session terminated.
type Status string

const (
	// StatusCompleted: a terminal action ran or the model answered in free
	// text, signalling there is nothing left to do.
	StatusCompleted Status = "completed"
	// StatusMaxIterations: the mandatory iteration cap fired.
	StatusMaxIterations Status = "max_iterations"
	// StatusFailed: model call or parsing failed beyond the retry budget.
	StatusFailed Status = "failed"
)

// Outcome summarizes a finished session.
type Outcome struct {
	Status      Status
	FinalOutput string
	Iterations  int
}

// Options configure an Agent.
type Options struct {
	// MaxIterations bounds the loop. It is a mandatory safety valve; values
	// below 1 fall back to the default of 10.
	MaxIterations int
	// MaxRetries bounds in-iteration retries after a model timeout or a
	// malformed reply before the session fails. Default 2.
	MaxRetries int
	// Memory is the session log. A fresh one is created when nil; pass the
	// same instance across Run calls to carry conversation state between
	// user turns.
	Memory *memory.Memory
	// Logger receives loop progress. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Agent drives the loop: build prompt, generate, parse, resolve, execute,
// remember, check termination. One Agent owns one session's memory and state;
// run concurrent sessions with separate Agents (the Registry may be shared,
// it is read-only by then).
type Agent struct {
	goals     []core.Goal
	lang      language.Language
	registry  *action.Registry
	generator model.Generator
	env       *environment.Environment
	mem       *memory.Memory
	logger    logging.Logger

	maxIterations int
	maxRetries    int
	state         State
}

// New constructs an Agent with optional overrides.
func New(
	goals []core.Goal,
	lang language.Language,
	registry *action.Registry,
	generator model.Generator,
	env *environment.Environment,
	optFns ...func(o *Options),
) *Agent {
	opts := Options{
		MaxIterations: 10,
		MaxRetries:    2,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxIterations < 1 {
		opts.MaxIterations = 10
	}
	if opts.Memory == nil {
		opts.Memory = memory.New()
	}

	return &Agent{
		goals:         goals,
		lang:          lang,
		registry:      registry,
		generator:     generator,
		env:           env,
		mem:           opts.Memory,
		logger:        opts.Logger,
		maxIterations: opts.MaxIterations,
		maxRetries:    opts.MaxRetries,
		state:         StateRunning,
	}
}

// Memory exposes the session log for post-hoc inspection.
func (a *Agent) Memory() *memory.Memory { return a.mem }

// State reports the current lifecycle state.
func (a *Agent) State() State { return a.state }

// Run injects userInput as a user memory item and iterates until termination
// or the iteration cap. The returned error is non-nil only when the session
// ends abnormally (retry budget exhausted or context cancelled); the Outcome
// is populated in every case with the last error recorded in memory.
func (a *Agent) Run(ctx context.Context, userInput string) (*Outcome, error) {
	a.state = StateRunning
	a.mem.AddContent(memory.TypeUser, userInput)

	var lastOutput string

	for iteration := 1; iteration <= a.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			a.state = StateTerminated
			return &Outcome{Status: StatusFailed, FinalOutput: lastOutput, Iterations: iteration - 1}, err
		}

		a.logger.Debug("agent.iteration.start", "iteration", iteration)

		reply, err := a.nextReply(ctx)
		if err != nil {
			a.state = StateTerminated
			a.logger.Error("agent.terminated", "status", StatusFailed, "error", err.Error())
			return &Outcome{Status: StatusFailed, FinalOutput: lastOutput, Iterations: iteration}, err
		}

		switch r := reply.(type) {
		case language.TextReply:
			// Free text means the model has nothing left to invoke; treat it
			// as the final answer and end the session.
			a.mem.AddContent(memory.TypeAssistant, r.Text)
			a.state = StateTerminated
			a.logger.Info("agent.terminated", "status", StatusCompleted, "reason", "text_reply", "iterations", iteration)
			return &Outcome{Status: StatusCompleted, FinalOutput: r.Text, Iterations: iteration}, nil

		case language.ToolCallReply:
			a.mem.AddContent(memory.TypeAssistant, map[string]any{"tool": r.Tool, "args": r.Args})

			act, err := a.registry.Get(r.Tool)
			if err != nil {
				// Unknown action: record the failure in the uniform result
				// shape and let the model correct itself next iteration.
				a.logger.Warn("agent.action.unknown", "tool", r.Tool)
				a.mem.AddContent(memory.TypeEnvironment, environment.Result{
					Tool: r.Tool, Args: r.Args, Error: err.Error(),
				})
				continue
			}

			res, execErr := a.env.Execute(ctx, act, r.Args)
			a.mem.AddContent(memory.TypeEnvironment, res)
			if execErr != nil {
				a.logger.Warn("agent.action.failed", "tool", r.Tool, "error", execErr.Error())
			}
			lastOutput = renderResult(res)

			// A terminal action only ends the session when it actually ran;
			// a failed attempt stays on the record so the model can retry
			// with corrected arguments.
			if act.Terminal() && execErr == nil {
				a.state = StateTerminated
				a.logger.Info("agent.terminated", "status", StatusCompleted, "reason", "terminal_action", "tool", r.Tool, "iterations", iteration)
				return &Outcome{Status: StatusCompleted, FinalOutput: lastOutput, Iterations: iteration}, nil
			}
		}
	}

	a.state = StateTerminated
	a.logger.Warn("agent.terminated", "status", StatusMaxIterations, "iterations", a.maxIterations)
	return &Outcome{Status: StatusMaxIterations, FinalOutput: lastOutput, Iterations: a.maxIterations}, nil
}

// nextReply builds the prompt, calls the generator and parses the reply,
// retrying the whole sequence after timeouts or malformed replies. Each
// failed attempt is appended to memory as a system item so both the model and
// post-hoc inspection see it. Retrying rebuilds the prompt, so the model sees
// its own previous failure.
func (a *Agent) nextReply(ctx context.Context) (language.Reply, error) {
	var lastErr error

	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		req := a.lang.ConstructPrompt(a.goals, a.registry, a.mem)

		resp, err := a.generator.Generate(ctx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && !isTimeout(err) {
				return nil, ctxErr
			}
			lastErr = err
			a.logger.Warn("agent.generate.failed", "attempt", attempt, "error", err.Error())
			a.mem.AddContent(memory.TypeSystem, fmt.Sprintf("Model call failed: %v", err))
			continue
		}

		reply, err := a.lang.ParseResponse(resp)
		if err != nil {
			var malformed *language.MalformedResponseError
			if !errors.As(err, &malformed) {
				return nil, err
			}
			lastErr = err
			a.logger.Warn("agent.parse.failed", "attempt", attempt, "error", err.Error())
			a.mem.AddContent(memory.TypeSystem, fmt.Sprintf("Your previous reply could not be parsed: %v. Reply with a valid tool call or plain text.", err))
			continue
		}

		return reply, nil
	}

	return nil, fmt.Errorf("model interaction failed after %d attempts: %w", a.maxRetries+1, lastErr)
}

func isTimeout(err error) bool {
	var timeoutErr *model.TimeoutError
	return errors.As(err, &timeoutErr)
}

// renderResult turns an execution result into the text surfaced to the user
// when the session ends on it.
func renderResult(res environment.Result) string {
	if !res.OK() {
		return res.Error
	}
	if s, ok := res.Result.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", res.Result)
}
