package script

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nfrund/livetone/internal/validation"
)

// State is the gate's position in one execution attempt.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateRejected
	StateExecuting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateRejected:
		return "rejected"
	case StateExecuting:
		return "executing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Gate validates fragments and hands the ones that pass to a Runner.
// Attempts are serialized; a second Execute waits for the first to finish.
type Gate struct {
	validator *validation.Validator
	runner    Runner
	reporter  *ErrorReporter
	logger    *GateLogger

	run   sync.Mutex
	mu    sync.Mutex
	state State
}

// NewGate creates a gate that validates with v and executes with r.
func NewGate(v *validation.Validator, r Runner) *Gate {
	return &Gate{
		validator: v,
		runner:    r,
		reporter:  NewErrorReporter(),
		logger:    gateLogger,
	}
}

// State returns the state reached by the most recent attempt.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Reporter returns the reporter that records the gate's failures.
func (g *Gate) Reporter() *ErrorReporter { return g.reporter }

func (g *Gate) setState(s State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = s
}

// Execute runs one attempt over fragments.
//
// The error slot is cleared first. Each fragment is validated on its own, in
// order; the first fragment with violations (or a syntax error) ends the
// attempt. When all pass, the runner executes them as one unit. Every failure
// is sent to api.NotifyError and then returned. NotifyPlaying is called only
// on success.
func (g *Gate) Execute(ctx context.Context, fragments []Fragment, api API) error {
	g.run.Lock()
	defer g.run.Unlock()

	api.NotifyError(nil)
	g.setState(StateValidating)

	for _, f := range fragments {
		if err := g.validate(f); err != nil {
			g.setState(StateRejected)
			g.reporter.ReportError(ctx, f.Name, err)
			api.NotifyError(err)
			return err
		}
	}

	g.setState(StateExecuting)
	g.logger.LogExecution(slog.LevelDebug, "Executing fragments", len(fragments))

	start := time.Now()
	err := g.runner.Run(ctx, fragments)
	g.logger.LogPerformance(len(fragments), time.Since(start), err == nil)
	if err != nil {
		g.setState(StateFailed)
		g.reporter.ReportError(ctx, fragmentOf(err, fragments), err)
		api.NotifyError(err)
		return err
	}

	g.setState(StateSucceeded)
	api.NotifyPlaying()
	return nil
}

// validate returns the synthesized error for f, or the parser's own error.
func (g *Gate) validate(f Fragment) error {
	start := time.Now()
	violations, err := g.validator.Validate(f.Source)
	if err != nil {
		g.logger.LogRejection(f.Name, err)
		return err
	}
	g.logger.LogValidation(f.Name, len(violations), time.Since(start))
	if len(violations) == 0 {
		return nil
	}

	err = validation.SynthesizeError(violations)
	g.logger.LogRejection(f.Name, err)
	return err
}

func fragmentOf(err error, fragments []Fragment) string {
	if se, ok := err.(*ScriptError); ok && se.Fragment != "" {
		return se.Fragment
	}
	if len(fragments) == 1 {
		return fragments[0].Name
	}
	return "*"
}
