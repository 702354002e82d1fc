package script

import (
	"context"
)

// API is the pair of callback slots a caller hands to the gate.
type API interface {
	// NotifyPlaying is called once after a successful execution.
	NotifyPlaying()

	// NotifyError receives nil at the start of every attempt and the
	// failure, if any, before it is returned.
	NotifyError(err error)
}

// APIFuncs adapts a pair of funcs to API. Nil funcs are skipped.
type APIFuncs struct {
	Playing func()
	Error   func(error)
}

func (f APIFuncs) NotifyPlaying() {
	if f.Playing != nil {
		f.Playing()
	}
}

func (f APIFuncs) NotifyError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

// Runner turns validated fragments into a running program. It is the
// host's text-to-callable capability; the gate never evaluates code itself.
type Runner interface {
	// Run executes all fragments as one unit, in order.
	Run(ctx context.Context, fragments []Fragment) error
}

// RunnerFunc adapts a func to Runner.
type RunnerFunc func(ctx context.Context, fragments []Fragment) error

func (f RunnerFunc) Run(ctx context.Context, fragments []Fragment) error {
	return f(ctx, fragments)
}

// FragmentSource provides the current text of named fragments and reports
// changes to them.
type FragmentSource interface {
	// Fragment returns the named fragment.
	Fragment(name string) (Fragment, error)

	// Watch calls onChange with the fragment name whenever a watched file
	// changes, until ctx is done.
	Watch(ctx context.Context, onChange func(name string)) error
}
