package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"

	"github.com/nfrund/livetone/internal/denylist"
	"github.com/nfrund/livetone/internal/random"
	"github.com/nfrund/livetone/internal/transport"
)

// ErrExecutionTimeout is the interrupt value used when a script runs past
// Limits.MaxExecutionTime.
var ErrExecutionTimeout = errors.New("script execution timed out")

// RunnerConfig wires a GojaRunner to its collaborators.
type RunnerConfig struct {
	Limits Limits

	// ExposeTransport adds the raw transport as a `Tone` binding. Off by
	// default: scripts go through LiveTone.start and LiveTone.setBpm.
	ExposeTransport bool

	// HardenGlobals replaces deny-listed globals that exist in the runtime
	// with blockers that throw a TypeError.
	HardenGlobals bool
	DenyList      *denylist.DenyList

	Transport *transport.Gate
	Playing   *transport.PlayingSet
	Rand      *random.Rand
}

// GojaRunner executes fragments in a fresh goja runtime per attempt.
type GojaRunner struct {
	cfg RunnerConfig
}

// NewGojaRunner fills unset collaborators with in-memory defaults.
func NewGojaRunner(cfg RunnerConfig) *GojaRunner {
	if cfg.Transport == nil {
		cfg.Transport = transport.NewGate(transport.NewClock())
	}
	if cfg.Playing == nil {
		cfg.Playing = transport.NewPlayingSet(cfg.Transport.Transport())
	}
	if cfg.Rand == nil {
		cfg.Rand = random.Default()
	}
	if cfg.HardenGlobals && cfg.DenyList == nil {
		cfg.DenyList = denylist.Default()
	}
	return &GojaRunner{cfg: cfg}
}

// Transport returns the gated transport scripts drive.
func (r *GojaRunner) Transport() *transport.Gate { return r.cfg.Transport }

// Playing returns the set of objects scripts registered.
func (r *GojaRunner) Playing() *transport.PlayingSet { return r.cfg.Playing }

// Run compiles all fragments into one strict-mode function and calls it with
// the LiveTone namespace bound. Errors thrown by the script are returned as
// goja's own *goja.Exception; a timeout is a *goja.InterruptedError wrapping
// ErrExecutionTimeout.
func (r *GojaRunner) Run(ctx context.Context, fragments []Fragment) (err error) {
	rt := goja.New()
	if r.cfg.Limits.MaxCallStackSize > 0 {
		rt.SetMaxCallStackSize(r.cfg.Limits.MaxCallStackSize)
	}

	namespace, err := newNamespace(rt, r.cfg)
	if err != nil {
		return NewScriptError(ErrorTypeCompilation, "", "failed to bind LiveTone namespace", err)
	}

	if r.cfg.HardenGlobals {
		if err := hardenGlobals(rt, r.cfg.DenyList); err != nil {
			return NewScriptError(ErrorTypeCompilation, "", "failed to harden globals", err)
		}
	}

	token := uuid.NewString()
	program, err := goja.Compile("livetone", wrapFragments(fragments, token, r.cfg.ExposeTransport), true)
	if err != nil {
		return NewScriptError(ErrorTypeCompilation, "", "failed to compile fragments", err)
	}

	value, err := rt.RunProgram(program)
	if err != nil {
		return NewScriptError(ErrorTypeCompilation, "", "failed to evaluate wrapper", err)
	}
	fn, ok := goja.AssertFunction(value)
	if !ok {
		return NewScriptError(ErrorTypeCompilation, "", "wrapper is not callable", nil)
	}

	if d := r.cfg.Limits.MaxExecutionTime; d > 0 {
		timer := time.AfterFunc(d, func() { rt.Interrupt(ErrExecutionTimeout) })
		defer timer.Stop()
	}
	stop := context.AfterFunc(ctx, func() { rt.Interrupt(ctx.Err()) })
	defer stop()

	defer func() {
		if p := recover(); p != nil {
			err = NewScriptError(ErrorTypeExecution, "", "script panic", fmt.Errorf("%v", p))
		}
	}()

	args := []goja.Value{namespace, rt.ToValue(transportSetter(rt, r.cfg.Transport, fragments, token))}
	if r.cfg.ExposeTransport {
		args = append(args, transportObject(rt, r.cfg.Transport))
	}

	_, err = fn(goja.Undefined(), args...)
	return err
}

// wrapFragments builds
//
//	(function (LiveTone, setAllowTransportAccess[, Tone]) {
//	'use strict';
//	{
//	setAllowTransportAccess(token, 0);
//	<fragment 0>
//	}
//	...
//	})
//
// Each fragment gets its own block scope and re-applies its transport flag
// before its body runs. The token is only present in the wrapper text, so
// fragments cannot flip the flag themselves.
func wrapFragments(fragments []Fragment, token string, exposeTransport bool) string {
	var b strings.Builder
	b.WriteString("(function (LiveTone, setAllowTransportAccess")
	if exposeTransport {
		b.WriteString(", Tone")
	}
	b.WriteString(") {\n'use strict';\n")
	for i, f := range fragments {
		fmt.Fprintf(&b, "{\nsetAllowTransportAccess(%q, %d);\n%s\n}\n", token, i, f.Source)
	}
	b.WriteString("})")
	return b.String()
}

func transportSetter(rt *goja.Runtime, gate *transport.Gate, fragments []Fragment, token string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		i := call.Argument(1).ToInteger()
		if call.Argument(0).String() != token || i < 0 || i >= int64(len(fragments)) {
			panic(rt.NewTypeError("setAllowTransportAccess is reserved for the host"))
		}
		gate.Allow(fragments[i].AllowTransport)
		return goja.Undefined()
	}
}

// transportObject exposes the raw transport as `Tone` with a `Transport`
// member, mirroring the shape scripts expect from a browser audio library.
func transportObject(rt *goja.Runtime, gate *transport.Gate) goja.Value {
	t := gate.Transport()
	tr := rt.NewObject()
	_ = tr.Set("start", func() { t.Start() })
	_ = tr.Set("stop", func() { t.Stop() })
	_ = tr.Set("cancel", func() { t.Cancel() })
	_ = tr.DefineAccessorProperty("state", rt.ToValue(func() string { return string(t.State()) }), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	tone := rt.NewObject()
	_ = tone.Set("Transport", tr)
	return tone
}

// hardenGlobals shadows deny-listed names that exist on the global object.
// Callables become functions that throw; other values become getters that
// throw.
func hardenGlobals(rt *goja.Runtime, deny *denylist.DenyList) error {
	global := rt.GlobalObject()
	for _, name := range deny.Keywords() {
		if global.Get(name) == nil {
			continue
		}
		message := fmt.Sprintf("'%s' is disabled in this sandboxed environment", name)
		blocker := rt.ToValue(func(goja.FunctionCall) goja.Value {
			panic(rt.NewTypeError(message))
		})
		var err error
		if deny.IsFunction(name) || deny.IsObject(name) {
			err = global.DefineDataProperty(name, blocker, goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
		} else {
			err = global.DefineAccessorProperty(name, blocker, nil, goja.FLAG_FALSE, goja.FLAG_FALSE)
		}
		if err != nil {
			return fmt.Errorf("shadow %s: %w", name, err)
		}
	}
	return nil
}
