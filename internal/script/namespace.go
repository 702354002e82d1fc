package script

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/nfrund/livetone/internal/music"
	"github.com/nfrund/livetone/internal/random"
	"github.com/nfrund/livetone/internal/sequence"
	"github.com/nfrund/livetone/internal/transport"
)

const deepFreezeSource = `(function deepFreeze(o) {
	Object.getOwnPropertyNames(o).forEach(function (k) {
		var v = o[k];
		if (v !== null && (typeof v === 'object' || typeof v === 'function') && !Object.isFrozen(v)) {
			deepFreeze(v);
		}
	});
	return Object.freeze(o);
})`

// namespace builds the LiveTone object handed to executed code.
type namespace struct {
	rt      *goja.Runtime
	cfg     RunnerConfig
	playing map[*goja.Object]*jsPlayable
}

func newNamespace(rt *goja.Runtime, cfg RunnerConfig) (*goja.Object, error) {
	ns := &namespace{rt: rt, cfg: cfg, playing: make(map[*goja.Object]*jsPlayable)}

	obj := rt.NewObject()
	members := map[string]any{
		"registerPlaying": ns.registerPlaying,
		"setBpm":          func(bpm float64) { cfg.Transport.SetBPM(bpm) },
		"start":           func() { cfg.Transport.Start() },
		"Scale":           ns.scales(),
		"Chr":             ns.chords(),
		"Nmb":             ns.numbers(),
		"Ary":             ns.arrays(),
		"Itr":             ns.iterators(),
	}
	for name, v := range members {
		if err := obj.Set(name, v); err != nil {
			return nil, fmt.Errorf("set %s: %w", name, err)
		}
	}

	freeze, err := rt.RunString(deepFreezeSource)
	if err != nil {
		return nil, err
	}
	fn, _ := goja.AssertFunction(freeze)
	if _, err := fn(goja.Undefined(), obj); err != nil {
		return nil, fmt.Errorf("freeze namespace: %w", err)
	}
	return obj, nil
}

// jsPlayable adapts a script object with stop() and state to
// transport.Stoppable.
type jsPlayable struct {
	rt  *goja.Runtime
	obj *goja.Object
}

func (p *jsPlayable) Stop() {
	if stop, ok := goja.AssertFunction(p.obj.Get("stop")); ok {
		_, _ = stop(p.obj)
	}
}

// State reads the object's state member. Objects without one are treated as
// stopped, so StopAll leaves them alone.
func (p *jsPlayable) State() transport.State {
	v := p.obj.Get("state")
	if v == nil {
		return transport.Stopped
	}
	return transport.State(v.String())
}

// registerPlaying tracks obj so it can be stopped later. The object's
// onstop handler is wrapped to drop it from the set first.
func (ns *namespace) registerPlaying(call goja.FunctionCall) goja.Value {
	obj, ok := call.Argument(0).(*goja.Object)
	if !ok {
		panic(ns.rt.NewTypeError("registerPlaying expects an object"))
	}

	p, seen := ns.playing[obj]
	if !seen {
		p = &jsPlayable{rt: ns.rt, obj: obj}
		ns.playing[obj] = p
	}
	remove := ns.cfg.Playing.Register(p)

	if !seen {
		previous, hasPrevious := goja.AssertFunction(obj.Get("onstop"))
		onstop := func(c goja.FunctionCall) goja.Value {
			remove()
			if hasPrevious {
				v, err := previous(c.This, c.Arguments...)
				if err != nil {
					panic(err)
				}
				return v
			}
			return goja.Undefined()
		}
		if err := obj.Set("onstop", onstop); err != nil {
			panic(err)
		}
	}
	return obj
}

func (ns *namespace) scales() *goja.Object {
	out := ns.rt.NewObject()
	for _, s := range music.Scales() {
		scale := ns.rt.NewObject()
		_ = scale.Set("name", s.Name())
		_ = scale.Set("rawNotes", ns.strings(s.RawNotes()))
		_ = scale.Set("notes", func(call goja.FunctionCall) goja.Value {
			octaves := 1
			if v := call.Argument(2); !goja.IsUndefined(v) {
				octaves = int(v.ToInteger())
			}
			return ns.strings(s.Notes(call.Argument(0).String(), int(call.Argument(1).ToInteger()), octaves))
		})
		_ = out.Set(s.ID(), scale)
	}
	return out
}

func (ns *namespace) chords() *goja.Object {
	out := ns.rt.NewObject()
	_ = out.Set("chordTypes", func(goja.FunctionCall) goja.Value {
		return ns.strings(music.ChordTypes())
	})
	_ = out.Set("chord", func(call goja.FunctionCall) goja.Value {
		typ := ""
		if v := call.Argument(1); !goja.IsUndefined(v) {
			typ = v.String()
		}
		return ns.strings(music.Chord(call.Argument(0).String(), typ))
	})
	diatonic := map[string]func(string) [][]string{
		"majorDiatonicChords":         music.MajorDiatonicChords,
		"naturalMinorDiatonicChords":  music.NaturalMinorDiatonicChords,
		"harmonicMinorDiatonicChords": music.HarmonicMinorDiatonicChords,
		"melodicMinorDiatonicChords":  music.MelodicMinorDiatonicChords,
	}
	for name, chords := range diatonic {
		_ = out.Set(name, func(call goja.FunctionCall) goja.Value {
			rows := chords(call.Argument(0).String())
			items := make([]any, len(rows))
			for i, row := range rows {
				items[i] = ns.strings(row)
			}
			return ns.rt.NewArray(items...)
		})
	}
	return out
}

func (ns *namespace) numbers() *goja.Object {
	r := ns.cfg.Rand
	out := ns.rt.NewObject()
	_ = out.Set("randomNumber", r.Number)
	_ = out.Set("randomInRange", r.InRange)
	_ = out.Set("oneIn", r.OneIn)
	return out
}

func (ns *namespace) arrays() *goja.Object {
	r := ns.cfg.Rand
	out := ns.rt.NewObject()
	_ = out.Set("makeShuffled", func(call goja.FunctionCall) goja.Value {
		return ns.rt.NewArray(toAny(random.Shuffled(r, ns.values(call.Argument(0))))...)
	})
	_ = out.Set("choose", func(call goja.FunctionCall) goja.Value {
		v, ok := random.Choose(r, ns.values(call.Argument(0)))
		if !ok {
			return goja.Undefined()
		}
		return v
	})
	return out
}

func (ns *namespace) iterators() *goja.Object {
	r := ns.cfg.Rand
	out := ns.rt.NewObject()
	_ = out.Set("fromFirst", func(call goja.FunctionCall) goja.Value {
		return ns.iterator(sequence.FromFirst(ns.values(call.Argument(0))))
	})
	_ = out.Set("fromLast", func(call goja.FunctionCall) goja.Value {
		return ns.iterator(sequence.FromLast(ns.values(call.Argument(0))))
	})
	_ = out.Set("roundTrip", func(call goja.FunctionCall) goja.Value {
		fromFirst := true
		if v := call.Argument(1); !goja.IsUndefined(v) {
			fromFirst = v.ToBoolean()
		}
		return ns.iterator(sequence.RoundTrip(ns.values(call.Argument(0)), fromFirst))
	})
	_ = out.Set("shuffle", func(call goja.FunctionCall) goja.Value {
		return ns.iterator(sequence.Shuffle(r, ns.values(call.Argument(0))))
	})
	_ = out.Set("random", func(call goja.FunctionCall) goja.Value {
		return ns.iterator(sequence.Random(r, ns.values(call.Argument(0))))
	})
	return out
}

// iterator wraps it in a JS iterator object. It never reports done.
func (ns *namespace) iterator(it *sequence.Iterator[goja.Value]) goja.Value {
	obj := ns.rt.NewObject()
	_ = obj.Set("next", func(goja.FunctionCall) goja.Value {
		v := it.Next()
		if v == nil {
			v = goja.Undefined()
		}
		result := ns.rt.NewObject()
		_ = result.Set("value", v)
		_ = result.Set("done", false)
		return result
	})
	_ = obj.SetSymbol(goja.SymIterator, func(call goja.FunctionCall) goja.Value {
		return call.This
	})
	return obj
}

// values exports a JS array argument without converting its elements.
func (ns *namespace) values(v goja.Value) []goja.Value {
	var out []goja.Value
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return out
	}
	if err := ns.rt.ExportTo(v, &out); err != nil {
		panic(ns.rt.NewTypeError("expected an array"))
	}
	return out
}

// strings converts to a plain JS array.
func (ns *namespace) strings(values []string) goja.Value {
	items := make([]any, len(values))
	for i, v := range values {
		items[i] = v
	}
	return ns.rt.NewArray(items...)
}

func toAny(values []goja.Value) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
