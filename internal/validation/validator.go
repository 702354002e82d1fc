package validation

import (
	"github.com/nfrund/livetone/internal/denylist"
	"github.com/nfrund/livetone/internal/syntax"
)

// Validator scans scripts against one deny-list. It holds no per-scan state
// and is safe for concurrent use.
type Validator struct {
	deny *denylist.DenyList
}

// New creates a validator for deny.
func New(deny *denylist.DenyList) *Validator {
	return &Validator{deny: deny}
}

// DenyList returns the policy the validator checks against.
func (v *Validator) DenyList() *denylist.DenyList {
	return v.deny
}

// Validate parses src and returns every violation found in it. An empty
// result means src may run. Syntax errors come back from the parser
// unchanged and no violations are returned with them.
func (v *Validator) Validate(src string) ([]Violation, error) {
	prg, err := syntax.Parse(src)
	if err != nil {
		return nil, err
	}
	return v.Scan(prg), nil
}

// Scan classifies every node under root.
//
// Records come out as property references, then function calls, then
// instance creations, each group in order of first occurrence. A keyword
// seen as a call or construction anywhere in the tree is never reported as
// a property reference, wherever the bare reference appears.
func (v *Validator) Scan(root syntax.Node) []Violation {
	c := &classifier{
		deny:      v.deny,
		functions: newTally(),
		objects:   newTally(),
		refs:      newTally(),
	}
	syntax.Walk(c, root)

	var out []Violation
	for _, name := range c.refs.order {
		if c.functions.has(name) || c.objects.has(name) {
			continue
		}
		out = append(out, Violation{Kind: PropertyReference, Keyword: name, Count: c.refs.counts[name]})
	}
	out = c.functions.appendTo(out, FunctionCall)
	out = c.objects.appendTo(out, InstanceCreation)
	return out
}

type classifier struct {
	deny      *denylist.DenyList
	functions *tally
	objects   *tally
	refs      *tally
}

func (c *classifier) Visit(node syntax.Node) syntax.Visitor {
	switch n := node.(type) {
	case *syntax.Call:
		if name, ok := syntax.CalleeName(n.Callee); ok && c.deny.IsFunction(name) {
			c.functions.add(name)
		}
	case *syntax.New:
		if id, ok := n.Callee.(*syntax.Identifier); ok && c.deny.IsObject(id.Name) {
			c.objects.add(id.Name)
		}
	case *syntax.Identifier:
		if c.deny.IsKeyword(n.Name) {
			c.refs.add(n.Name)
		}
	}
	return c
}

// tally counts keywords and remembers first-seen order.
type tally struct {
	counts map[string]int
	order  []string
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(name string) {
	if _, ok := t.counts[name]; !ok {
		t.order = append(t.order, name)
	}
	t.counts[name]++
}

func (t *tally) has(name string) bool {
	_, ok := t.counts[name]
	return ok
}

func (t *tally) appendTo(out []Violation, kind Kind) []Violation {
	for _, name := range t.order {
		out = append(out, Violation{Kind: kind, Keyword: name, Count: t.counts[name]})
	}
	return out
}
