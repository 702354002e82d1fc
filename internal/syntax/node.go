// Package syntax holds the closed tree the validator walks.
//
// The tree only distinguishes the shapes the classifier cares about:
// identifiers, calls, constructions and member accesses. Every other
// construct collapses into Other, which keeps its children in source order.
package syntax

// Node is implemented by the variants in this package only.
type Node interface {
	node()
}

// Program is the root of a parsed script.
type Program struct {
	Body []Node
}

// Identifier is any name-carrying leaf: references, bindings, parameters,
// labels, dot-property names and identifier-spelled object keys.
type Identifier struct {
	Name string
}

// Call is f(args) or obj.f(args).
type Call struct {
	Callee Node
	Args   []Node
}

// New is new X(args).
type New struct {
	Callee Node
	Args   []Node
}

// Member is obj.prop, or obj[expr] when Computed is set.
type Member struct {
	Object   Node
	Property Node
	Computed bool
}

// Other is every construct without a dedicated variant.
type Other struct {
	Kind     string
	Children []Node
}

func (*Program) node()    {}
func (*Identifier) node() {}
func (*Call) node()       {}
func (*New) node()        {}
func (*Member) node()     {}
func (*Other) node()      {}

// CalleeName returns the name a call resolves to: the identifier itself, or
// the property name of a member callee. Computed members count when their
// key is a plain identifier, as in obj[eval]().
func CalleeName(callee Node) (string, bool) {
	switch c := callee.(type) {
	case *Identifier:
		return c.Name, true
	case *Member:
		if id, ok := c.Property.(*Identifier); ok {
			return id.Name, true
		}
	}
	return "", false
}
