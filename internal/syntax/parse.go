package syntax

import (
	"fmt"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

// Parse parses src as a script and converts it into the closed tree.
// Syntax errors are goja's parser.ErrorList, returned as is.
func Parse(src string) (*Program, error) {
	prg, err := parser.ParseFile(nil, "", src, 0, parser.WithDisableSourceMaps)
	if err != nil {
		return nil, err
	}
	return &Program{Body: statements(prg.Body)}, nil
}

func kindOf(n any) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*ast.")
}

// other builds a catch-all node, dropping absent children.
func other(n any, children ...Node) *Other {
	kept := children[:0]
	for _, c := range children {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return &Other{Kind: kindOf(n), Children: kept}
}

func ident(id *ast.Identifier) Node {
	if id == nil {
		return nil
	}
	return &Identifier{Name: id.Name.String()}
}

func expressions(list []ast.Expression) []Node {
	out := make([]Node, 0, len(list))
	for _, e := range list {
		if n := expression(e); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func statements(list []ast.Statement) []Node {
	out := make([]Node, 0, len(list))
	for _, s := range list {
		if n := statement(s); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func expression(e ast.Expression) Node {
	switch n := e.(type) {
	case nil:
		return nil
	case *ast.Identifier:
		return ident(n)
	case *ast.CallExpression:
		return &Call{Callee: expression(n.Callee), Args: expressions(n.ArgumentList)}
	case *ast.NewExpression:
		return &New{Callee: expression(n.Callee), Args: expressions(n.ArgumentList)}
	case *ast.DotExpression:
		return &Member{Object: expression(n.Left), Property: ident(&n.Identifier)}
	case *ast.BracketExpression:
		return &Member{Object: expression(n.Left), Property: expression(n.Member), Computed: true}
	case *ast.PrivateDotExpression:
		return &Member{Object: expression(n.Left), Property: other(&n.Identifier)}

	// a?.b() is the same call shape as a.b()
	case *ast.Optional:
		return expression(n.Expression)
	case *ast.OptionalChain:
		return expression(n.Expression)

	case *ast.SpreadElement:
		return other(n, expression(n.Expression))
	case *ast.ArrayLiteral:
		return other(n, expressions(n.Value)...)
	case *ast.ArrayPattern:
		return other(n, append(expressions(n.Elements), expression(n.Rest))...)
	case *ast.AssignExpression:
		return other(n, expression(n.Left), expression(n.Right))
	case *ast.BinaryExpression:
		return other(n, expression(n.Left), expression(n.Right))
	case *ast.ConditionalExpression:
		return other(n, expression(n.Test), expression(n.Consequent), expression(n.Alternate))
	case *ast.SequenceExpression:
		return other(n, expressions(n.Sequence)...)
	case *ast.UnaryExpression:
		return other(n, expression(n.Operand))
	case *ast.YieldExpression:
		return other(n, expression(n.Argument))
	case *ast.AwaitExpression:
		return other(n, expression(n.Argument))
	case *ast.TemplateLiteral:
		return other(n, append([]Node{expression(n.Tag)}, expressions(n.Expressions)...)...)
	case *ast.MetaProperty:
		return other(n, ident(n.Meta), ident(n.Property))
	case *ast.FunctionLiteral:
		return function(n)
	case *ast.ArrowFunctionLiteral:
		return other(n, append(parameters(n.ParameterList), conciseBody(n.Body))...)
	case *ast.ClassLiteral:
		return class(n)
	case *ast.ObjectLiteral:
		return other(n, properties(n.Value)...)
	case *ast.ObjectPattern:
		return other(n, append(properties(n.Properties), expression(n.Rest))...)
	case *ast.Binding:
		return binding(n)
	case *ast.PropertyShort, *ast.PropertyKeyed:
		return property(n.(ast.Property))
	}
	// literals, this, super and parse-recovery nodes carry no names
	return other(e)
}

func function(fn *ast.FunctionLiteral) Node {
	if fn == nil {
		return nil
	}
	children := []Node{ident(fn.Name)}
	children = append(children, parameters(fn.ParameterList)...)
	children = append(children, block(fn.Body))
	return other(fn, children...)
}

func parameters(params *ast.ParameterList) []Node {
	if params == nil {
		return nil
	}
	out := make([]Node, 0, len(params.List)+1)
	for _, b := range params.List {
		out = append(out, binding(b))
	}
	if r := expression(params.Rest); r != nil {
		out = append(out, r)
	}
	return out
}

func binding(b *ast.Binding) Node {
	if b == nil {
		return nil
	}
	return other(b, expression(b.Target), expression(b.Initializer))
}

func bindings(list []*ast.Binding) []Node {
	out := make([]Node, 0, len(list))
	for _, b := range list {
		out = append(out, binding(b))
	}
	return out
}

func conciseBody(body ast.ConciseBody) Node {
	switch b := body.(type) {
	case *ast.BlockStatement:
		return block(b)
	case *ast.ExpressionBody:
		return expression(b.Expression)
	}
	return nil
}

func class(c *ast.ClassLiteral) Node {
	if c == nil {
		return nil
	}
	children := []Node{ident(c.Name), expression(c.SuperClass)}
	for _, el := range c.Body {
		children = append(children, classElement(el))
	}
	return other(c, children...)
}

func classElement(el ast.ClassElement) Node {
	switch e := el.(type) {
	case *ast.FieldDefinition:
		return other(e, key(e.Key, e.Computed), expression(e.Initializer))
	case *ast.MethodDefinition:
		return other(e, key(e.Key, e.Computed), function(e.Body))
	case *ast.ClassStaticBlock:
		return other(e, block(e.Block))
	}
	return nil
}

func properties(list []ast.Property) []Node {
	out := make([]Node, 0, len(list))
	for _, p := range list {
		if n := property(p); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func property(p ast.Property) Node {
	switch n := p.(type) {
	case *ast.PropertyShort:
		// {a} and {a = 1} name a once
		return other(n, ident(&n.Name), expression(n.Initializer))
	case *ast.PropertyKeyed:
		return other(n, key(n.Key, n.Computed), expression(n.Value))
	case *ast.SpreadElement:
		return other(n, expression(n.Expression))
	}
	return nil
}

// key converts an object or class member key. goja stores identifier-spelled
// keys as unquoted string literals; those become identifiers, quoted strings
// and numbers stay opaque.
func key(k ast.Expression, computed bool) Node {
	if s, ok := k.(*ast.StringLiteral); ok && !computed {
		if s.Literal != "" && s.Literal[0] != '"' && s.Literal[0] != '\'' {
			return &Identifier{Name: s.Value.String()}
		}
		return other(s)
	}
	return expression(k)
}

func block(b *ast.BlockStatement) Node {
	if b == nil {
		return nil
	}
	return other(b, statements(b.List)...)
}

func statement(s ast.Statement) Node {
	switch n := s.(type) {
	case nil:
		return nil
	case *ast.BlockStatement:
		return block(n)
	case *ast.ExpressionStatement:
		return other(n, expression(n.Expression))
	case *ast.IfStatement:
		return other(n, expression(n.Test), statement(n.Consequent), statement(n.Alternate))
	case *ast.ForStatement:
		return other(n, forInit(n.Initializer), expression(n.Test), expression(n.Update), statement(n.Body))
	case *ast.ForInStatement:
		return other(n, forInto(n.Into), expression(n.Source), statement(n.Body))
	case *ast.ForOfStatement:
		return other(n, forInto(n.Into), expression(n.Source), statement(n.Body))
	case *ast.WhileStatement:
		return other(n, expression(n.Test), statement(n.Body))
	case *ast.DoWhileStatement:
		return other(n, statement(n.Body), expression(n.Test))
	case *ast.ReturnStatement:
		return other(n, expression(n.Argument))
	case *ast.ThrowStatement:
		return other(n, expression(n.Argument))
	case *ast.TryStatement:
		var handler Node
		if n.Catch != nil {
			handler = other(n.Catch, expression(n.Catch.Parameter), block(n.Catch.Body))
		}
		return other(n, block(n.Body), handler, block(n.Finally))
	case *ast.SwitchStatement:
		children := []Node{expression(n.Discriminant)}
		for _, c := range n.Body {
			children = append(children, other(c, append([]Node{expression(c.Test)}, statements(c.Consequent)...)...))
		}
		return other(n, children...)
	case *ast.LabelledStatement:
		return other(n, ident(n.Label), statement(n.Statement))
	case *ast.BranchStatement:
		return other(n, ident(n.Label))
	case *ast.WithStatement:
		return other(n, expression(n.Object), statement(n.Body))
	case *ast.VariableStatement:
		return other(n, bindings(n.List)...)
	case *ast.LexicalDeclaration:
		return other(n, bindings(n.List)...)
	case *ast.FunctionDeclaration:
		return function(n.Function)
	case *ast.ClassDeclaration:
		return class(n.Class)
	}
	return other(s)
}

func forInit(init ast.ForLoopInitializer) Node {
	switch n := init.(type) {
	case *ast.ForLoopInitializerExpression:
		return expression(n.Expression)
	case *ast.ForLoopInitializerVarDeclList:
		return other(n, bindings(n.List)...)
	case *ast.ForLoopInitializerLexicalDecl:
		return other(n, bindings(n.LexicalDeclaration.List)...)
	}
	return nil
}

func forInto(into ast.ForInto) Node {
	switch n := into.(type) {
	case *ast.ForIntoVar:
		return binding(n.Binding)
	case *ast.ForDeclaration:
		return expression(n.Target)
	case *ast.ForIntoExpression:
		return expression(n.Expression)
	}
	return nil
}
