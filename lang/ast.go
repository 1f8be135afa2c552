package lang

import (
	"context"
	"io"
	"strconv"
	"strings"
)

// Node is implemented by every syntax tree node.
type Node interface {
	// Span returns the source range the node was parsed from.
	Span() Span
	// String returns a compact S-expression form of the node.
	String() string
	node()
}

// Expr is a node that may appear wherever an expression is expected.
// [*FunctionDef] is the only Node that is not an Expr.
type Expr interface {
	Node
	expr()
}

type base struct{ span Span }

func (b base) Span() Span { return b.span }
func (base) node()        {}

// ArithOp is a binary arithmetic operator.
type ArithOp int

const (
	OpMul ArithOp = iota // *
	OpDiv                // /
	OpPow                // **
	OpAdd                // +
	OpSub                // -
)

var arithOps = map[string]ArithOp{
	"*":  OpMul,
	"/":  OpDiv,
	"**": OpPow,
	"+":  OpAdd,
	"-":  OpSub,
}

func (op ArithOp) String() string {
	switch op {
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "**"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	default:
		return "?"
	}
}

// level returns the precedence level of op. Higher binds tighter.
func (op ArithOp) level() int {
	switch op {
	case OpAdd, OpSub:
		return levelAdditive
	case OpPow:
		return levelPower
	default:
		return levelMultiplicative
	}
}

// CompareOp is a comparison operator.
type CompareOp int

const (
	OpGT  CompareOp = iota // >
	OpGTE                  // >=
	OpLT                   // <
	OpLTE                  // <=
	OpEQ                   // =
	OpNEQ                  // <>
)

var compareOps = map[string]CompareOp{
	">":  OpGT,
	">=": OpGTE,
	"<":  OpLT,
	"<=": OpLTE,
	"=":  OpEQ,
	"<>": OpNEQ,
}

func (op CompareOp) String() string {
	switch op {
	case OpGT:
		return ">"
	case OpGTE:
		return ">="
	case OpLT:
		return "<"
	case OpLTE:
		return "<="
	case OpEQ:
		return "="
	case OpNEQ:
		return "<>"
	default:
		return "?"
	}
}

// Number is a finite numeric literal.
type Number struct {
	base
	Text  string // literal as written
	Value float64
}

// NewNumber returns a numeric literal node.
func NewNumber(span Span, value float64, text string) *Number {
	return &Number{base: base{span}, Value: value, Text: text}
}

func (*Number) expr() {}

func (n *Number) String() string { return formatNumber(n.Value) }

// Variable is a reference to a name.
type Variable struct {
	base
	Name string
}

// NewVariable returns a variable reference node.
func NewVariable(span Span, name string) *Variable {
	return &Variable{base: base{span}, Name: name}
}

func (*Variable) expr() {}

func (v *Variable) String() string { return v.Name }

// BinaryOp is an arithmetic operation.
type BinaryOp struct {
	base
	Left  Expr
	Right Expr
	Op    ArithOp
}

// NewBinaryOp returns an arithmetic node spanning both operands.
func NewBinaryOp(op ArithOp, left, right Expr) *BinaryOp {
	return &BinaryOp{
		base:  base{Span{left.Span().Start, right.Span().End}},
		Op:    op,
		Left:  left,
		Right: right,
	}
}

func (*BinaryOp) expr() {}

func (b *BinaryOp) String() string {
	return sexpr(b.Op.String(), b.Left.String(), b.Right.String())
}

// Call applies a named function to arguments.
// Args is empty only for the explicit "f()" form.
type Call struct {
	base
	Callee string
	Args   []Expr
}

// NewCall returns a function call node.
func NewCall(span Span, callee string, args []Expr) *Call {
	return &Call{base: base{span}, Callee: callee, Args: args}
}

func (*Call) expr() {}

func (c *Call) String() string {
	item := make([]string, 0, len(c.Args)+2)
	item = append(item, "call", c.Callee)

	for _, arg := range c.Args {
		item = append(item, arg.String())
	}

	return sexpr(item...)
}

// Let binds Name to Value within Body.
type Let struct {
	base
	Value Expr
	Body  Expr
	Name  string
}

// NewLet returns a single-binding node.
func NewLet(span Span, name string, value, body Expr) *Let {
	return &Let{base: base{span}, Name: name, Value: value, Body: body}
}

func (*Let) expr() {}

func (l *Let) String() string {
	return sexpr("let", l.Name, l.Value.String(), l.Body.String())
}

// Lambda binds the function Name with Params and body Value within Body.
type Lambda struct {
	base
	Value  Expr
	Body   Expr
	Name   string
	Params []string
}

// NewLambda returns a local function binding node.
func NewLambda(span Span, name string, params []string, value, body Expr) *Lambda {
	return &Lambda{
		base:   base{span},
		Name:   name,
		Params: params,
		Value:  value,
		Body:   body,
	}
}

func (*Lambda) expr() {}

func (l *Lambda) String() string {
	return sexpr("lambda", l.Name, paramList(l.Params), l.Value.String(), l.Body.String())
}

// Comparison relates two expressions. It only appears as the condition of a
// [Conditional].
type Comparison struct {
	base
	Left  Expr
	Right Expr
	Op    CompareOp
}

// NewComparison returns a comparison node spanning both operands.
func NewComparison(op CompareOp, left, right Expr) *Comparison {
	return &Comparison{
		base:  base{Span{left.Span().Start, right.Span().End}},
		Op:    op,
		Left:  left,
		Right: right,
	}
}

func (*Comparison) expr() {}

func (c *Comparison) String() string {
	return sexpr(c.Op.String(), c.Left.String(), c.Right.String())
}

// Conditional selects Then or Else by Cond.
type Conditional struct {
	base
	Cond Expr
	Then Expr
	Else Expr
}

// NewConditional returns a conditional node.
func NewConditional(span Span, cond, then, els Expr) *Conditional {
	return &Conditional{base: base{span}, Cond: cond, Then: then, Else: els}
}

func (*Conditional) expr() {}

func (c *Conditional) String() string {
	return sexpr("if", c.Cond.String(), c.Then.String(), c.Else.String())
}

// FunctionDef is a top-level function definition.
type FunctionDef struct {
	base
	Body   Expr
	Name   string
	Params []string
}

// NewFunctionDef returns a top-level function definition node.
func NewFunctionDef(span Span, name string, params []string, body Expr) *FunctionDef {
	return &FunctionDef{base: base{span}, Name: name, Params: params, Body: body}
}

func (f *FunctionDef) String() string {
	return sexpr("def", f.Name, paramList(f.Params), f.Body.String())
}

// Program is the root of a parsed source. Each item is either a
// [*FunctionDef] or an [Expr], in source order.
type Program struct {
	Source string
	Items  []Node
}

// Span returns the range of the whole source.
func (p *Program) Span() Span {
	if len(p.Items) == 0 {
		return Span{}
	}

	return Span{p.Items[0].Span().Start, p.Items[len(p.Items)-1].Span().End}
}

func (*Program) node() {}

// String returns the S-expressions of all items, one per line.
func (p *Program) String() string {
	item := make([]string, len(p.Items))
	for i, n := range p.Items {
		item[i] = n.String()
	}

	return strings.Join(item, "\n")
}

// Text returns the source text n was parsed from.
func (p *Program) Text(n Node) string {
	s := n.Span()
	if s.Start.Offset < 0 || s.End.Offset > len(p.Source) ||
		s.Start.Offset > s.End.Offset {
		return ""
	}

	return p.Source[s.Start.Offset:s.End.Offset]
}

// FunctionDefs returns the top-level function definitions in source order.
func (p *Program) FunctionDefs() []*FunctionDef {
	var defs []*FunctionDef

	for _, n := range p.Items {
		if def, ok := n.(*FunctionDef); ok {
			defs = append(defs, def)
		}
	}

	return defs
}

func sexpr(item ...string) string {
	return "(" + strings.Join(item, " ") + ")"
}

func paramList(params []string) string {
	return "(" + strings.Join(params, " ") + ")"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// treeWriter writes indented lines and retains the first write error.
type treeWriter struct {
	w   io.Writer
	err error
}

func (t *treeWriter) put(depth int, item ...string) {
	if t.err != nil {
		return
	}

	_, t.err = io.WriteString(
		t.w, strings.Repeat("  ", depth)+strings.Join(item, ": ")+"\n",
	)
}

// Print writes an indented tree representation of the program.
func (p *Program) Print(ctx context.Context, w io.Writer) error {
	t := &treeWriter{w: w}
	t.put(0, "Program")

	for _, n := range p.Items {
		if err := ctx.Err(); err != nil {
			return err
		}

		t.node(n, 1)
	}

	return t.err
}

func (t *treeWriter) node(n Node, depth int) {
	name := nodeTypeName(n)

	switch n := n.(type) {
	case *Number:
		t.put(depth, name, n.Text)

	case *Variable:
		t.put(depth, name, n.Name)

	case *BinaryOp:
		t.put(depth, name, n.Op.String())
		t.node(n.Left, depth+1)
		t.node(n.Right, depth+1)

	case *Comparison:
		t.put(depth, name, n.Op.String())
		t.node(n.Left, depth+1)
		t.node(n.Right, depth+1)

	case *Call:
		t.put(depth, name, n.Callee)

		for _, arg := range n.Args {
			t.node(arg, depth+1)
		}

	case *Let:
		t.put(depth, name, n.Name)
		t.put(depth+1, "Value")
		t.node(n.Value, depth+2)
		t.put(depth+1, "Body")
		t.node(n.Body, depth+2)

	case *Lambda:
		t.put(depth, name, n.Name)
		t.params(n.Params, depth+1)
		t.put(depth+1, "Value")
		t.node(n.Value, depth+2)
		t.put(depth+1, "Body")
		t.node(n.Body, depth+2)

	case *Conditional:
		t.put(depth, name)
		t.put(depth+1, "Cond")
		t.node(n.Cond, depth+2)
		t.put(depth+1, "Then")
		t.node(n.Then, depth+2)
		t.put(depth+1, "Else")
		t.node(n.Else, depth+2)

	case *FunctionDef:
		t.put(depth, name, n.Name)
		t.params(n.Params, depth+1)
		t.put(depth+1, "Body")
		t.node(n.Body, depth+2)

	default:
		t.put(depth, name)
	}
}

func (t *treeWriter) params(params []string, depth int) {
	if len(params) == 0 {
		t.put(depth, "Params", "(none)")

		return
	}

	t.put(depth, "Params", strings.Join(params, " "))
}
