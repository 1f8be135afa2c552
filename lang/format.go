package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Precedence levels of printed expressions. Higher binds tighter.
const (
	levelCompound = iota // let, lambda, if
	levelAdditive
	levelPower
	levelMultiplicative
	levelOperand // function call
	levelAtomic
)

func exprLevel(e Expr) int {
	switch e := e.(type) {
	case *BinaryOp:
		return e.Op.level()
	case *Call:
		return levelOperand
	case *Number, *Variable:
		return levelAtomic
	default:
		return levelCompound
	}
}

// Format writes the program in native syntax. Items are separated by ";" and
// a newline. Only the parentheses needed to preserve the tree are printed, so
// parsing the output yields an equivalent program.
func (p *Program) Format(ctx context.Context, w io.Writer) error {
	for i, n := range p.Items {
		if err := ctx.Err(); err != nil {
			return err
		}

		var sb strings.Builder

		if i > 0 {
			sb.WriteString(";\n")
		}

		writeNode(&sb, n)

		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}

	if len(p.Items) == 0 {
		return nil
	}

	_, err := fmt.Fprintln(w)

	return err
}

// FormatNode returns n in native syntax.
func FormatNode(n Node) string {
	var sb strings.Builder

	writeNode(&sb, n)

	return sb.String()
}

// FormatJSON writes the program as JSON to the writer.
func (p *Program) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(p, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(p)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the program as YAML to the writer.
func (p *Program) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, p.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(yamlData)

	return err
}

func writeNode(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case *FunctionDef:
		sb.WriteString(KeywordLet + " " + n.Name)
		writeParams(sb, n.Params)
		sb.WriteString(" = ")
		writeExpr(sb, n.Body)

	case Expr:
		writeExpr(sb, n)
	}
}

func writeExpr(sb *strings.Builder, e Expr) {
	switch e := e.(type) {
	case *Number:
		sb.WriteString(formatNumber(e.Value))

	case *Variable:
		sb.WriteString(e.Name)

	case *BinaryOp:
		level := e.Op.level()
		writeGrouped(sb, e.Left, exprLevel(e.Left) < level)
		sb.WriteString(" " + e.Op.String() + " ")
		writeGrouped(sb, e.Right, exprLevel(e.Right) <= level)

	case *Call:
		sb.WriteString(e.Callee)

		if len(e.Args) == 0 {
			sb.WriteString("()")
		}

		for _, arg := range e.Args {
			sb.WriteRune(' ')
			writeGrouped(sb, arg, !isBareArgument(arg))
		}

	case *Let:
		sb.WriteString(KeywordLet + " " + e.Name + " = ")
		writeExpr(sb, e.Value)
		sb.WriteString(" " + KeywordIn + " ")
		writeExpr(sb, e.Body)

	case *Lambda:
		sb.WriteString(KeywordLet + " " + e.Name)
		writeParams(sb, e.Params)
		sb.WriteString(" = ")
		writeExpr(sb, e.Value)
		sb.WriteString(" " + KeywordIn + " ")
		writeExpr(sb, e.Body)

	case *Conditional:
		sb.WriteString(KeywordIf + " ")

		if _, ok := e.Cond.(*Comparison); ok {
			writeExpr(sb, e.Cond)
		} else {
			writeGrouped(sb, e.Cond, exprLevel(e.Cond) == levelCompound)
		}

		sb.WriteString(" " + KeywordThen + " ")
		writeExpr(sb, e.Then)
		sb.WriteString(" " + KeywordElse + " ")
		writeExpr(sb, e.Else)

	case *Comparison:
		writeGrouped(sb, e.Left, exprLevel(e.Left) == levelCompound)
		sb.WriteString(" " + e.Op.String() + " ")
		writeGrouped(sb, e.Right, exprLevel(e.Right) == levelCompound)
	}
}

func writeGrouped(sb *strings.Builder, e Expr, group bool) {
	if group {
		sb.WriteRune('(')
	}

	writeExpr(sb, e)

	if group {
		sb.WriteRune(')')
	}
}

func writeParams(sb *strings.Builder, params []string) {
	if len(params) == 0 {
		sb.WriteString(" ()")

		return
	}

	for _, name := range params {
		sb.WriteString(" " + name)
	}
}

// isBareArgument reports whether a call argument can be printed without
// parentheses. Signed literals cannot: "f -1" is a subtraction.
func isBareArgument(e Expr) bool {
	switch e := e.(type) {
	case *Variable:
		return true
	case *Number:
		return !strings.HasPrefix(formatNumber(e.Value), "-")
	default:
		return false
	}
}
