package lang

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
)

// Parse parses src and returns its Program.
//
// On failure the returned Program is nil and the error is a [*ParseError]
// holding every diagnostic, unless ctx was canceled.
func Parse(ctx context.Context, src string, opts ...Option) (*Program, error) {
	o := makeOptions(opts...)

	tokens, err := Lex(src)
	if err != nil {
		o.logger.TraceContext(ctx, "lex failed", slog.Any("error", err))

		return nil, err
	}

	o.logger.TraceContext(ctx, "lex complete",
		slog.Int("token_count", len(tokens)))

	p := &parser{
		tokens:   tokens,
		expected: make(map[string]struct{}),
		opts:     o,
	}

	prog, err := p.parseProgram(ctx, src)
	if err != nil {
		o.logger.TraceContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	o.logger.TraceContext(ctx, "parse complete",
		slog.Int("item_count", len(prog.Items)))

	return prog, nil
}

// parser holds the parser state.
//
// Alternatives return (nil, nil) when they do not match, leaving the caller
// to restore the cursor. A non-nil error is fatal: it is raised only after a
// commit point and is never retried against sibling alternatives.
type parser struct {
	tokens   []Token
	expected map[string]struct{} // expectations recorded at far
	diags    []*Diagnostic
	opts     options
	pos      int // index of the current token
	far      int // furthest token index at which an expectation failed
	depth    int
}

// parseProgram parses items until end of input.
//
//	Program → (Item ';'?)* EOF
func (p *parser) parseProgram(ctx context.Context, src string) (*Program, error) {
	prog := &Program{Source: src, Items: make([]Node, 0)}

	for !p.peek().Is(TokenEOF, "") {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := p.mark()

		item, err := p.parseItem()
		if err == nil && item == nil {
			err = p.exhausted()
		}

		if err != nil {
			var d *Diagnostic
			if !errors.As(err, &d) {
				return nil, err
			}

			p.diags = append(p.diags, d)

			if !p.opts.recovery {
				break
			}

			p.synchronize(start)
			p.opts.logger.TraceContext(ctx, "recovered",
				slog.Any("diagnostic", d),
				slog.String("resume", p.peek().Pos.String()))

			continue
		}

		prog.Items = append(prog.Items, item)

		p.accept(TokenPunct, ";")
	}

	if len(p.diags) > 0 {
		return nil, &ParseError{Source: src, Diagnostics: p.diags}
	}

	return prog, nil
}

// parseItem parses a function definition or a base expression.
//
// Definitions share the prefix "let name params = expr" with bindings, so the
// prefix is parsed once. An "in" after it continues a binding expression.
// Otherwise a prefix with parameters is a definition.
func (p *parser) parseItem() (Node, error) {
	m := p.mark()

	h, err := p.parseHead()
	if err != nil {
		return nil, err
	}

	if h != nil {
		value, err := p.requireExpr()
		if err != nil {
			return nil, err
		}

		if h.hasParams && !p.peek().Is(TokenKeyword, KeywordIn) {
			p.expect(strconv.Quote(KeywordIn))

			return NewFunctionDef(
				Span{h.let.Pos, value.Span().End},
				h.name.Text,
				h.paramNames(),
				value,
			), nil
		}

		return p.parseContinuation(h, value)
	}

	p.reset(m)

	return p.parseBase()
}

// parseBase is the ordered choice among expression forms.
//
//	Base → Lambda | Let | Conditional | Additive
func (p *parser) parseBase() (Expr, error) {
	if p.depth >= p.opts.maxDepth {
		tok := p.peek()

		return nil, &Diagnostic{
			Kind:  SyntaxError,
			Pos:   tok.Pos,
			Found: tok.String(),
			Cause: ErrMaxDepthExceeded.With(slog.Int("max_depth", p.opts.maxDepth)),
		}
	}

	p.depth++
	defer func() { p.depth-- }()

	m := p.mark()

	if e, err := p.parseLambda(); e != nil || err != nil {
		return e, err
	}

	p.reset(m)

	if e, err := p.parseLet(); e != nil || err != nil {
		return e, err
	}

	p.reset(m)

	if e, err := p.parseConditional(); e != nil || err != nil {
		return e, err
	}

	p.reset(m)

	e, err := p.parseAdditive()
	if e == nil && err == nil {
		p.reset(m)
	}

	return e, err
}

// bindingHead is the prefix "let name params? =" shared by let-bindings,
// lambda-bindings, and function definitions.
type bindingHead struct {
	params    []Token
	let       Token
	name      Token
	hasParams bool
}

func (h *bindingHead) paramNames() []string {
	names := make([]string, len(h.params))
	for i, tok := range h.params {
		names[i] = tok.Text
	}

	return names
}

// parseHead parses a binding prefix. It returns nil if the input does not
// start with one. The "=" is a commit point: errors after it are fatal.
//
//	Head   → 'let' Identifier Params? '='
//	Params → '(' ')' | '(' Identifier (',' Identifier)* ')' | Identifier+
func (p *parser) parseHead() (*bindingHead, error) {
	let, ok := p.accept(TokenKeyword, KeywordLet)
	if !ok {
		return nil, nil
	}

	name, ok := p.accept(TokenIdentifier, "")
	if !ok {
		return nil, nil
	}

	h := &bindingHead{let: let, name: name}

	if _, ok := p.accept(TokenOperator, "="); ok {
		return h, nil
	}

	if h.params, ok = p.parseParams(); !ok {
		return nil, nil
	}

	h.hasParams = true

	if _, ok := p.accept(TokenOperator, "="); !ok {
		return nil, nil
	}

	return h, p.checkParams(h.params)
}

func (p *parser) parseParams() ([]Token, bool) {
	var params []Token

	if _, ok := p.accept(TokenPunct, "("); ok {
		if _, ok := p.accept(TokenPunct, ")"); ok {
			return []Token{}, true
		}

		for {
			name, ok := p.accept(TokenIdentifier, "")
			if !ok {
				return nil, false
			}

			params = append(params, name)

			if _, ok := p.accept(TokenPunct, ","); !ok {
				break
			}
		}

		if _, ok := p.accept(TokenPunct, ")"); !ok {
			return nil, false
		}

		return params, true
	}

	for {
		name, ok := p.accept(TokenIdentifier, "")
		if !ok {
			break
		}

		params = append(params, name)
	}

	return params, len(params) > 0
}

func (p *parser) checkParams(params []Token) error {
	seen := make(map[string]struct{}, len(params))

	for _, tok := range params {
		if _, dup := seen[tok.Text]; dup {
			return &Diagnostic{
				Kind:     SyntaxError,
				Pos:      tok.Pos,
				Found:    tok.String(),
				Expected: []string{"distinct parameter name"},
				Cause:    ErrDuplicateParam.With(slog.String("name", tok.Text)),
			}
		}

		seen[tok.Text] = struct{}{}
	}

	return nil
}

// parseLambda parses a local function binding.
//
//	Lambda → 'let' Identifier Params '=' Base 'in' Base
func (p *parser) parseLambda() (Expr, error) {
	h, err := p.parseHead()
	if err != nil || h == nil || !h.hasParams {
		return nil, err
	}

	value, err := p.requireExpr()
	if err != nil {
		return nil, err
	}

	return p.parseContinuation(h, value)
}

// parseLet parses a single binding.
//
//	Let → 'let' Identifier '=' Base 'in' Base
func (p *parser) parseLet() (Expr, error) {
	h, err := p.parseHead()
	if err != nil || h == nil || h.hasParams {
		return nil, err
	}

	value, err := p.requireExpr()
	if err != nil {
		return nil, err
	}

	return p.parseContinuation(h, value)
}

// parseContinuation parses "in body" and completes the binding.
func (p *parser) parseContinuation(h *bindingHead, value Expr) (Expr, error) {
	if _, err := p.require(TokenKeyword, KeywordIn); err != nil {
		return nil, err
	}

	body, err := p.requireExpr()
	if err != nil {
		return nil, err
	}

	span := Span{h.let.Pos, body.Span().End}

	if h.hasParams {
		return NewLambda(span, h.name.Text, h.paramNames(), value, body), nil
	}

	return NewLet(span, h.name.Text, value, body), nil
}

// parseConditional parses a conditional expression.
//
//	Conditional → 'if' Condition 'then' Base 'else' Base
func (p *parser) parseConditional() (Expr, error) {
	start, ok := p.accept(TokenKeyword, KeywordIf)
	if !ok {
		return nil, nil
	}

	cond, err := p.parseCondition()
	if err != nil || cond == nil {
		return nil, err
	}

	if _, err := p.require(TokenKeyword, KeywordThen); err != nil {
		return nil, err
	}

	then, err := p.requireExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.require(TokenKeyword, KeywordElse); err != nil {
		return nil, err
	}

	els, err := p.requireExpr()
	if err != nil {
		return nil, err
	}

	return NewConditional(Span{start.Pos, els.Span().End}, cond, then, els), nil
}

// parseCondition parses a base expression optionally compared to another.
//
//	Condition → Base (CompareOp Base)?
func (p *parser) parseCondition() (Expr, error) {
	left, err := p.parseBase()
	if err != nil || left == nil {
		return nil, err
	}

	tok := p.peek()

	op, ok := compareOps[tok.Text]
	if tok.Kind != TokenOperator || !ok {
		for _, s := range sortedKeys(compareOps) {
			p.expect(strconv.Quote(s))
		}

		return left, nil
	}

	p.next()

	right, err := p.parseBase()
	if err != nil || right == nil {
		return nil, err
	}

	return NewComparison(op, left, right), nil
}

// The arithmetic precedence chain. Every level folds left.
//
//	Additive       → Power (('+' | '-') Power)*
//	Power          → Multiplicative ('**' Multiplicative)*
//	Multiplicative → Operand (('*' | '/') Operand)*
func (p *parser) parseAdditive() (Expr, error) {
	return p.foldLeft(levelAdditive, p.parsePower)
}

func (p *parser) parsePower() (Expr, error) {
	return p.foldLeft(levelPower, p.parseMultiplicative)
}

func (p *parser) parseMultiplicative() (Expr, error) {
	return p.foldLeft(levelMultiplicative, p.parseOperand)
}

func (p *parser) foldLeft(level int, operand func() (Expr, error)) (Expr, error) {
	left, err := operand()
	if err != nil || left == nil {
		return nil, err
	}

	for {
		m := p.mark()

		op, ok := p.acceptArith(level)
		if !ok {
			return left, nil
		}

		right, err := operand()
		if err != nil {
			return nil, err
		}

		// A dangling operator is left for the caller.
		if right == nil {
			p.reset(m)

			return left, nil
		}

		left = NewBinaryOp(op, left, right)
	}
}

func (p *parser) acceptArith(level int) (ArithOp, bool) {
	tok := p.peek()

	if op, ok := arithOps[tok.Text]; ok && tok.Kind == TokenOperator &&
		op.level() == level {
		p.next()

		return op, true
	}

	for s, op := range arithOps {
		if op.level() == level {
			p.expect(strconv.Quote(s))
		}
	}

	return 0, false
}

// parseOperand parses an operand of the multiplicative level.
//
//	Operand → Call | Atomic
func (p *parser) parseOperand() (Expr, error) {
	m := p.mark()

	call, err := p.parseCall()
	if err != nil || call != nil {
		return call, err
	}

	p.reset(m)

	return p.parseAtomic()
}

// parseCall parses a function application. Arguments are atomic, so
// "f x + 1" applies f to x only.
//
//	Call → Identifier '(' ')'
//	     | Identifier '(' Base (',' Base)+ ')'
//	     | Identifier Atomic+
func (p *parser) parseCall() (Expr, error) {
	name, ok := p.accept(TokenIdentifier, "")
	if !ok {
		return nil, nil
	}

	var args []Expr

	if _, ok := p.accept(TokenPunct, "("); ok {
		if rparen, ok := p.accept(TokenPunct, ")"); ok {
			return NewCall(Span{name.Pos, rparen.End()}, name.Text, []Expr{}), nil
		}

		first, err := p.requireExpr()
		if err != nil {
			return nil, err
		}

		if _, ok := p.accept(TokenPunct, ","); ok {
			return p.parseArgList(name, first)
		}

		if _, ok := p.accept(TokenPunct, ")"); !ok {
			return nil, p.syntaxError(`")"`, `","`)
		}

		args = append(args, first)
	}

	for {
		arg, err := p.parseAtomic()
		if err != nil {
			return nil, err
		}

		if arg == nil {
			break
		}

		args = append(args, arg)
	}

	if len(args) == 0 {
		return nil, nil
	}

	return NewCall(Span{name.Pos, p.prev().End()}, name.Text, args), nil
}

// parseArgList parses the rest of a comma-separated argument list.
func (p *parser) parseArgList(name Token, first Expr) (Expr, error) {
	args := []Expr{first}

	for {
		arg, err := p.requireExpr()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		if _, ok := p.accept(TokenPunct, ","); !ok {
			break
		}
	}

	rparen, ok := p.accept(TokenPunct, ")")
	if !ok {
		return nil, p.syntaxError(`")"`, `","`)
	}

	return NewCall(Span{name.Pos, rparen.End()}, name.Text, args), nil
}

// parseAtomic parses a literal, a variable, or a parenthesized expression.
// An opening parenthesis is a commit point.
//
//	Atomic → Number | Identifier | '(' Base ')'
func (p *parser) parseAtomic() (Expr, error) {
	if tok, ok := p.accept(TokenNumber, ""); ok {
		return p.number(tok)
	}

	if tok, ok := p.accept(TokenIdentifier, ""); ok {
		return NewVariable(tok.Span(), tok.Text), nil
	}

	if _, ok := p.accept(TokenPunct, "("); ok {
		e, err := p.requireExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.require(TokenPunct, ")"); err != nil {
			return nil, err
		}

		return e, nil
	}

	return nil, nil
}

func (p *parser) number(tok Token) (Expr, error) {
	v, err := strconv.ParseFloat(tok.Text, 64)
	if math.IsInf(v, 0) || (err != nil && !errors.Is(err, strconv.ErrRange)) {
		return nil, &Diagnostic{
			Kind:     SyntaxError,
			Pos:      tok.Pos,
			Found:    tok.String(),
			Expected: []string{"finite number"},
			Cause:    ErrNonFinite,
		}
	}

	return NewNumber(tok.Span(), v, tok.Text), nil
}

// requireExpr parses a base expression that must be present.
func (p *parser) requireExpr() (Expr, error) {
	e, err := p.parseBase()
	if err != nil {
		return nil, err
	}

	if e == nil {
		return nil, p.syntaxError("expression")
	}

	return e, nil
}

// exhausted reports the furthest failure of an ordered choice.
func (p *parser) exhausted() error {
	tok := p.tokens[p.far]
	expected := sortedKeys(p.expected)

	d := &Diagnostic{
		Kind:     ExhaustedChoice,
		Pos:      tok.Pos,
		Found:    tok.String(),
		Expected: expected,
	}

	if tok.Kind == TokenIdentifier {
		d.Hint = suggest(tok.Text, expected)
	}

	return d
}

func (p *parser) syntaxError(expected ...string) error {
	tok := p.peek()

	d := &Diagnostic{
		Kind:     SyntaxError,
		Pos:      tok.Pos,
		Found:    tok.String(),
		Expected: expected,
	}

	if tok.Kind == TokenIdentifier {
		d.Hint = suggest(tok.Text, expected)
	}

	return d
}

// synchronize skips past the item that began at start, stopping after the
// next ";" or before the next "let".
func (p *parser) synchronize(start int) {
	if p.pos <= start {
		p.reset(start)
		p.next()
	}

	for tok := p.peek(); !tok.Is(TokenEOF, "") &&
		!tok.Is(TokenKeyword, KeywordLet); tok = p.peek() {
		p.next()

		if tok.Is(TokenPunct, ";") {
			break
		}
	}

	p.far = p.pos
	clear(p.expected)
}

func (p *parser) peek() Token { return p.tokens[p.pos] }

func (p *parser) prev() Token { return p.tokens[max(p.pos-1, 0)] }

// next consumes the current token. The final EOF token is never consumed.
func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}

	return tok
}

func (p *parser) mark() int { return p.pos }

func (p *parser) reset(m int) { p.pos = m }

// expect records that desc would have been accepted at the cursor.
func (p *parser) expect(desc string) {
	switch {
	case p.pos > p.far:
		p.far = p.pos
		clear(p.expected)

	case p.pos < p.far:
		return
	}

	p.expected[desc] = struct{}{}
}

// accept consumes the current token if it matches kind and text.
// An empty text matches any token of the kind.
func (p *parser) accept(kind TokenKind, text string) (Token, bool) {
	tok := p.peek()
	if tok.Is(kind, text) {
		p.next()

		return tok, true
	}

	p.expect(describe(kind, text))

	return tok, false
}

// require is accept after a commit point: a mismatch is fatal.
func (p *parser) require(kind TokenKind, text string) (Token, error) {
	if tok, ok := p.accept(kind, text); ok {
		return tok, nil
	}

	return Token{}, p.syntaxError(describe(kind, text))
}

func describe(kind TokenKind, text string) string {
	if text != "" {
		return strconv.Quote(text)
	}

	switch kind {
	case TokenIdentifier:
		return "identifier"
	case TokenNumber:
		return "number"
	default:
		return kind.String()
	}
}
