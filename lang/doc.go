// Package lang parses source text of the boi expression language.
//
// The language has numeric literals, variables, arithmetic, conditionals,
// local bindings, function calls, and top-level function definitions. The
// parser is a hand-written recursive descent parser with ordered choice:
// alternatives are tried in a fixed order, and the cursor is restored when
// one does not match. Certain tokens are commit points. A failure after a
// commit point is a fatal [SyntaxError] rather than a cue to try the next
// alternative.
//
// # Grammar
//
// Informal EBNF:
//
//	Program        → (Item ';'?)* EOF
//	Item           → FunctionDef | Base
//	FunctionDef    → 'let' Identifier Params '=' Base
//	Base           → Lambda | Let | Conditional | Additive
//	Lambda         → 'let' Identifier Params '=' Base 'in' Base
//	Let            → 'let' Identifier '=' Base 'in' Base
//	Conditional    → 'if' Condition 'then' Base 'else' Base
//	Condition      → Base (CompareOp Base)?
//	Additive       → Power (('+' | '-') Power)*
//	Power          → Multiplicative ('**' Multiplicative)*
//	Multiplicative → Operand (('*' | '/') Operand)*
//	Operand        → Call | Atomic
//	Call           → Identifier '(' ')'
//	               | Identifier '(' Base (',' Base)+ ')'
//	               | Identifier Atomic+
//	Atomic         → Number | Identifier | '(' Base ')'
//	Params         → '(' ')' | '(' Identifier (',' Identifier)* ')'
//	               | Identifier+
//	CompareOp      → '>=' | '>' | '<=' | '<' | '=' | '<>'
//
// All arithmetic levels are left-associative, so "2**3**2" is (2**3)**2.
// Function arguments are atomic, so "f x + 1" is f(x) + 1.
//
// A "+" or "-" directly followed by a digit is the sign of a numeric literal
// unless the previous token ends an operand (a number, an identifier, or a
// closing parenthesis). Thus "x -1" is a subtraction and "else -1" contains
// a negative literal. Comments start with "#" and end at the line's end.
//
// # Example
//
//	# top-level definitions
//	let square x = x * x;
//	let hyp(a, b) = square a + square b;
//
//	# expressions
//	let r = hyp(3, 4) in if r > 20 then r else -1
//
// # Errors
//
// [Parse] reports failures as a [*ParseError] listing [Diagnostic] values of
// kind [LexError], [SyntaxError], or [ExhaustedChoice]. No partial program is
// ever returned. With [WithRecovery], the parser skips a failed item and
// continues in order to report more than one diagnostic.
package lang
