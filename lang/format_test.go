package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
)

func format(t *testing.T, prog *Program) string {
	t.Helper()

	var buf bytes.Buffer
	if err := prog.Format(t.Context(), &buf); err != nil {
		t.Fatalf("format error: %v", err)
	}

	return buf.String()
}

func TestFormat_Native(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"precedence", "1+2*3", "1 + 2 * 3\n"},
		{"grouped sum", "(1+2)*3", "(1 + 2) * 3\n"},
		{"right grouping kept", "1-(2-3)", "1 - (2 - 3)\n"},
		{"left grouping dropped", "(1-2)-3", "1 - 2 - 3\n"},
		{"power chain", "2**3**2", "2 ** 3 ** 2\n"},
		{"right power grouping", "2**(3**2)", "2 ** (3 ** 2)\n"},
		{"product under power", "(2*3)**2", "2 * 3 ** 2\n"},
		{"power under product", "2*(3**2)", "2 * (3 ** 2)\n"},
		{"signed operand", "x - -1", "x - -1\n"},
		{"normalized number", "2.50e1", "25\n"},
		{"call operand", "f x+1", "f x + 1\n"},
		{"comma call", "f(2,3)", "f 2 3\n"},
		{"grouped arguments", "f (x+1) (-1) (g y)", "f (x + 1) (-1) (g y)\n"},
		{"zero argument call", "f()", "f()\n"},
		{"lambda", "let f(x,y) = x+y in f(2,3)", "let f x y = x + y in f 2 3\n"},
		{"lambda with no parameters", "let f () = 1 in f()", "let f () = 1 in f()\n"},
		{"conditional", "if x>0 then 1 else -1", "if x > 0 then 1 else -1\n"},
		{"compound operand", "1 + (let x = 2 in x)", "1 + (let x = 2 in x)\n"},
		{
			"compound condition",
			"if (if a then b else c) then 1 else 2",
			"if (if a then b else c) then 1 else 2\n",
		},
		{
			"compound comparison side",
			"if (let y = 1 in y) > 0 then y else 0",
			"if (let y = 1 in y) > 0 then y else 0\n",
		},
		{"items", "let f x = x; f 1", "let f x = x;\nf 1\n"},
		{"definition with no parameters", "let k () = 1", "let k () = 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := format(t, mustParse(t, tt.input))
			if got != tt.want {
				t.Errorf("format mismatch:\nwant: %q\ngot:  %q", tt.want, got)
			}
		})
	}
}

// roundTripInputs are sources whose formatted output must parse back to the
// same tree.
var roundTripInputs = []string{
	"3.14",
	"-0",
	"1e21",
	"0.000001",
	"1+2*3",
	"2**3**2",
	"2*3**2",
	"(1 + 2) * (3 - 4) / 5",
	"1 - (2 - (3 - 4))",
	"x * -1 + -2",
	"let x = 5 in x+1",
	"let f(x,y) = x+y in f(2,3)",
	"let f x y = x*y in f 2 (f 3 4)",
	"if x>0 then 1 else -1",
	"if a then if b then 1 else 2 else 3",
	"if f x <= g (y + 1) then let z = x in z else (if q then -1 else 1)",
	"f x+1",
	"f (x) y (-3) (let a = 1 in a)",
	"max(1, 2 ** 3, if c then d else e)",
	"let k () = 1; k()",
	"let square x = x * x;\nlet hyp(a, b) = square a + square b;\nhyp 3 4",
	"let f x = let g y = y in g x; f 2",
	"let a = let b = 1 in b in (let c = a in c) ** 2",
}

func TestFormat_RoundTrip(t *testing.T) {
	for _, input := range roundTripInputs {
		t.Run(input, func(t *testing.T) {
			prog := mustParse(t, input)
			out := format(t, prog)

			again, err := Parse(t.Context(), out)
			if err != nil {
				t.Fatalf("formatted output does not parse: %v\n%s", err, out)
			}

			if prog.String() != again.String() {
				t.Errorf("round trip mismatch:\nwant: %s\ngot:  %s\nformatted:\n%s",
					prog, again, out)
			}

			if second := format(t, again); second != out {
				t.Errorf("format is not stable:\nfirst:  %q\nsecond: %q", out, second)
			}
		})
	}
}

func FuzzFormatRoundTrip(f *testing.F) {
	for _, input := range roundTripInputs {
		f.Add(input)
	}

	f.Add(")")
	f.Add("let x = in x")
	f.Add("1 $ 2")
	f.Add("((((((((((((1))))))))))))")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		prog, err := Parse(context.Background(), input, WithRecovery(true))
		if err != nil {
			return
		}

		var buf bytes.Buffer
		if err := prog.Format(context.Background(), &buf); err != nil {
			t.Fatalf("format error: %v", err)
		}

		again, err := Parse(context.Background(), buf.String())
		if err != nil {
			t.Fatalf("formatted output of %q does not parse: %v\n%s",
				input, err, buf.String())
		}

		if prog.String() != again.String() {
			t.Errorf("round trip mismatch for %q:\nwant: %s\ngot:  %s",
				input, prog, again)
		}
	})
}

func TestFormatNode(t *testing.T) {
	prog := mustParse(t, "let f x = (x + 1) * 2")

	def := prog.Items[0].(*FunctionDef)

	if got := FormatNode(def.Body); got != "(x + 1) * 2" {
		t.Errorf("unexpected body: %q", got)
	}

	if got := FormatNode(def); got != "let f x = (x + 1) * 2" {
		t.Errorf("unexpected definition: %q", got)
	}
}

func TestProgram_Print(t *testing.T) {
	prog := mustParse(t, "let f x = x + 1; f(2, y)")

	var buf bytes.Buffer
	if err := prog.Print(t.Context(), &buf); err != nil {
		t.Fatalf("print error: %v", err)
	}

	want := strings.Join([]string{
		"Program",
		"  FunctionDef: f",
		"    Params: x",
		"    Body",
		"      BinaryOp: +",
		"        Variable: x",
		"        Number: 1",
		"  Call: f",
		"    Number: 2",
		"    Variable: y",
		"",
	}, "\n")

	if got := buf.String(); got != want {
		t.Errorf("print mismatch:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestFormatJSON(t *testing.T) {
	prog := mustParse(t, "let f(x) = x * 2; f 3")

	var buf bytes.Buffer
	if err := prog.FormatJSON(t.Context(), &buf, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	var result struct {
		Type  string           `json:"type"`
		Items []map[string]any `json:"items"`
	}

	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("JSON unmarshal error: %v\n%s", err, buf.String())
	}

	if result.Type != "Program" || len(result.Items) != 2 {
		t.Fatalf("unexpected program: %+v", result)
	}

	def := result.Items[0]
	if def["type"] != "FunctionDef" || def["name"] != "f" {
		t.Errorf("unexpected definition: %v", def)
	}

	body, ok := def["body"].(map[string]any)
	if !ok || body["op"] != "*" {
		t.Errorf("unexpected body: %v", def["body"])
	}

	call := result.Items[1]
	if call["type"] != "Call" || call["span"] != "1:19-1:22" {
		t.Errorf("unexpected call: %v", call)
	}

	args, ok := call["args"].([]any)
	if !ok || len(args) != 1 {
		t.Fatalf("unexpected arguments: %v", call["args"])
	}

	if arg, ok := args[0].(map[string]any); !ok || arg["value"] != 3.0 {
		t.Errorf("unexpected argument: %v", args[0])
	}
}

func TestFormatYAML(t *testing.T) {
	prog := mustParse(t, "if a <> 1 then -2 else b")

	var buf bytes.Buffer
	if err := prog.FormatYAML(t.Context(), &buf, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	var result map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("YAML unmarshal error: %v\n%s", err, buf.String())
	}

	items, ok := result["items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("unexpected items: %v", result["items"])
	}

	cond, ok := items[0].(map[string]any)
	if !ok || cond["type"] != "Conditional" {
		t.Fatalf("unexpected item: %v", items[0])
	}

	cmp, ok := cond["cond"].(map[string]any)
	if !ok || cmp["op"] != "<>" {
		t.Errorf("unexpected condition: %v", cond["cond"])
	}

	if !strings.Contains(buf.String(), "text: \"-2\"") &&
		!strings.Contains(buf.String(), "text: -2") {
		t.Errorf("expected literal text in output:\n%s", buf.String())
	}
}

func TestFormatYAML_Flow(t *testing.T) {
	prog := mustParse(t, "x")

	var buf bytes.Buffer
	if err := prog.FormatYAML(t.Context(), &buf, 0); err != nil {
		t.Fatalf("format error: %v", err)
	}

	if got := buf.String(); !strings.HasPrefix(got, "{") {
		t.Errorf("expected flow style, got %q", got)
	}
}
