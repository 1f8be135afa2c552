package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/boi/lang"
)

// runner is a command under test.
type runner interface {
	Run(ctx context.Context) error
}

// run executes cmd with input on stdin and returns its output.
func run(t *testing.T, cmd runner, input string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	ctx := WithOutput(t.Context(), &out)
	ctx = WithInput(ctx, strings.NewReader(input))

	err := cmd.Run(ctx)

	return out.String(), err
}

var testFlags = parseFlags{MaxDepth: lang.DefaultMaxDepth}

// TestFmtNative tests formatting as canonical boi syntax.
func TestFmtNative(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "expression",
			input: "1+2*3",
			want:  "1 + 2 * 3\n",
		},
		{
			name:  "items",
			input: "let f(x,y)=x+y; f(2,3)",
			want:  "let f x y = x + y;\nf 2 3\n",
		},
		{
			name:  "comments_dropped",
			input: "# sum\nlet s = 1 in s # trailing\n",
			want:  "let s = 1 in s\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, &Native{parseFlags: testFlags, Source: stdinSource}, tt.input)
			if err != nil {
				t.Fatalf("Native.Run() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("Native.Run() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestFmtNativeFile tests formatting a source read from a file.
func TestFmtNativeFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{"sq.boi": "let sq x = x*x;sq 3"})

	cmd := &Native{parseFlags: testFlags, Source: filepath.Join(dir, "sq.boi")}

	got, err := run(t, cmd, "")
	if err != nil {
		t.Fatalf("Native.Run() error = %v", err)
	}

	if want := "let sq x = x * x;\nsq 3\n"; got != want {
		t.Errorf("Native.Run() = %q, want %q", got, want)
	}
}

// TestFmtJSON tests formatting the syntax tree as JSON.
func TestFmtJSON(t *testing.T) {
	for _, indent := range []int{0, 2, 4} {
		t.Run("indent_"+strconv.Itoa(indent), func(t *testing.T) {
			got, err := run(t, &JSON{parseFlags: testFlags, Indent: indent, Source: stdinSource}, "f x; 1")
			if err != nil {
				t.Fatalf("JSON.Run() error = %v", err)
			}

			if lines := strings.Count(got, "\n"); (indent == 0) != (lines == 1) {
				t.Errorf("JSON.Run() indent %d produced %d lines", indent, lines)
			}

			var doc struct {
				Type  string           `json:"type"`
				Items []map[string]any `json:"items"`
			}

			if err := json.Unmarshal([]byte(got), &doc); err != nil {
				t.Fatalf("invalid JSON: %v\n%s", err, got)
			}

			if doc.Type != "Program" || len(doc.Items) != 2 {
				t.Fatalf("unexpected document: %+v", doc)
			}

			if doc.Items[0]["type"] != "Call" || doc.Items[0]["callee"] != "f" {
				t.Errorf("unexpected first item: %v", doc.Items[0])
			}
		})
	}
}

// TestFmtYAML tests formatting the syntax tree as YAML.
func TestFmtYAML(t *testing.T) {
	for _, indent := range []int{0, 2} {
		got, err := run(t, &YAML{parseFlags: testFlags, Indent: indent, Source: stdinSource}, "let x = 1 in x")
		if err != nil {
			t.Fatalf("YAML.Run() error = %v", err)
		}

		var doc struct {
			Type  string           `yaml:"type"`
			Items []map[string]any `yaml:"items"`
		}

		if err := yaml.Unmarshal([]byte(got), &doc); err != nil {
			t.Fatalf("invalid YAML: %v\n%s", err, got)
		}

		if doc.Type != "Program" || len(doc.Items) != 1 {
			t.Fatalf("unexpected document: %+v", doc)
		}

		if doc.Items[0]["type"] != "Let" || doc.Items[0]["name"] != "x" {
			t.Errorf("unexpected item: %v", doc.Items[0])
		}
	}
}

// TestFmtAST tests printing the syntax tree.
func TestFmtAST(t *testing.T) {
	got, err := run(t, &AST{parseFlags: testFlags, Source: stdinSource}, "1+x")
	if err != nil {
		t.Fatalf("AST.Run() error = %v", err)
	}

	want := "Program\n  BinaryOp: +\n    Number: 1\n    Variable: x\n"
	if got != want {
		t.Errorf("AST.Run() =\n%s\nwant:\n%s", got, want)
	}

	got, err = run(t, &AST{parseFlags: testFlags, Go: true, Source: stdinSource}, "1+x")
	if err != nil {
		t.Fatalf("AST.Run() error = %v", err)
	}

	if !strings.HasPrefix(got, "&lang.Program{") || !strings.Contains(got, `Name: "x"`) {
		t.Errorf("AST.Run() with Go = %s", got)
	}
}

// TestFmtErrors tests that every format reports parse and read failures.
func TestFmtErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.boi")

	cmds := map[string]func(source string) runner{
		"native": func(s string) runner { return &Native{parseFlags: testFlags, Source: s} },
		"json":   func(s string) runner { return &JSON{parseFlags: testFlags, Source: s} },
		"yaml":   func(s string) runner { return &YAML{parseFlags: testFlags, Source: s} },
		"ast":    func(s string) runner { return &AST{parseFlags: testFlags, Source: s} },
	}

	for name, newCmd := range cmds {
		t.Run(name, func(t *testing.T) {
			out, err := run(t, newCmd(stdinSource), "let x = in x")
			if !errors.Is(err, ErrParse) || !errors.Is(err, lang.ErrSyntax) {
				t.Errorf("parse failure error = %v", err)
			}

			if out != "" {
				t.Errorf("parse failure wrote output: %q", out)
			}

			_, err = run(t, newCmd(missing), "")
			if !errors.Is(err, ErrReadSource) {
				t.Errorf("missing source error = %v", err)
			}
		})
	}
}

// TestFmtMaxDepth tests that the depth limit is passed to the parser.
func TestFmtMaxDepth(t *testing.T) {
	const nested = "((((((1))))))"

	cmd := &Native{parseFlags: parseFlags{MaxDepth: 3}, Source: stdinSource}

	_, err := run(t, cmd, nested)
	if !errors.Is(err, lang.ErrMaxDepthExceeded) {
		t.Errorf("Native.Run() error = %v, want ErrMaxDepthExceeded", err)
	}

	got, err := run(t, &Native{parseFlags: testFlags, Source: stdinSource}, nested)
	if err != nil || got != "1\n" {
		t.Errorf("Native.Run() = %q, %v", got, err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

// TestFmtWriteError tests that output failures are wrapped.
func TestFmtWriteError(t *testing.T) {
	ctx := WithOutput(t.Context(), failingWriter{})
	ctx = WithInput(ctx, strings.NewReader("1"))

	err := (&Native{parseFlags: testFlags, Source: stdinSource}).Run(ctx)
	if !errors.Is(err, ErrWriteOutput) {
		t.Errorf("Native.Run() error = %v, want ErrWriteOutput", err)
	}
}
