package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

type initFlags struct {
	Verbose   bool     `help:"Enable verbose output" name:"verbose"`
	Output    string   `help:"Output file"           name:"output"`
	Count     int      `help:"Number of items"       name:"count"`
	Tags      []string `help:"Tags"                  name:"tags"`
	Secret    string   `hidden:""                    name:"secret"`
	PprofMode string   `name:"pprof-mode"`
}

type initDoc struct {
	Config struct {
		Output  string   `yaml:"output"`
		Tags    []string `yaml:"tags"`
		Count   int      `yaml:"count"`
		Verbose bool     `yaml:"verbose"`
	} `yaml:"config"`
}

func initContext(t *testing.T, confPath string, args ...string) context.Context {
	t.Helper()

	var cli initFlags

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), kctx)
}

// TestInitRun tests the Init.Run command.
func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(t *testing.T, path string)
		wantErr error
		force   bool
	}{
		{
			name: "create_new_config",
		},
		{
			name:  "overwrite_existing_with_force",
			force: true,
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing content"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "fail_without_force",
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing content"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: ErrFileExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.setup != nil {
				tt.setup(t, confPath)
			}

			ctx := initContext(t, confPath,
				"--verbose", "--output=test.txt", "--count=5",
				"--tags=a,b", "--secret=x", "--pprof-mode=cpu")

			err := (&Init{Force: tt.force}).Run(ctx)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Init.Run() error = %v, want %v", err, tt.wantErr)
				}

				if !errors.Is(err, ErrWriteConfig) {
					t.Errorf("Init.Run() error = %v, want ErrWriteConfig", err)
				}

				content, _ := os.ReadFile(confPath)
				if string(content) != "existing content" {
					t.Errorf("existing file modified: %q", content)
				}

				return
			}

			if err != nil {
				t.Fatalf("Init.Run() error = %v", err)
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var doc initDoc
			if err := yaml.Unmarshal(content, &doc); err != nil {
				t.Fatalf("generated config is not valid YAML: %v\n%s", err, content)
			}

			got := doc.Config
			if !got.Verbose || got.Output != "test.txt" || got.Count != 5 {
				t.Errorf("config = %+v", got)
			}

			if !reflect.DeepEqual(got.Tags, []string{"a", "b"}) {
				t.Errorf("config tags = %v, want [a b]", got.Tags)
			}

			for _, key := range []string{"secret", "pprof-mode", "help"} {
				if strings.Contains(string(content), key+":") {
					t.Errorf("config contains ignored flag %q:\n%s", key, content)
				}
			}
		})
	}
}

// TestInitRunNoContext tests that Init requires a kong context.
func TestInitRunNoContext(t *testing.T) {
	t.Parallel()

	err := (&Init{}).Run(context.Background())
	if !errors.Is(err, ErrNoContext) {
		t.Errorf("Init.Run() error = %v, want ErrNoContext", err)
	}
}

// TestInitFlagOrder tests that flags are written in declaration order and
// unset strings are omitted.
func TestInitFlagOrder(t *testing.T) {
	t.Parallel()

	ctx := initContext(t, "unused", "--count=3")

	items := flagValues(kongContextFrom(ctx))

	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.Key.(string))
	}

	want := []string{"verbose", "count"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("flagValues() keys = %v, want %v", keys, want)
	}
}

type stringer struct{}

func (stringer) String() string { return "custom" }

// TestConfigValue tests the conversion of flag values to YAML values.
func TestConfigValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  any
		want   any
		wantOK bool
	}{
		{name: "nil", value: nil},
		{name: "bool", value: false, want: false, wantOK: true},
		{name: "int", value: 42, want: int64(42), wantOK: true},
		{name: "int8", value: int8(-3), want: int64(-3), wantOK: true},
		{name: "uint", value: uint(7), want: uint64(7), wantOK: true},
		{name: "float", value: 1.5, want: 1.5, wantOK: true},
		{name: "string", value: "text", want: "text", wantOK: true},
		{name: "empty_string", value: ""},
		{name: "empty_slice", value: []string{}},
		{name: "int_slice", value: []int{1, 2}, want: []any{int64(1), int64(2)}, wantOK: true},
		{name: "sparse_slice", value: []string{"", "x"}, want: []any{"x"}, wantOK: true},
		{name: "all_empty_slice", value: []string{""}},
		{name: "stringer", value: stringer{}, want: "custom", wantOK: true},
		{name: "unsupported", value: struct{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := configValue(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("configValue(%v) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}

			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("configValue(%v) = %#v, want %#v", tt.value, got, tt.want)
			}
		})
	}
}
