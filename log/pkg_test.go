package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func useDefault(t *testing.T, opts ...Option) *bytes.Buffer {
	t.Helper()

	original := Default()
	t.Cleanup(func() {
		defaultMu.Lock()
		defaultLog = original
		defaultMu.Unlock()
	})

	var buf bytes.Buffer

	Config(append([]Option{WithOutput(&buf), WithFormat(FormatJSON)}, opts...)...)

	return &buf
}

func TestPackage_LogFunctions_UseDefaultLogger(t *testing.T) {
	buf := useDefault(t, WithLevel(LevelTrace))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
		{"TraceContext", func(msg string, attrs ...slog.Attr) {
			TraceContext(context.Background(), msg, attrs...)
		}, "TRACE"},
		{"DebugContext", func(msg string, attrs ...slog.Attr) {
			DebugContext(context.Background(), msg, attrs...)
		}, "DEBUG"},
		{"InfoContext", func(msg string, attrs ...slog.Attr) {
			InfoContext(context.Background(), msg, attrs...)
		}, "INFO"},
		{"WarnContext", func(msg string, attrs ...slog.Attr) {
			WarnContext(context.Background(), msg, attrs...)
		}, "WARN"},
		{"ErrorContext", func(msg string, attrs ...slog.Attr) {
			ErrorContext(context.Background(), msg, attrs...)
		}, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("package message", slog.String("key", "value"))

			output := buf.String()
			for _, want := range []string{
				`"msg":"package message"`,
				`"level":"` + tt.level + `"`,
				`"key":"value"`,
			} {
				if !strings.Contains(output, want) {
					t.Errorf("expected %s in output: %s", want, output)
				}
			}
		})
	}
}

func TestPackage_Config_KeepsPreviousSettings(t *testing.T) {
	buf := useDefault(t, WithLevel(LevelError))

	Config(WithCaller(true))
	Warn("filtered")

	if buf.Len() > 0 {
		t.Errorf("expected level to be kept, got %s", buf.String())
	}

	With(slog.String("scope", "pkg")).Error("kept")

	if out := buf.String(); !strings.Contains(out, `"scope":"pkg"`) ||
		!strings.Contains(out, `"source"`) {
		t.Errorf("expected attributes and source, got %s", out)
	}
}
