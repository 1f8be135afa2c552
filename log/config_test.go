package log

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelTrace, "trace"},
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LevelInfo + 2, "info+2"},
		{LevelError + 4, "error+4"},
		{LevelTrace - 2, "trace-2"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"trace", LevelTrace},
		{" TRACE ", LevelTrace},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"info+2", LevelInfo + 2},
		{"verbose", DefaultLevel},
		{"", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"json", FormatJSON},
		{" JSON ", FormatJSON},
		{"text", FormatText},
		{"xml", DefaultFormat},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestLevelsAndFormats(t *testing.T) {
	levels := slices.Collect(Levels())
	if want := []string{"trace", "debug", "info", "warn", "error"}; !slices.Equal(levels, want) {
		t.Errorf("expected levels %v, got %v", want, levels)
	}

	for _, name := range levels {
		if got := ParseLevel(name).String(); got != name {
			t.Errorf("level %q does not round trip, got %q", name, got)
		}
	}

	formats := slices.Collect(Formats())
	if want := []string{"text", "json"}; !slices.Equal(formats, want) {
		t.Errorf("expected formats %v, got %v", want, formats)
	}

	if got := Format(7).String(); got != "Format(7)" {
		t.Errorf("unexpected name for unknown format: %q", got)
	}
}

func TestConfig_Options(t *testing.T) {
	c := apply(config{},
		WithLevel(LevelDebug),
		WithFormat(FormatJSON),
		WithCaller(true),
		WithPretty(true),
	)

	if c.level != LevelDebug {
		t.Errorf("expected level debug, got %v", c.level)
	}

	if c.format != FormatJSON {
		t.Errorf("expected format json, got %v", c.format)
	}

	if !c.caller || !c.pretty {
		t.Errorf("expected caller and pretty enabled, got %v and %v",
			c.caller, c.pretty)
	}

	if c.mutex == nil {
		t.Error("expected options to allocate a mutex")
	}
}

func TestConfig_WithOutput_NilDiscards(t *testing.T) {
	c := WithOutput(nil)(config{})
	if c.output == nil {
		t.Error("expected nil writer to be replaced")
	}
}

func TestConfig_formatTime(t *testing.T) {
	now := time.Date(2023, 10, 15, 14, 30, 45, 123456789, time.UTC)

	tests := []struct {
		name   string
		layout string
		want   string
	}{
		{"named", "RFC3339", "2023-10-15T14:30:45Z"},
		{"named with nanoseconds", "RFC3339Nano", "2023-10-15T14:30:45.123456789Z"},
		{"named ignoring punctuation", "date-time", "2023-10-15 14:30:45"},
		{"short name", "ms", "Oct 15 14:30:45.123"},
		{"custom", "2006-01-02 15:04", "2023-10-15 14:30"},
		{"empty", "", ""},
		{"blank", "   \t  ", ""},
		{"none", "none", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := WithTimeLayout(tt.layout)(config{})
			if got := c.formatTime(now); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestConfig_replaceAttr_LevelNames(t *testing.T) {
	var buf strings.Builder

	logger := Make(&buf, WithLevel(LevelTrace), WithTimeLayout("none"))
	logger.Trace("deep")

	if got := buf.String(); !strings.Contains(got, "level=TRACE") {
		t.Errorf("expected TRACE level name, got %q", got)
	}

	if strings.Contains(buf.String(), "time=") {
		t.Errorf("expected no timestamp, got %q", buf.String())
	}
}

func BenchmarkConfig_formatTime(b *testing.B) {
	c := WithTimeLayout("RFC3339Nano")(config{})
	now := time.Now()

	for b.Loop() {
		_ = c.formatTime(now)
	}
}
