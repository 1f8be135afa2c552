package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by prettyHandler.
// Styles are bound to the output's renderer, so they render plain text when
// the output is not a terminal.
type palette struct {
	key, str, num, dur, yes, no, null lipgloss.Style

	trace, debug, info, warn, err lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return &palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		dur:  fg("5"),
		yes:  fg("2"),
		no:   fg("1"),
		null: fg("8"),

		trace: fg("8"),
		debug: fg("4"),
		info:  fg("2").Bold(true),
		warn:  fg("3").Bold(true),
		err:   fg("1").Bold(true),
	}
}

func (p *palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// prettyHandler writes records for a human reader. In line mode each record
// is one line of key=value pairs; in block mode each record is an indented,
// brace-delimited list of key: value pairs.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	pal    *palette
	prefix string      // dotted group path for subsequent attributes
	attrs  []slog.Attr // preformatted by WithAttrs, keys already prefixed
	block  bool
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	block bool,
) *prettyHandler {
	return &prettyHandler{
		opts:  *opts,
		mu:    &sync.Mutex{},
		w:     w,
		pal:   newPalette(w),
		block: block,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		fields = h.appendBuiltin(fields, slog.Time(slog.TimeKey, r.Time))
	}

	fields = h.appendBuiltin(fields, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			fields = h.appendBuiltin(fields, slog.String(
				slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	fields = h.appendBuiltin(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = h.appendAttr(fields, h.prefix, a)

		return true
	})

	buf := new(bytes.Buffer)

	if h.block {
		buf.WriteString("{\n")
	}

	for i, a := range fields {
		switch {
		case h.block && i > 0:
			buf.WriteString(",\n")
		case i > 0:
			buf.WriteByte(' ')
		}

		if h.block {
			buf.WriteString("  ")
		}

		buf.WriteString(h.pal.key.Render(a.Key))

		if h.block {
			buf.WriteString(": ")
		} else {
			buf.WriteByte('=')
		}

		h.writeValue(buf, a.Key, a.Value, r.Level)
	}

	if h.block {
		buf.WriteString("\n}")
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h
	c.attrs = make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(c.attrs, h.attrs)

	for _, a := range attrs {
		c.attrs = c.appendAttr(c.attrs, c.prefix, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

// appendBuiltin passes a built-in attribute through ReplaceAttr.
func (h *prettyHandler) appendBuiltin(dst []slog.Attr, a slog.Attr) []slog.Attr {
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	if a.Key == "" {
		return dst
	}

	return append(dst, a)
}

// appendAttr resolves a and flattens groups into dotted keys.
func (h *prettyHandler) appendAttr(
	dst []slog.Attr,
	prefix string,
	a slog.Attr,
) []slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if len(group) == 0 {
			return dst
		}

		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, g := range group {
			dst = h.appendAttr(dst, prefix, g)
		}

		return dst
	}

	if a.Equal(slog.Attr{}) {
		return dst
	}

	a.Key = prefix + a.Key

	return append(dst, a)
}

func (h *prettyHandler) writeValue(
	buf *bytes.Buffer,
	key string,
	v slog.Value,
	level slog.Level,
) {
	if key == slog.LevelKey {
		buf.WriteString(h.pal.level(level).Render(v.String()))

		return
	}

	switch v.Kind() {
	case slog.KindString:
		buf.WriteString(h.pal.str.Render(v.String()))

	case slog.KindInt64:
		buf.WriteString(h.pal.num.Render(strconv.FormatInt(v.Int64(), 10)))

	case slog.KindUint64:
		buf.WriteString(h.pal.num.Render(strconv.FormatUint(v.Uint64(), 10)))

	case slog.KindFloat64:
		buf.WriteString(h.pal.num.Render(
			strconv.FormatFloat(v.Float64(), 'g', -1, 64)))

	case slog.KindBool:
		if v.Bool() {
			buf.WriteString(h.pal.yes.Render("true"))
		} else {
			buf.WriteString(h.pal.no.Render("false"))
		}

	case slog.KindDuration:
		buf.WriteString(h.pal.dur.Render(v.Duration().String()))

	case slog.KindTime:
		buf.WriteString(h.pal.str.Render(v.Time().Format(time.RFC3339)))

	default:
		if v.Any() == nil {
			buf.WriteString(h.pal.null.Render("null"))

			return
		}

		buf.WriteString(h.pal.str.Render(v.String()))
	}
}
