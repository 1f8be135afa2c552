package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/boi/lang"
	"github.com/ardnew/boi/log"
)

// Check parses each source and reports its diagnostics.
type Check struct {
	parseFlags `embed:""`

	Recover bool `default:"true" help:"Continue past broken items to report every diagnostic." negatable:""`
	Quiet   bool `help:"Report only sources with errors." short:"q"`

	Sources []string `arg:"" default:"-" help:"Source files or '-' for stdin." name:"source"`
}

// Run executes the check command. It fails if any source has diagnostics.
func (c *Check) Run(ctx context.Context) error {
	srcs, err := openSources(ctx, c.Sources)
	if err != nil {
		return err
	}

	defer srcs.Close()

	w := outputFrom(ctx)
	rep := newReporter(w)
	opts := c.options(lang.WithRecovery(c.Recover))

	var failed, count int

	for _, src := range srcs {
		prog, err := lang.ParseReader(ctx, src.r, opts...)

		var pe *lang.ParseError

		switch {
		case errors.As(err, &pe):
			failed++
			count += len(pe.Diagnostics)

			err = rep.failure(src.name, pe)

		case err != nil:
			return ErrReadSource.With(slog.String("source", src.name)).Wrap(err)

		case !c.Quiet:
			err = rep.success(src.name, prog)
		}

		if err != nil {
			return ErrWriteOutput.With(slog.String("source", src.name)).Wrap(err)
		}
	}

	log.DebugContext(ctx, "check complete",
		slog.Int("sources", len(srcs)),
		slog.Int("failed", failed),
		slog.Int("diagnostics", count))

	if failed > 0 {
		return ErrCheckFailed.With(
			slog.Int("sources", failed),
			slog.Int("diagnostics", count),
		)
	}

	return nil
}

// reporter renders check results. Styles are bound to the output, so color
// is dropped when it is not a terminal.
type reporter struct {
	w io.Writer

	location, caret, hint, ok, gutter lipgloss.Style

	kind map[lang.DiagnosticKind]lipgloss.Style
}

func newReporter(w io.Writer) *reporter {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return &reporter{
		w:        w,
		location: r.NewStyle().Bold(true),
		caret:    fg("1").Bold(true),
		hint:     fg("6"),
		ok:       fg("2"),
		gutter:   fg("8"),
		kind: map[lang.DiagnosticKind]lipgloss.Style{
			lang.LexError:        fg("1").Bold(true),
			lang.SyntaxError:     fg("1").Bold(true),
			lang.ExhaustedChoice: fg("5").Bold(true),
		},
	}
}

// failure writes each diagnostic of pe followed by a count line:
//
//	name:2:9: syntax error: expected expression, found "in"
//	  2 | let x = in x
//	              ^
//	name: 1 error
func (r *reporter) failure(name string, pe *lang.ParseError) error {
	var sb strings.Builder

	for _, d := range pe.Diagnostics {
		sb.WriteString(r.location.Render(name + ":" + d.Pos.String()))
		sb.WriteString(": ")
		sb.WriteString(r.kind[d.Kind].Render(d.Kind.String()))
		sb.WriteString(": ")

		msg, hint, _ := strings.Cut(d.Message(), " (did you mean ")
		sb.WriteString(msg)

		if hint != "" {
			sb.WriteString(" ")
			sb.WriteString(r.hint.Render("(did you mean " + hint))
		}

		sb.WriteByte('\n')

		r.writeSnippet(&sb, pe.Snippet(d))
	}

	n := len(pe.Diagnostics)

	sb.WriteString(r.location.Render(name))
	sb.WriteString(": ")
	sb.WriteString(strconv.Itoa(n))

	if n == 1 {
		sb.WriteString(" error\n")
	} else {
		sb.WriteString(" errors\n")
	}

	_, err := io.WriteString(r.w, sb.String())

	return err
}

// writeSnippet styles the gutter of the source line and the caret.
func (r *reporter) writeSnippet(sb *strings.Builder, snippet string) {
	line, caret, ok := strings.Cut(strings.TrimSuffix(snippet, "\n"), "\n")
	if !ok {
		return
	}

	if gutter, text, ok := strings.Cut(line, " | "); ok {
		sb.WriteString(r.gutter.Render(gutter + " |"))
		sb.WriteString(" ")
		sb.WriteString(text)
	} else {
		sb.WriteString(line)
	}

	sb.WriteByte('\n')
	sb.WriteString(strings.TrimSuffix(caret, "^"))
	sb.WriteString(r.caret.Render("^"))
	sb.WriteByte('\n')
}

// success writes a one-line summary of prog.
func (r *reporter) success(name string, prog *lang.Program) error {
	items := len(prog.Items)
	defs := len(prog.FunctionDefs())

	var sb strings.Builder

	sb.WriteString(r.location.Render(name))
	sb.WriteString(": ")
	sb.WriteString(r.ok.Render("ok"))
	sb.WriteString(" (")
	sb.WriteString(plural(items, "item"))
	sb.WriteString(", ")
	sb.WriteString(plural(defs, "definition"))
	sb.WriteString(")\n")

	_, err := io.WriteString(r.w, sb.String())

	return err
}

func plural(n int, noun string) string {
	s := strconv.Itoa(n) + " " + noun
	if n != 1 {
		s += "s"
	}

	return s
}
