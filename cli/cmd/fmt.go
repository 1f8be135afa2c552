package cmd

import (
	"context"
	"log/slog"

	"github.com/kr/pretty"
)

// Fmt parses a source file and writes it back in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as native boi syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	AST    AST    `cmd:""                    help:"Print the syntax tree."`
}

// Native formats input as canonical boi syntax.
type Native struct {
	parseFlags `embed:""`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the native format command.
func (f *Native) Run(ctx context.Context) error {
	prog, err := parseSource(ctx, f.Source, f.options()...)
	if err != nil {
		return err
	}

	if err := prog.Format(ctx, outputFrom(ctx)); err != nil {
		return ErrWriteOutput.With(slog.String("format", "native")).Wrap(err)
	}

	return nil
}

// JSON formats the syntax tree of the input as JSON.
type JSON struct {
	parseFlags `embed:""`

	Indent int `default:"2" help:"Indent width for JSON output; 0 is compact." short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error {
	prog, err := parseSource(ctx, j.Source, j.options()...)
	if err != nil {
		return err
	}

	if err := prog.FormatJSON(ctx, outputFrom(ctx), j.Indent); err != nil {
		return ErrWriteOutput.With(slog.String("format", "json")).Wrap(err)
	}

	return nil
}

// YAML formats the syntax tree of the input as YAML.
type YAML struct {
	parseFlags `embed:""`

	Indent int `default:"2" help:"Indent width for YAML output; 0 is flow style." short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error {
	prog, err := parseSource(ctx, y.Source, y.options()...)
	if err != nil {
		return err
	}

	if err := prog.FormatYAML(ctx, outputFrom(ctx), y.Indent); err != nil {
		return ErrWriteOutput.With(slog.String("format", "yaml")).Wrap(err)
	}

	return nil
}

// AST prints the syntax tree of the input.
type AST struct {
	parseFlags `embed:""`

	Go bool `help:"Print the tree as Go values instead of an outline." name:"go"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) error {
	prog, err := parseSource(ctx, a.Source, a.options()...)
	if err != nil {
		return err
	}

	w := outputFrom(ctx)

	if a.Go {
		_, err = pretty.Fprintf(w, "%# v\n", prog)
	} else {
		err = prog.Print(ctx, w)
	}

	if err != nil {
		return ErrWriteOutput.With(slog.String("format", "ast")).Wrap(err)
	}

	return nil
}
