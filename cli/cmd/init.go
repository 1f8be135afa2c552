package cmd

import (
	"context"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/boi/log"
	"github.com/ardnew/boi/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) error {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ErrNoContext
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok || confPath == "" {
		return ErrWriteConfig.Wrap(ErrNoContext)
	}

	fail := ErrWriteConfig.With(slog.String("file", confPath))

	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return fail.With(slog.Bool("exists", true)).Wrap(ErrFileExists)
	}

	doc, err := yaml.MarshalWithOptions(
		yaml.MapSlice{{Key: ConfigKey, Value: flagValues(ktx)}},
		yaml.Indent(defaultConfigIndent),
	)
	if err != nil {
		return fail.Wrap(err)
	}

	if err := os.WriteFile(confPath, doc, 0o644); err != nil {
		return fail.Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath))

	return nil
}

// ignoredFlags are name prefixes of flags never written to configuration.
var ignoredFlags = []string{"help", "version", profile.Tag}

// flagValues returns the current value of every configurable flag, in the
// order kong declares them on the application. Unset strings and empty lists
// are omitted.
func flagValues(ktx *kong.Context) yaml.MapSlice {
	var items yaml.MapSlice

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignoredFlags, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if val, ok := configValue(ktx.FlagValue(flag)); ok {
			items = append(items, yaml.MapItem{Key: flag.Name, Value: val})
		}
	}

	return items
}

// configValue converts a flag value to a YAML scalar or sequence.
func configValue(val any) (any, bool) {
	if val == nil {
		return nil, false
	}

	v := reflect.ValueOf(val)

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), true

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), true

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), true

	case reflect.Float32, reflect.Float64:
		return v.Float(), true

	case reflect.String:
		return v.String(), v.Len() > 0

	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return nil, false
		}

		seq := make([]any, 0, v.Len())

		for i := range v.Len() {
			if elem, ok := configValue(v.Index(i).Interface()); ok {
				seq = append(seq, elem)
			}
		}

		return seq, len(seq) > 0

	default:
		if s, ok := val.(interface{ String() string }); ok {
			return s.String(), true
		}

		return nil, false
	}
}
