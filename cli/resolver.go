package cli

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/boi/cli/cmd"
	"github.com/ardnew/boi/log"
)

// loadYAML is a [kong.ConfigurationLoader] that reads flag values from the
// mapping under [cmd.ConfigKey] of a YAML document.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(loadYAML, "/path/to/config.yaml")
//
// Keys are flag names. Hyphens may be written as underscores. Booleans are
// passed through, numbers are converted to strings, and sequences are joined
// with commas. Nested mappings and sequences are ignored.
//
// Example configuration file:
//
//	config:
//	  log-level: debug
//	  log_format: json
//	  max-depth: 50
//
// Command-line flags override configuration values. A document that cannot be
// decoded is ignored with a warning.
func loadYAML(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if !errors.Is(err, io.EOF) {
			log.Warn("ignoring invalid configuration", slog.Any("error", err))
		}

		return config{}, nil
	}

	section, ok := doc[cmd.ConfigKey].(map[string]any)
	if !ok {
		return config{}, nil
	}

	cfg := make(config, len(section))

	for key, val := range section {
		if v, ok := flagValue(val); ok {
			cfg[key] = v
		}
	}

	return cfg, nil
}

// config implements [kong.Resolver] for YAML configuration.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil
}

// flagValue converts a decoded YAML value to a form kong can map onto a flag.
func flagValue(val any) (any, bool) {
	switch v := val.(type) {
	case bool, string:
		return v, true

	case int:
		return strconv.Itoa(v), true

	case int64:
		return strconv.FormatInt(v, 10), true

	case uint64:
		return strconv.FormatUint(v, 10), true

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true

	case []any:
		elem := make([]string, 0, len(v))

		for _, e := range v {
			if _, nested := e.([]any); nested {
				return nil, false
			}

			switch s, _ := flagValue(e); s := s.(type) {
			case string:
				elem = append(elem, s)
			case bool:
				elem = append(elem, strconv.FormatBool(s))
			default:
				return nil, false
			}
		}

		return strings.Join(elem, ","), true

	default:
		return nil, false
	}
}
