// Package cmd implements the boi subcommands: fmt, check, and init.
package cmd

var (
	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"

	// ConfigKey is the top-level key of the YAML configuration document. It
	// holds a mapping of flag names to values.
	ConfigKey = "config"

	// MaxDepthIdentifier is the kong variable identifier containing the
	// default of the --max-depth flag.
	MaxDepthIdentifier = "maxDepth"
)
