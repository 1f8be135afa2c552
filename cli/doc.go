// Package cli contains the command line interface for boi.
//
// # Usage
//
//	boi [flags] [<source> ...]          check sources (default command)
//	boi fmt [native|json|yaml|ast] ...  format a source
//	boi init [--force]                  write the configuration file
//
// A source of "-" reads standard input.
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory (for example ~/.config/boi). Flag values are keyed by name under
// a top-level "config" mapping:
//
//	config:
//	  log-level: info
//	  log-pretty: true
//	  max-depth: 200
//
// "boi init" writes this file from the current flag values. A config.json
// file in the same directory is also read, using kong's JSON loader.
// Command-line flags take precedence over both.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp layout (rfc3339, kitchen, ms, none, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output on terminals
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o boi .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default ~/.cache/boi/pprof)
package cli
