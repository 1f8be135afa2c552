// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// Time formatting, caller information, level, and output format are applied
// at logger creation time using functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Warn("recovered", slog.String("resume", "3:1"))
//
// The zero [Logger] discards everything. Library code such as the parser
// holds a Logger value and logs unconditionally; callers opt in by passing a
// configured one.
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a logger with some settings overridden. The
// package-level functions ([Info], [Warn], ...) use a default logger that
// writes to standard error; [Config] reconfigures it.
//
// # Levels
//
// In addition to the [log/slog] levels, [LevelTrace] sits below
// [LevelDebug]. The parser reports its internal steps at trace level.
//
// # Output Formats
//
// [FormatText] (default) and [FormatJSON] use the [log/slog] handlers. With
// [WithPretty], output is styled for a terminal instead: text records are
// single lines of key=value pairs and JSON records are indented blocks.
// Styling is dropped when the output is not a terminal.
package log
