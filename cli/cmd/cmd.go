package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/boi/lang"
	"github.com/ardnew/boi/log"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	outputKey struct{}
	inputKey  struct{}
)

// WithOutput returns a new context.Context whose commands write to w instead
// of standard output.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// WithInput returns a new context.Context whose commands read the source "-"
// from r instead of standard input.
func WithInput(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, inputKey{}, r)
}

func inputFrom(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(inputKey{}).(io.Reader); ok && r != nil {
		return r
	}

	return os.Stdin
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// stdinName is the display name of the stdin source.
const stdinName = "<stdin>"

// source is an opened input with its display name.
type source struct {
	name string
	r    io.Reader
}

// sources is an ordered list of opened inputs.
type sources []source

// Close closes every input that is an [io.Closer] other than stdin.
func (s sources) Close() error {
	var errs []error

	for _, src := range s {
		if src.name == stdinName {
			continue
		}

		if c, ok := src.r.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}

	return errors.Join(errs...)
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// openSources opens the given paths in order.
//
// Paths naming the same file (by device and inode, after resolving symlinks)
// are opened once. All occurrences of "-", and any path naming the same file
// as stdin, collapse into a single stdin source placed last.
func openSources(ctx context.Context, paths []string) (sources, error) {
	srcs := make(sources, 0, len(paths))
	seen := make(map[fileKey]struct{})

	stdinKey, hasStdinKey := fileKey{}, false
	if info, err := os.Stdin.Stat(); err == nil {
		stdinKey, hasStdinKey = makeFileKey(info)
	}

	hasStdin := false

	for _, path := range paths {
		if path == stdinSource {
			hasStdin = true

			continue
		}

		file, key, keyed, err := openFile(path)
		if err != nil {
			_ = srcs.Close()

			return nil, ErrReadSource.With(slog.String("source", path)).Wrap(err)
		}

		if keyed {
			if hasStdinKey && key == stdinKey {
				hasStdin = true

				_ = file.Close()

				continue
			}

			if _, dup := seen[key]; dup {
				log.DebugContext(ctx, "duplicate source skipped",
					slog.String("source", path))

				_ = file.Close()

				continue
			}

			seen[key] = struct{}{}
		}

		srcs = append(srcs, source{name: path, r: file})
	}

	if hasStdin {
		srcs = append(srcs, source{name: stdinName, r: inputFrom(ctx)})
	}

	return srcs, nil
}

// openFile opens the file at path after resolving it to an absolute,
// symlink-free path. It also returns the file's identity, if the platform
// provides one.
func openFile(path string) (*os.File, fileKey, bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fileKey{}, false, err
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, fileKey{}, false, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, fileKey{}, false, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()

		return nil, fileKey{}, false, err
	}

	if info.IsDir() {
		_ = file.Close()

		return nil, fileKey{}, false, ErrIsDirectory
	}

	key, ok := makeFileKey(info)

	return file, key, ok, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: uint64(stat.Ino)}, true
}

// parseFlags are the parser options shared by commands that parse source.
type parseFlags struct {
	MaxDepth int `default:"${maxDepth}" help:"Maximum nesting depth of expressions." name:"max-depth"`
}

func (f parseFlags) options(extra ...lang.Option) []lang.Option {
	return append([]lang.Option{
		lang.WithMaxDepth(f.MaxDepth),
		lang.WithLogger(log.Default()),
	}, extra...)
}

// parseSource parses the single source at path.
func parseSource(
	ctx context.Context,
	path string,
	opts ...lang.Option,
) (*lang.Program, error) {
	srcs, err := openSources(ctx, []string{path})
	if err != nil {
		return nil, err
	}

	defer srcs.Close()

	if len(srcs) == 0 {
		return nil, ErrReadSource.With(slog.String("source", path))
	}

	prog, err := lang.ParseReader(ctx, srcs[0].r, opts...)
	if err != nil {
		return nil, ErrParse.With(slog.String("source", srcs[0].name)).Wrap(err)
	}

	return prog, nil
}
