package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores parse results keyed by a hash of source and options.
// Programs are immutable, so a cached result is shared by all callers.
var globalCache sync.Map

// entry holds the result of parsing one source with one set of options.
type entry struct {
	once sync.Once
	prog *Program
	err  error
}

// hashOptions encodes the options that affect parse results using gob and
// hashes them with xxh3. The logger does not affect results.
func hashOptions(o options) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(o.maxDepth)
	_ = enc.Encode(o.recovery)

	return xxh3.Hash(buf.Bytes())
}

// ParseReader reads all input from r and parses it.
// Results are cached by content, so repeated reads of identical source return
// the same [*Program] without parsing again.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Program, error) {
	// Wrap reader with async read-ahead so reads overlap with buffering.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	o := makeOptions(opts...)

	o.logger.TraceContext(
		ctx,
		"read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return parseCached(ctx, string(data), o, opts...)
}

func parseCached(
	ctx context.Context,
	source string,
	o options,
	opts ...Option,
) (*Program, error) {
	sourceHash := xxh3.HashString(source)
	optsHash := hashOptions(o)
	key := strconv.FormatUint(sourceHash^optsHash, 36)

	value, cacheHit := globalCache.LoadOrStore(key, new(entry))

	e, ok := value.(*entry)
	if !ok {
		return Parse(ctx, source, opts...)
	}

	o.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", cacheHit),
	)

	e.once.Do(func() {
		e.prog, e.err = Parse(ctx, source, opts...)
	})

	// Cancellation is not a property of the source; retry next time.
	if e.err != nil && ctx.Err() != nil {
		globalCache.CompareAndDelete(key, e)
	}

	return e.prog, e.err
}

// ClearCache removes all cached parse results.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache.Clear()
}
