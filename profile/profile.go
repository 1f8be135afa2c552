package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Profiler configures a profiling session.
type Profiler struct {
	Mode  string // one of [Modes], or empty to disable profiling
	Path  string // output directory; empty selects a temporary directory
	Quiet bool   // suppress the profiler's own log output
}

// Option applies a configuration option to a Profiler.
type Option func(*Profiler)

// New returns a Profiler with opts applied.
func New(opts ...Option) Profiler {
	var p Profiler

	for _, opt := range opts {
		opt(&p)
	}

	return p
}

// WithMode returns a functional option for setting a profiler's mode.
func WithMode(mode string) Option {
	return func(p *Profiler) { p.Mode = mode }
}

// WithPath returns a functional option for setting a profiler's output path.
func WithPath(path string) Option {
	return func(p *Profiler) { p.Path = path }
}

// WithQuiet returns a functional option for setting a profiler's quiet flag.
func WithQuiet(quiet bool) Option {
	return func(p *Profiler) { p.Quiet = quiet }
}

// Start begins profiling and returns a [Stopper] for ending it.
//
// If the program was built without the pprof tag, or p.Mode is empty or
// unknown, Start returns a no-op. Both Start and Stop are always safe to
// call.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
