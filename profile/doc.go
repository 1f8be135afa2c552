// Package profile provides optional runtime profiling for the boi command.
//
// # Overview
//
// This package integrates [github.com/pkg/profile]. Profiling is compiled in
// only with the "pprof" build tag; otherwise [Profiler.Start] is a no-op and
// [Modes] is empty.
//
//	go build -tags pprof .
//
// # Modes
//
// With the tag, the following modes are supported:
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     block (synchronization) profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      heap profiling (live allocations)
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution trace
//
// # Usage
//
//	p := profile.New(
//		profile.WithMode("cpu"),
//		profile.WithPath("/tmp/profiles"))
//	defer p.Start().Stop()
//
// Profile files are written to the given directory with names matching the
// mode (e.g., cpu.pprof, mem.pprof). The boi command exposes this through
// --pprof-mode and --pprof-dir, with the default directory under the user's
// cache directory:
//
//	boi --pprof-mode=cpu check big.boi
//	go tool pprof -http=: ~/.cache/boi/pprof/cpu.pprof
//
// Parsing is single-threaded per call, so "cpu" and "allocs" are the modes
// of interest for the lexer and parser; "block" and "mutex" mostly show the
// parse cache.
//
// With the tag, this package also imports [net/http/pprof], which registers
// its handlers on [net/http.DefaultServeMux] for programs that serve it.
package profile
