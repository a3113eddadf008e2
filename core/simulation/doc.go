// Package simulation runs the yearly Monte Carlo charging-demand simulation
// of a parking lot.
//
// A Simulator owns one xorshift stream created from its seed. Every call to
// Run builds a fresh lot per run and steps it through a non-leap year in
// fixed intervals; all runs, and all subsequent calls to Run, keep drawing
// from the same stream. Results are therefore reproducible for a given
// seed and call sequence, and a Simulator must not be shared between
// goroutines.
package simulation
