// Package pkgroutine runs tasks on a bounded set of goroutines.
//
// A Manager caps concurrency and turns task panics into ErrPanicked errors
// reported by Wait. Async builds on it to hand a single result back over a
// channel.
package pkgroutine
