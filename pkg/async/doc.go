// Package async provides generic helpers for running work asynchronously and
// for bounding how much of it overlaps.
//
// Future represents the eventual result of a computation started with Async.
// Callers wait with Await, AwaitWithTimeout or AwaitContext, or poll with
// IsComplete. WaitAll and WaitAny coordinate several futures. A panic inside
// the computation completes the Future with ErrPanic.
//
// Two runners cover I/O-bound fan-out:
//
//   - Batch processes items in sequential chunks. Every item of a chunk runs
//     concurrently and the chunk fully settles before the next one starts. A
//     short pause (DefaultYieldInterval) separates chunks to give other work a
//     chance to run; there is no pause after the final chunk. Results keep
//     input order.
//   - Concurrent keeps a sliding window of at most limit calls in flight and
//     admits the next item as soon as any slot frees. Results are collected
//     in completion order.
//
// # Usage
//
//	thumbs, err := async.Batch(ctx, lessons, 5, renderThumbnail)
//	if err != nil {
//		return err
//	}
//
//	pages, err := async.Concurrent(ctx, urls, 3, fetch)
//
// # Error Handling
//
// Invalid sizes and limits return ErrInvalidBatchSize and ErrInvalidLimit.
// The first error returned by the callback stops admission of new work and is
// returned to the caller together with the results gathered so far.
package async
