// Package pagination provides the bounded-parallelism fan-out used to resolve
// the per-item lookups of a listing page.
//
// A page of the species listing only carries names and resource URLs; artwork
// and types need one or two further requests per entry. Map runs those
// lookups on a fixed-size worker pool so the upstream API sees at most
// MaxConcurrency requests at a time while latency is still pipelined.
//
// Example usage:
//
//	pool := pagination.NewPool(pagination.DefaultConfig())
//	results := pagination.Map(ctx, pool, entries, resolve)
//	items, err := pagination.Values(results)
//
// The pool:
//   - Feeds input indexes to MaxConcurrency workers over a channel
//   - Writes every result into the slot of its input index, so output order
//     matches input order whatever the completion order
//   - Recovers a panicking unit of work into ErrWorkerPanic for that slot only,
//     the other workers keep draining the queue
//   - Returns only after every input has been processed exactly once
package pagination
