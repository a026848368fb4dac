// Package triecache implements an in-memory key/value cache whose keys and
// values are arbitrary byte sequences.
//
// Keys are routed through a digest-keyed adaptive trie: a deterministic,
// non-cryptographic digest maps each key to a fixed sequence of 4-bit
// routing symbols, which the trie consumes one level at a time. A trie
// slot holds either nothing, a nested index node, or a bucket list —
// a short singly-linked chain of payload records searched by exact key
// comparison. Bucket lists that grow past a threshold are split into a
// new index level, deepening the trie only where the key space is dense.
//
// Every live payload record is additionally threaded onto a single
// intrusive, doubly-linked LRU list shared across the whole cache. Store
// and Fetch promote a record to the head of that list; Peek does not.
// Eviction, when a byte or key budget is configured, always removes from
// the tail.
//
// # Concurrency
//
// A *Cache is not safe for concurrent use. It assumes a single caller
// serializes all operations against a given instance; independent
// instances are fully independent and may be driven from separate
// goroutines. Callers needing concurrent access must provide their own
// synchronization, for example a sync.Mutex around a shared *Cache.
//
// # Memory ownership
//
// Byte slices returned from Fetch, Peek, and the *Key traversal methods
// alias memory owned by the cache. They are valid only until the next
// mutating call (Store, Remove, Clear, ClearSlice, ClearSlices) on that
// instance. Callers that need the bytes to outlive the next mutation must
// copy them out first.
package triecache
