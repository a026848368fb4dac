package triecache

import "github.com/pkg/errors"

// Sentinel errors returned by Cache operations. Callers should compare
// against these with errors.Is, since wrapped variants (e.g. from
// ErrAlloc) carry additional stack context via github.com/pkg/errors.
var (
	// ErrNotFound is returned by lookups, removals, and traversals when
	// the requested key (or list endpoint) is absent.
	ErrNotFound = errors.New("triecache: key not found")

	// ErrAlloc is returned by Store when a payload or index node could
	// not be allocated. On ErrAlloc, the cache is left structurally
	// unchanged and all accounting is untouched.
	ErrAlloc = errors.New("triecache: allocation failed")
)

// allocFailure wraps ErrAlloc with the caller-visible context of which
// allocation step failed, preserving a stack trace for diagnostics.
func allocFailure(step string) error {
	return errors.Wrapf(ErrAlloc, "allocate %s", step)
}
