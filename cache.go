package triecache

// Status classifies the outcome of a successful Store.
type Status int

const (
	// StatusOK is the zero Status; Store returns it only together with a
	// non-nil error.
	StatusOK Status = iota
	// StatusAdd means a fresh key was inserted.
	StatusAdd
	// StatusReplace means a prior record for the exact same key bytes existed.
	StatusReplace
)

func (s Status) String() string {
	switch s {
	case StatusAdd:
		return "ADD"
	case StatusReplace:
		return "REPLACE"
	default:
		return "OK"
	}
}

// Cache is an in-memory key/value cache indexed by a digest-keyed adaptive
// trie and ordered by an intrusive LRU list. See the package doc comment
// for the concurrency and memory-ownership contract. The zero value is not
// usable; construct with New or NewWithOptions.
type Cache struct {
	root *indexNode
	lru  lruList
	acc  accounting
	opts Options

	// allocShouldFail, when set (tests only), lets Store simulate an
	// allocation failure at a named step without actually exhausting
	// memory.
	allocShouldFail func(step string) bool
}

// New constructs an empty Cache configured by the given options.
func New(opts ...Option) *Cache {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return NewWithOptions(o)
}

// NewWithOptions constructs an empty Cache from an explicit Options value,
// for callers (such as the config package) that build Options from a
// source other than functional options.
func NewWithOptions(o Options) *Cache {
	return &Cache{
		root: newIndexNode(),
		opts: o.withDefaults(),
	}
}

// Store inserts or replaces key's value. A fresh key returns StatusAdd; a
// key that already had a record returns StatusReplace and the old payload
// is discarded once the trie and LRU list stop referencing it. Store
// enforces any configured MaxKeys/MaxBytes budget by evicting from the LRU
// tail before returning.
func (c *Cache) Store(key, value []byte, flags byte) (Status, error) {
	if c.allocShouldFail != nil && c.allocShouldFail("payload") {
		return 0, allocFailure("payload")
	}

	d := digestKey(key)
	res := descend(c.root, d)

	switch res.tag {
	case slotEmpty:
		nb := newBucket(key, value, flags)
		res.parent.children[res.childIdx] = slot{tag: slotBucket, bucket: nb}
		c.lru.linkAtHead(nb)
		c.acc.onInsert(len(key), len(value))
		c.maybeEvict(true)
		return StatusAdd, nil

	case slotBucket:
		head := res.bucket
		var prev *bucket
		pos := 1
		for b := head; ; b = b.next {
			if bucketKeyEquals(b, key) {
				nb := newBucket(key, value, flags)
				nb.next = b.next
				if prev == nil {
					res.parent.children[res.childIdx].bucket = nb
				} else {
					prev.next = nb
				}
				grew := nb.size() > b.size()
				c.lru.unlink(b)
				c.lru.linkAtHead(nb)
				c.acc.onReplace(len(b.key), len(b.value), len(key), len(value))
				c.maybeEvict(grew)
				return StatusReplace, nil
			}
			if b.next == nil {
				if c.allocShouldFail != nil && res.digestIndex < digestSymbols-1 &&
					pos+1 >= splitThreshold(d[res.digestIndex], c.opts.MaxBuckets, c.opts.ReindexScatter) &&
					c.allocShouldFail("index") {
					return 0, allocFailure("index")
				}
				nb := newBucket(key, value, flags)
				b.next = nb
				pos++
				c.lru.linkAtHead(nb)
				c.acc.onInsert(len(key), len(value))

				threshold := splitThreshold(d[res.digestIndex], c.opts.MaxBuckets, c.opts.ReindexScatter)
				if pos >= threshold && res.digestIndex < digestSymbols-1 {
					splitBucketList(res.parent, res.childIdx, head, res.digestIndex)
					c.acc.onSplit()
				}

				c.maybeEvict(true)
				return StatusAdd, nil
			}
			prev = b
			pos++
		}
	}

	// Unreachable: descend never returns slotIndex.
	panic("triecache: descend returned an index slot")
}

// maybeEvict runs the eviction loop. It is a no-op unless the most recent
// Store grew the cache (a fresh ADD, or a REPLACE whose new payload is
// larger than the old one it displaced).
func (c *Cache) maybeEvict(grew bool) {
	if !grew {
		return
	}
	for c.overBudget() {
		tail := c.lru.tail
		if tail == nil {
			return
		}
		if err := c.Remove(tail.key); err != nil {
			return
		}
		c.acc.onEviction()
	}
}

func (c *Cache) overBudget() bool {
	if c.opts.MaxKeys > 0 && c.acc.numKeys > c.opts.MaxKeys {
		return true
	}
	if c.opts.MaxBytes > 0 && c.acc.totalBytes() > c.opts.MaxBytes {
		return true
	}
	return false
}

// find locates the live record for key without mutating LRU order.
func (c *Cache) find(key []byte) *bucket {
	d := digestKey(key)
	res := descend(c.root, d)
	if res.tag != slotBucket {
		return nil
	}
	for b := res.bucket; b != nil; b = b.next {
		if bucketKeyEquals(b, key) {
			return b
		}
	}
	return nil
}

// Fetch returns the value stored for key and promotes it to the LRU head.
func (c *Cache) Fetch(key []byte) ([]byte, byte, error) {
	b := c.find(key)
	if b == nil {
		return nil, 0, ErrNotFound
	}
	c.lru.promote(b)
	return b.value, b.flags, nil
}

// Peek returns the value stored for key without affecting LRU order.
func (c *Cache) Peek(key []byte) ([]byte, byte, error) {
	b := c.find(key)
	if b == nil {
		return nil, 0, ErrNotFound
	}
	return b.value, b.flags, nil
}

// Has reports whether key is present, with Peek semantics (no promotion).
func (c *Cache) Has(key []byte) bool {
	return c.find(key) != nil
}

// Remove deletes the exactly-matching record for key.
func (c *Cache) Remove(key []byte) error {
	d := digestKey(key)
	res := descend(c.root, d)
	if res.tag != slotBucket {
		return ErrNotFound
	}

	var prev *bucket
	for b := res.bucket; b != nil; b = b.next {
		if bucketKeyEquals(b, key) {
			if prev == nil {
				if b.next == nil {
					res.parent.children[res.childIdx] = slot{}
				} else {
					res.parent.children[res.childIdx].bucket = b.next
				}
			} else {
				prev.next = b.next
			}
			c.lru.unlink(b)
			c.acc.onRemove(len(b.key), len(b.value))
			return nil
		}
		prev = b
	}
	return ErrNotFound
}

// Clear removes everything from the cache. NumEvictions is not reset.
func (c *Cache) Clear() {
	for i := range c.root.children {
		s := &c.root.children[i]
		c.freeSlot(s)
	}
	c.lru = lruList{}
}

// ClearSlice clears all records whose first digest symbol (the upper
// nibble of slice1) routes to the trie's root slot slice1>>4. If that slot
// holds a nested index node, only the sub-slot for slice1&0xF is cleared
// (about 1/256 of the key space); if it holds a flat bucket list, the
// entire list is cleared regardless of the low nibble (about 1/16), since
// a flat list was never split on the second symbol to begin with. An empty
// parent index node is collapsed back to empty after the clear.
func (c *Cache) ClearSlice(slice1 byte) {
	hi := slice1 >> 4
	top := &c.root.children[hi]

	switch top.tag {
	case slotEmpty:
		return
	case slotBucket:
		c.freeSlot(top)
	case slotIndex:
		level := top.index
		lo := &level.children[slice1&0x0F]
		c.freeSlot(lo)
		if indexNodeEmpty(level) {
			c.acc.onIndexNodeFreed()
			*top = slot{}
		}
	}
}

// ClearSlices clears the thin slice of the key space reached by the four
// nibbles of char1 and char2, descending up to four trie levels before
// clearing. If a bucket list is reached above the fourth level, that whole
// list is cleared, so the slice is thicker where the trie is shallower.
// Index nodes left empty by the clear are not collapsed.
func (c *Cache) ClearSlices(char1, char2 byte) {
	slices := [4]byte{char1 >> 4, char1 & 0x0F, char2 >> 4, char2 & 0x0F}
	c.clearAtDepth(c.root, slices[:], 0)
}

func (c *Cache) clearAtDepth(level *indexNode, slices []byte, idx int) {
	s := &level.children[slices[idx]]
	switch s.tag {
	case slotEmpty:
		return
	case slotBucket:
		c.freeSlot(s)
	case slotIndex:
		if idx < len(slices)-1 {
			c.clearAtDepth(s.index, slices, idx+1)
		} else {
			c.freeSlot(s)
		}
	}
}

// freeSlot frees whatever s currently holds (a bucket list or an entire
// index subtree) and resets it to empty, updating accounting and LRU
// links for every record it touches.
func (c *Cache) freeSlot(s *slot) {
	switch s.tag {
	case slotEmpty:
		return
	case slotBucket:
		for b := s.bucket; b != nil; {
			next := b.next
			c.lru.unlink(b)
			c.acc.onRemove(len(b.key), len(b.value))
			b = next
		}
	case slotIndex:
		for i := range s.index.children {
			c.freeSlot(&s.index.children[i])
		}
		c.acc.onIndexNodeFreed()
	}
	*s = slot{}
}

func indexNodeEmpty(level *indexNode) bool {
	for i := range level.children {
		if level.children[i].tag != slotEmpty {
			return false
		}
	}
	return true
}

// FirstKey returns the key of the LRU head (most recently touched record).
func (c *Cache) FirstKey() ([]byte, error) {
	if c.lru.head == nil {
		return nil, ErrNotFound
	}
	return c.lru.head.key, nil
}

// LastKey returns the key of the LRU tail (least recently touched record).
func (c *Cache) LastKey() ([]byte, error) {
	if c.lru.tail == nil {
		return nil, ErrNotFound
	}
	return c.lru.tail.key, nil
}

// NextKey returns the key of the record that follows key in LRU order
// (i.e. the record touched less recently than key).
func (c *Cache) NextKey(key []byte) ([]byte, error) {
	b := c.find(key)
	if b == nil || b.cacheNext == nil {
		return nil, ErrNotFound
	}
	return b.cacheNext.key, nil
}

// PrevKey returns the key of the record that precedes key in LRU order
// (i.e. the record touched more recently than key).
func (c *Cache) PrevKey(key []byte) ([]byte, error) {
	b := c.find(key)
	if b == nil || b.cachePrev == nil {
		return nil, ErrNotFound
	}
	return b.cachePrev.key, nil
}

// Stats returns a snapshot of the cache's running accounting counters.
func (c *Cache) Stats() Stats {
	return c.acc.snapshot()
}
