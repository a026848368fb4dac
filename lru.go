package triecache

// lruList is the intrusive doubly-linked recency list threading every live
// bucket in the cache. head is the most recently touched record, tail the
// least. All three primitives are O(1) and never allocate.
type lruList struct {
	head *bucket
	tail *bucket
}

// linkAtHead makes b the new most-recently-used record. b must not
// currently be a member of the list.
func (l *lruList) linkAtHead(b *bucket) {
	b.cachePrev = nil
	b.cacheNext = l.head
	if l.head != nil {
		l.head.cachePrev = b
	}
	l.head = b
	if l.tail == nil {
		l.tail = b
	}
}

// unlink removes b from the list. b may be the head, the tail, both
// (single-element list), or an interior node.
func (l *lruList) unlink(b *bucket) {
	if b.cachePrev != nil {
		b.cachePrev.cacheNext = b.cacheNext
	}
	if b.cacheNext != nil {
		b.cacheNext.cachePrev = b.cachePrev
	}
	if b == l.head {
		l.head = b.cacheNext
	}
	if b == l.tail {
		l.tail = b.cachePrev
	}
	b.cachePrev, b.cacheNext = nil, nil
}

// promote moves b to the head of the list. No-op if b is already the head.
func (l *lruList) promote(b *bucket) {
	if b == l.head {
		return
	}
	l.unlink(b)
	l.linkAtHead(b)
}
