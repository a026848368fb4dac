package triecache

// Stats is a read-only snapshot of the cache's running accounting
// counters.
type Stats struct {
	// IndexSize is the total nominal bytes held by live trie index nodes.
	IndexSize uint64 `json:"indexSize"`
	// MetaSize is the total header+length-field bytes across all live
	// payload records: NumKeys * (HEADER + KLEN_WIDTH + VLEN_WIDTH).
	MetaSize uint64 `json:"metaSize"`
	// DataSize is the total key+value bytes across all live records.
	DataSize uint64 `json:"dataSize"`
	// NumKeys is the count of live payload records.
	NumKeys uint64 `json:"numKeys"`
	// NumIndexes is IndexSize / nominalIndexNodeSize, the number of live
	// trie index nodes.
	NumIndexes uint64 `json:"numIndexes"`
	// NumEvictions is the lifetime count of LRU-triggered removals. It is
	// never reset by Clear/ClearSlice/ClearSlices.
	NumEvictions uint64 `json:"numEvictions"`
}

// accounting holds the five counters mutated by every structural change to
// the cache. It is embedded in Cache rather than exposed directly; Stats()
// takes an immutable snapshot.
type accounting struct {
	indexSize    uint64
	metaSize     uint64
	dataSize     uint64
	numKeys      uint64
	numEvictions uint64
}

func (a *accounting) snapshot() Stats {
	numIndexes := uint64(0)
	if nominalIndexNodeSize > 0 {
		numIndexes = a.indexSize / nominalIndexNodeSize
	}
	return Stats{
		IndexSize:    a.indexSize,
		MetaSize:     a.metaSize,
		DataSize:     a.dataSize,
		NumKeys:      a.numKeys,
		NumIndexes:   numIndexes,
		NumEvictions: a.numEvictions,
	}
}

// totalBytes is indexSize+metaSize+dataSize, the quantity MaxBytes bounds.
func (a *accounting) totalBytes() uint64 {
	return a.indexSize + a.metaSize + a.dataSize
}

func (a *accounting) onInsert(keyLen, valueLen int) {
	a.dataSize += uint64(keyLen + valueLen)
	a.metaSize += recordOverhead
	a.numKeys++
}

func (a *accounting) onRemove(keyLen, valueLen int) {
	a.dataSize -= uint64(keyLen + valueLen)
	a.metaSize -= recordOverhead
	a.numKeys--
}

func (a *accounting) onReplace(oldKeyLen, oldValueLen, newKeyLen, newValueLen int) {
	a.dataSize -= uint64(oldKeyLen + oldValueLen)
	a.dataSize += uint64(newKeyLen + newValueLen)
}

func (a *accounting) onSplit() {
	a.indexSize += nominalIndexNodeSize
}

func (a *accounting) onIndexNodeFreed() {
	a.indexSize -= nominalIndexNodeSize
}

func (a *accounting) onEviction() {
	a.numEvictions++
}
