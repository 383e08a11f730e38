// Package dict implements the bounded LRU string dictionaries of spec §3/§4.2:
// one independent instance each for field names, value strings, and MAC
// addresses. All three share this single implementation, parameterized only
// by capacity.
//
// The eviction rule is deliberately simple and side-channel free: first empty
// slot, else lowest usage stamp (ties broken by lowest index), stamp bumped
// after eviction. Encoder and decoder run the identical rule from the token
// stream alone, so their dictionary state is guaranteed to match at every
// prefix of the body (the "dictionary synchronization" testable property of
// spec §8).
package dict

import "github.com/cespare/xxhash/v2"

// DefaultCapacity is the fixed dictionary size mandated by spec §3: 64
// entries, addressable by a 6-bit index packed into the token reference
// ranges of §4.1.
const DefaultCapacity = 64

type entry struct {
	key    []byte
	hash   uint64
	stamp  uint64
	filled bool
}

// Dict is one bounded LRU string table. The zero value is not usable; use
// New.
type Dict struct {
	entries []entry
	counter uint64
}

// New creates a Dict with the given capacity. Capacity is normally
// dict.DefaultCapacity (64, per §3); the codec.WithDictCapacity option exists
// only to exercise eviction in tests with a small number of insertions.
func New(capacity int) *Dict {
	return &Dict{entries: make([]entry, capacity)}
}

// Cap returns the dictionary's fixed capacity.
func (d *Dict) Cap() int {
	return len(d.entries)
}

// Find returns the slot index holding key, if any, without touching its
// usage stamp. LookupOrAdd uses it for its presence check.
func (d *Dict) Find(key []byte) (index int, ok bool) {
	h := xxhash.Sum64(key)
	for i := range d.entries {
		e := &d.entries[i]
		if e.filled && e.hash == h && string(e.key) == string(key) {
			return i, true
		}
	}

	return 0, false
}

// LookupOrAdd returns the slot index for key. If key is already present, its
// usage stamp is bumped and isNew is false. Otherwise a slot is selected per
// the eviction rule, key is copied into it, and isNew is true (the caller
// must then emit a NEW_* token carrying the key bytes before referencing the
// index).
func (d *Dict) LookupOrAdd(key []byte) (index int, isNew bool) {
	if idx, ok := d.Find(key); ok {
		d.Touch(idx)
		return idx, false
	}

	idx := d.selectInsertSlot()
	d.install(idx, key)

	return idx, true
}

// Touch bumps the usage stamp of the slot at index, as if it had just been
// referenced. The decoder calls this for every dict-reference token so its
// LRU state advances identically to the encoder's.
func (d *Dict) Touch(index int) {
	d.counter++
	d.entries[index].stamp = d.counter
}

// Install places key into the slot at index, as chosen independently by
// SelectInsertSlot (or by the encoder's LookupOrAdd). Used by the decoder
// when consuming a NEW_FIELD/NEW_STRING/NEW_MAC token: the decoder must pick
// the same slot the encoder picked, using the identical selection rule, then
// install the key bytes it just read off the wire.
func (d *Dict) Install(index int, key []byte) {
	d.install(index, key)
}

func (d *Dict) install(index int, key []byte) {
	owned := make([]byte, len(key))
	copy(owned, key)

	d.entries[index] = entry{key: owned, hash: xxhash.Sum64(owned), filled: true}
	d.Touch(index)
}

// SelectInsertSlot applies the eviction rule of §4.2: the first empty slot,
// else the slot with the smallest stamp (ties broken by lowest index). This
// is exported so the decoder can compute, from state alone, which slot a
// NEW_* token is about to fill.
func (d *Dict) SelectInsertSlot() int {
	return d.selectInsertSlot()
}

func (d *Dict) selectInsertSlot() int {
	for i := range d.entries {
		if !d.entries[i].filled {
			return i
		}
	}

	best := 0
	bestStamp := d.entries[0].stamp
	for i := 1; i < len(d.entries); i++ {
		if d.entries[i].stamp < bestStamp {
			best = i
			bestStamp = d.entries[i].stamp
		}
	}

	return best
}

// Key returns the byte slice stored at index. The caller must not modify the
// returned slice. ok is false if the slot has never been filled.
func (d *Dict) Key(index int) (key []byte, ok bool) {
	if index < 0 || index >= len(d.entries) || !d.entries[index].filled {
		return nil, false
	}

	return d.entries[index].key, true
}

// Reset clears the dictionary back to its empty state, per §3 "Resets to
// 'none' on frame start" (applied to each of the three dictionaries at the
// start of every independently-decodable frame).
func (d *Dict) Reset() {
	for i := range d.entries {
		d.entries[i] = entry{}
	}
	d.counter = 0
}
