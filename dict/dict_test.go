package dict

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupOrAddNewThenRepeat(t *testing.T) {
	d := New(4)

	idx, isNew := d.LookupOrAdd([]byte("alpha"))
	require.True(t, isNew)

	idx2, isNew2 := d.LookupOrAdd([]byte("alpha"))
	require.False(t, isNew2)
	require.Equal(t, idx, idx2)
}

func TestFindWithoutTouching(t *testing.T) {
	d := New(2)
	idx, _ := d.LookupOrAdd([]byte("a"))
	found, ok := d.Find([]byte("a"))
	require.True(t, ok)
	require.Equal(t, idx, found)

	_, ok = d.Find([]byte("missing"))
	require.False(t, ok)
}

// TestEvictionFillsEmptySlotsFirst verifies the first half of the §4.2
// selection rule: every slot is filled before eviction is ever considered.
func TestEvictionFillsEmptySlotsFirst(t *testing.T) {
	d := New(4)
	seen := map[int]bool{}
	for i := 0; i < 4; i++ {
		idx, isNew := d.LookupOrAdd([]byte(fmt.Sprintf("key-%d", i)))
		require.True(t, isNew)
		require.False(t, seen[idx], "slot %d reused before dictionary was full", idx)
		seen[idx] = true
	}
	require.Len(t, seen, 4)
}

// TestEvictionLRUAfter65Insertions is the spec's own stress case: with the
// real 64-entry capacity, the 65th distinct key must evict whichever slot has
// gone longest untouched, and every key touched in between must survive.
func TestEvictionLRUAfter65Insertions(t *testing.T) {
	d := New(DefaultCapacity)

	for i := 0; i < DefaultCapacity; i++ {
		_, isNew := d.LookupOrAdd([]byte(fmt.Sprintf("k%02d", i)))
		require.True(t, isNew)
	}

	// Touch every key except k00 so it becomes the least-recently-used slot.
	for i := 1; i < DefaultCapacity; i++ {
		_, isNew := d.LookupOrAdd([]byte(fmt.Sprintf("k%02d", i)))
		require.False(t, isNew)
	}

	evictedSlot, ok := d.Find([]byte("k00"))
	require.True(t, ok)

	idx, isNew := d.LookupOrAdd([]byte("fresh"))
	require.True(t, isNew)
	require.Equal(t, evictedSlot, idx, "65th insertion must evict the least-recently-touched slot")

	_, ok = d.Find([]byte("k00"))
	require.False(t, ok, "evicted key must no longer be findable")

	for i := 1; i < DefaultCapacity; i++ {
		_, ok := d.Find([]byte(fmt.Sprintf("k%02d", i)))
		require.True(t, ok, "touched key k%02d must survive eviction", i)
	}
}

// TestEvictionTieBrokenByLowestIndex: when several slots are equally
// eligible (right after Reset, every slot is empty), the lowest index wins.
func TestEvictionTieBrokenByLowestIndex(t *testing.T) {
	d := New(2)
	d.LookupOrAdd([]byte("a"))
	d.LookupOrAdd([]byte("b"))
	// Both slots are now filled; Reset empties them both, so the first empty
	// slot, index 0, is chosen.
	d.Reset()
	require.Equal(t, 0, d.SelectInsertSlot())
}

func TestInstallMatchesLookupOrAddSlotChoice(t *testing.T) {
	encoderSide := New(4)
	decoderSide := New(4)

	idx, isNew := encoderSide.LookupOrAdd([]byte("hello"))
	require.True(t, isNew)

	slot := decoderSide.SelectInsertSlot()
	require.Equal(t, idx, slot, "decoder's independently-computed slot must match the encoder's")
	decoderSide.Install(slot, []byte("hello"))

	key, ok := decoderSide.Key(slot)
	require.True(t, ok)
	require.Equal(t, "hello", string(key))
}

func TestKeyOnEmptySlot(t *testing.T) {
	d := New(2)
	_, ok := d.Key(0)
	require.False(t, ok)
}

func TestResetClearsState(t *testing.T) {
	d := New(2)
	d.LookupOrAdd([]byte("a"))
	d.LookupOrAdd([]byte("b"))
	d.Reset()

	_, ok := d.Find([]byte("a"))
	require.False(t, ok)
	_, ok = d.Key(0)
	require.False(t, ok)

	idx, isNew := d.LookupOrAdd([]byte("a"))
	require.True(t, isNew)
	require.Equal(t, 0, idx)
}

func TestCap(t *testing.T) {
	d := New(7)
	require.Equal(t, 7, d.Cap())
}
