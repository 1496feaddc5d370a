package lattice

import (
	"errors"
	"sync/atomic"
)

// Probe-slot owner states. Values >= 0 are vertex slots.
const (
	slotEmpty  int32 = -1
	slotLocked int32 = -2
)

// ErrTableFull reports that a key probed every slot without resolving.
// Capacity is sized so this cannot happen for well-formed input; hitting
// it means the capacity invariant was violated.
var ErrTableFull = errors.New("lattice: hash table probe space exhausted")

// hashTable is an open-addressing table mapping integer lattice keys to
// vertex slots, sized for capacity vertices with probeFactor*capacity
// probe slots. The probe array is the only state touched concurrently:
// slot claims go through a CAS on the owner marker, and a claimed key is
// fully written before the owner index that publishes it is stored.
type hashTable struct {
	pd      int
	keys    []int16 // capacity*pd, written once per claimed slot
	entries []int32 // probeFactor*capacity owner markers
}

func newHashTable(pd, capacity int) *hashTable {
	t := &hashTable{
		pd:      pd,
		keys:    make([]int16, capacity*pd),
		entries: make([]int32, probeFactor*capacity),
	}
	t.clear()
	return t
}

// clear empties every probe slot. Key storage keeps its bytes: keys are
// only ever read through an owner marker, and clear invalidates those.
func (t *hashTable) clear() {
	for i := range t.entries {
		t.entries[i] = slotEmpty
	}
}

func (t *hashTable) hash(key []int16) uint32 {
	var k uint32
	for _, c := range key {
		k = k*2531011 + uint32(int32(c))
	}
	return k
}

// key returns the stored key of a vertex slot.
func (t *hashTable) key(slot int32) []int16 {
	return t.keys[int(slot)*t.pd : (int(slot)+1)*t.pd]
}

func (t *hashTable) keyMatches(slot int32, key []int16) bool {
	stored := t.key(slot)
	for i := range key {
		if stored[i] != key[i] {
			return false
		}
	}
	return true
}

// insert registers key under the candidate vertex slot and returns the
// probe position that owns the key. When several samples discover the
// same lattice point concurrently the loser of the CAS either adopts the
// winner's probe position (keys match) or keeps probing forward; claims
// only ever move forward under linear probing, never back.
func (t *hashTable) insert(key []int16, slot int32) (int32, error) {
	h := int(t.hash(key) % uint32(len(t.entries)))
	for probes := 0; probes < len(t.entries); probes++ {
		for {
			e := atomic.LoadInt32(&t.entries[h])
			if e == slotEmpty {
				if !atomic.CompareAndSwapInt32(&t.entries[h], slotEmpty, slotLocked) {
					continue // lost the claim, re-read the marker
				}
				copy(t.key(slot), key)
				atomic.StoreInt32(&t.entries[h], slot)
				return int32(h), nil
			}
			if e == slotLocked {
				continue // claimant is mid-publish, spin
			}
			if t.keyMatches(e, key) {
				return int32(h), nil
			}
			break // owned by a different key, probe forward
		}
		h++
		if h == len(t.entries) {
			h = 0
		}
	}
	return -1, ErrTableFull
}

// retrieve returns the probe position of the earliest published owner of
// key, or -1 if the key was never inserted. It never mutates the table.
func (t *hashTable) retrieve(key []int16) int32 {
	h := int(t.hash(key) % uint32(len(t.entries)))
	for probes := 0; probes < len(t.entries); probes++ {
		e := atomic.LoadInt32(&t.entries[h])
		if e == slotEmpty {
			return -1
		}
		if e != slotLocked && t.keyMatches(e, key) {
			return int32(h)
		}
		h++
		if h == len(t.entries) {
			h = 0
		}
	}
	return -1
}

// slot returns the vertex slot owning the given probe position.
func (t *hashTable) slot(probe int32) int32 {
	return atomic.LoadInt32(&t.entries[probe])
}

// lookupSlot resolves key directly to its canonical vertex slot, or -1.
func (t *hashTable) lookupSlot(key []int16) int32 {
	h := t.retrieve(key)
	if h < 0 {
		return -1
	}
	return atomic.LoadInt32(&t.entries[h])
}

// coalesce canonicalizes one occupied probe position. Racing inserts can
// transiently leave two probe positions with private slots for the same
// key; re-running retrieve on the stored key converges both onto the
// earliest published owner, which retrieve returns deterministically.
func (t *hashTable) coalesce(probe int) {
	e := atomic.LoadInt32(&t.entries[probe])
	if e < 0 {
		return
	}
	atomic.StoreInt32(&t.entries[probe], t.lookupSlot(t.key(e)))
}

// insertSeq is the synchronization-free insert used by the sequential
// engine. Without races a key resolves on first touch, so no locked
// state and no coalescing pass are needed.
func (t *hashTable) insertSeq(key []int16, slot int32) (int32, error) {
	h := int(t.hash(key) % uint32(len(t.entries)))
	for probes := 0; probes < len(t.entries); probes++ {
		e := t.entries[h]
		if e == slotEmpty {
			copy(t.key(slot), key)
			t.entries[h] = slot
			return int32(h), nil
		}
		if t.keyMatches(e, key) {
			return int32(h), nil
		}
		h++
		if h == len(t.entries) {
			h = 0
		}
	}
	return -1, ErrTableFull
}

// lookupSlotSeq is the synchronization-free counterpart of lookupSlot.
func (t *hashTable) lookupSlotSeq(key []int16) int32 {
	h := int(t.hash(key) % uint32(len(t.entries)))
	for probes := 0; probes < len(t.entries); probes++ {
		e := t.entries[h]
		if e == slotEmpty {
			return -1
		}
		if t.keyMatches(e, key) {
			return e
		}
		h++
		if h == len(t.entries) {
			h = 0
		}
	}
	return -1
}
