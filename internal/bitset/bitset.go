// Package bitset provides a small growable bitset, used by the block
// sequencer for its visited-block set where a fixed-width RegMask is too
// narrow.
package bitset

import "math/bits"

// Set is a growable set of small non-negative integers.
type Set struct {
	words []uint64
	// buf backs the first few words so small sets (the common case: a
	// handful of tracked locals per block) never touch the heap.
	buf [4]uint64
}

// Reset empties the set without releasing the backing array.
func (s *Set) Reset() {
	s.words, s.buf = s.words[:0], [4]uint64{}
}

// Has reports whether i is a member.
func (s *Set) Has(i uint) bool {
	word := i / 64
	return word < uint(len(s.words)) && s.words[word]&(1<<(i%64)) != 0
}

// Add inserts i into the set.
func (s *Set) Add(i uint) {
	word, shift := i/64, i%64
	if word >= uint(len(s.words)) {
		if word < uint(len(s.buf)) {
			s.words = s.buf[:]
		} else {
			grown := make([]uint64, word+1)
			copy(grown, s.words)
			s.words = grown
			s.buf = [4]uint64{}
		}
	}
	s.words[word] |= 1 << shift
}

// Remove deletes i from the set, if present.
func (s *Set) Remove(i uint) {
	word := i / 64
	if word < uint(len(s.words)) {
		s.words[word] &^= 1 << (i % 64)
	}
}

// Range calls f once for every member, in ascending order.
func (s *Set) Range(f func(i uint)) {
	for wi, w := range s.words {
		base := uint(wi * 64)
		for w != 0 {
			n := uint(bits.TrailingZeros64(w))
			f(base + n)
			w &= w - 1
		}
	}
}

// Count returns the number of members.
func (s *Set) Count() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Union sets s to s ∪ other, returning true if s changed.
func (s *Set) Union(other *Set) bool {
	changed := false
	if len(other.words) > len(s.words) {
		grown := make([]uint64, len(other.words))
		copy(grown, s.words)
		s.words = grown
	}
	for i, w := range other.words {
		if w&^s.words[i] != 0 {
			changed = true
		}
		s.words[i] |= w
	}
	return changed
}
