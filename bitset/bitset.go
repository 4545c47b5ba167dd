// File: bitset/bitset.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// BoundedBitset is a fixed-size bitset over uint64 words used for subcarrier,
// resource block and OFDM symbol masks. Word storage is reused across Resize
// calls so masks can live in per-mapper scratch space without reallocating.

package bitset

import (
	"math/bits"
	"strings"
)

const wordBits = 64

// BoundedBitset is a bitset with an explicit size. Bits at or beyond Size are always zero.
type BoundedBitset struct {
	size  int
	words []uint64
}

// New returns a cleared bitset of the given size.
func New(size int) *BoundedBitset {
	b := &BoundedBitset{}
	b.Resize(size)
	return b
}

// FromBools returns a bitset of len(mask) bits with bit i set when mask[i] is true.
func FromBools(mask []bool) *BoundedBitset {
	b := New(len(mask))
	for i, v := range mask {
		if v {
			b.words[i/wordBits] |= 1 << uint(i%wordBits)
		}
	}
	return b
}

// FromIndices returns a bitset of the given size with the listed bits set.
func FromIndices(size int, indices ...int) *BoundedBitset {
	b := New(size)
	for _, i := range indices {
		b.Set(i)
	}
	return b
}

func nofWords(size int) int {
	return (size + wordBits - 1) / wordBits
}

// Size returns the number of addressable bits.
func (b *BoundedBitset) Size() int { return b.size }

// Resize changes the size and clears every bit.
func (b *BoundedBitset) Resize(size int) {
	if size < 0 {
		panic("bitset: negative size")
	}
	n := nofWords(size)
	if cap(b.words) < n {
		b.words = make([]uint64, n)
	} else {
		b.words = b.words[:n]
		clear(b.words)
	}
	b.size = size
}

func (b *BoundedBitset) checkIndex(i int) {
	if i < 0 || i >= b.size {
		panic("bitset: index out of range")
	}
}

// Set sets bit i.
func (b *BoundedBitset) Set(i int) {
	b.checkIndex(i)
	b.words[i/wordBits] |= 1 << uint(i%wordBits)
}

// Clear clears bit i.
func (b *BoundedBitset) Clear(i int) {
	b.checkIndex(i)
	b.words[i/wordBits] &^= 1 << uint(i%wordBits)
}

// Test reports whether bit i is set.
func (b *BoundedBitset) Test(i int) bool {
	b.checkIndex(i)
	return b.words[i/wordBits]&(1<<uint(i%wordBits)) != 0
}

// rangeMask returns the bits of word w that fall inside [begin, end).
func rangeMask(w, begin, end int) uint64 {
	lo := w * wordBits
	hi := lo + wordBits
	if begin > lo {
		lo = begin
	}
	if end < hi {
		hi = end
	}
	if lo >= hi {
		return 0
	}
	n := hi - lo
	var m uint64
	if n == wordBits {
		m = ^uint64(0)
	} else {
		m = (uint64(1) << uint(n)) - 1
	}
	return m << uint(lo%wordBits)
}

func (b *BoundedBitset) checkRange(begin, end int) {
	if begin < 0 || end > b.size || begin > end {
		panic("bitset: range out of bounds")
	}
}

// Fill sets every bit in [begin, end).
func (b *BoundedBitset) Fill(begin, end int) {
	b.checkRange(begin, end)
	for w := begin / wordBits; w < nofWords(end); w++ {
		b.words[w] |= rangeMask(w, begin, end)
	}
}

// ClearRange clears every bit in [begin, end).
func (b *BoundedBitset) ClearRange(begin, end int) {
	b.checkRange(begin, end)
	for w := begin / wordBits; w < nofWords(end); w++ {
		b.words[w] &^= rangeMask(w, begin, end)
	}
}

// Reset clears all bits, keeping the size.
func (b *BoundedBitset) Reset() {
	clear(b.words)
}

// Count returns the number of set bits.
func (b *BoundedBitset) Count() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// CountRange returns the number of set bits in [begin, end).
func (b *BoundedBitset) CountRange(begin, end int) int {
	b.checkRange(begin, end)
	n := 0
	for w := begin / wordBits; w < nofWords(end); w++ {
		n += bits.OnesCount64(b.words[w] & rangeMask(w, begin, end))
	}
	return n
}

// Any reports whether at least one bit is set.
func (b *BoundedBitset) Any() bool {
	for _, w := range b.words {
		if w != 0 {
			return true
		}
	}
	return false
}

// None reports whether no bit is set.
func (b *BoundedBitset) None() bool { return !b.Any() }

// All reports whether every bit up to Size is set.
func (b *BoundedBitset) All() bool {
	return b.Count() == b.size
}

// FindLowest returns the index of the lowest set bit, or -1.
func (b *BoundedBitset) FindLowest() int {
	return b.FindLowestFrom(0)
}

// FindLowestFrom returns the index of the lowest set bit at or above start, or -1.
func (b *BoundedBitset) FindLowestFrom(start int) int {
	if start >= b.size {
		return -1
	}
	if start < 0 {
		start = 0
	}
	w := start / wordBits
	word := b.words[w] &^ ((uint64(1) << uint(start%wordBits)) - 1)
	for {
		if word != 0 {
			return w*wordBits + bits.TrailingZeros64(word)
		}
		w++
		if w >= len(b.words) {
			return -1
		}
		word = b.words[w]
	}
}

// FindHighest returns the index of the highest set bit, or -1.
func (b *BoundedBitset) FindHighest() int {
	for w := len(b.words) - 1; w >= 0; w-- {
		if b.words[w] != 0 {
			return w*wordBits + wordBits - 1 - bits.LeadingZeros64(b.words[w])
		}
	}
	return -1
}

// NthSet returns the index of the n-th set bit (n counts from zero), or -1.
func (b *BoundedBitset) NthSet(n int) int {
	if n < 0 {
		return -1
	}
	for w, word := range b.words {
		c := bits.OnesCount64(word)
		if n >= c {
			n -= c
			continue
		}
		for ; n > 0; n-- {
			word &= word - 1
		}
		return w*wordBits + bits.TrailingZeros64(word)
	}
	return -1
}

// IsContiguous reports whether at least one bit is set and all set bits are adjacent.
func (b *BoundedBitset) IsContiguous() bool {
	lo := b.FindLowest()
	if lo < 0 {
		return false
	}
	hi := b.FindHighest()
	return b.Count() == hi-lo+1
}

// SliceInto writes bits [begin, end) of b into dst, which is resized to end-begin.
func (b *BoundedBitset) SliceInto(dst *BoundedBitset, begin, end int) {
	b.checkRange(begin, end)
	dst.Resize(end - begin)
	shift := uint(begin % wordBits)
	src := begin / wordBits
	for w := range dst.words {
		word := b.words[src+w] >> shift
		if shift != 0 && src+w+1 < len(b.words) {
			word |= b.words[src+w+1] << (wordBits - shift)
		}
		dst.words[w] = word
	}
	dst.trim()
}

// Slice returns a new bitset holding bits [begin, end) of b.
func (b *BoundedBitset) Slice(begin, end int) *BoundedBitset {
	dst := &BoundedBitset{}
	b.SliceInto(dst, begin, end)
	return dst
}

// trim clears the unused bits of the last word.
func (b *BoundedBitset) trim() {
	if r := b.size % wordBits; r != 0 {
		b.words[len(b.words)-1] &= (uint64(1) << uint(r)) - 1
	}
}

// CopyFrom makes b an exact copy of other.
func (b *BoundedBitset) CopyFrom(other *BoundedBitset) {
	b.Resize(other.size)
	copy(b.words, other.words)
}

// Clone returns a deep copy of b.
func (b *BoundedBitset) Clone() *BoundedBitset {
	c := &BoundedBitset{}
	c.CopyFrom(b)
	return c
}

func (b *BoundedBitset) checkSameSize(other *BoundedBitset) {
	if b.size != other.size {
		panic("bitset: size mismatch")
	}
}

// Or sets every bit that is set in other.
func (b *BoundedBitset) Or(other *BoundedBitset) {
	b.checkSameSize(other)
	for i, w := range other.words {
		b.words[i] |= w
	}
}

// And clears every bit that is clear in other.
func (b *BoundedBitset) And(other *BoundedBitset) {
	b.checkSameSize(other)
	for i, w := range other.words {
		b.words[i] &= w
	}
}

// AndNot clears every bit that is set in other.
func (b *BoundedBitset) AndNot(other *BoundedBitset) {
	b.checkSameSize(other)
	for i, w := range other.words {
		b.words[i] &^= w
	}
}

// Equal reports whether both bitsets have the same size and bits.
func (b *BoundedBitset) Equal(other *BoundedBitset) bool {
	if b.size != other.size {
		return false
	}
	for i, w := range b.words {
		if other.words[i] != w {
			return false
		}
	}
	return true
}

// ForEach calls fn with the index of every set bit in ascending order.
func (b *BoundedBitset) ForEach(fn func(i int)) {
	for w, word := range b.words {
		for word != 0 {
			fn(w*wordBits + bits.TrailingZeros64(word))
			word &= word - 1
		}
	}
}

// Indices appends the index of every set bit to dst and returns it.
func (b *BoundedBitset) Indices(dst []int) []int {
	b.ForEach(func(i int) { dst = append(dst, i) })
	return dst
}

// Bools returns the bitset as a boolean slice.
func (b *BoundedBitset) Bools() []bool {
	out := make([]bool, b.size)
	b.ForEach(func(i int) { out[i] = true })
	return out
}

// String renders the bitset with bit 0 first, e.g. "1010".
func (b *BoundedBitset) String() string {
	var sb strings.Builder
	sb.Grow(b.size)
	for i := 0; i < b.size; i++ {
		if b.words[i/wordBits]&(1<<uint(i%wordBits)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
