// Copyright 2026 The Wayfarer Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pattern

import "hash/fnv"

// BloomFilter is a fixed-size bloom filter used for negative lookups against
// the set of registered static template paths: a Test that returns false
// means the path is definitely not registered, so the caller can skip the
// exact-match table entirely.
//
// Hashing is FNV-1a with per-function seeds XORed into the base hash, which
// keeps Add/Test to a single hash computation.
type BloomFilter struct {
	bits  []uint64
	size  uint64
	seeds []uint64
}

// NewBloomFilter creates a bloom filter with the given bit count and number
// of hash functions. Size is rounded up to a 64-bit boundary internally.
func NewBloomFilter(size uint64, numHashFuncs int) *BloomFilter {
	if size == 0 {
		size = 64
	}
	if numHashFuncs <= 0 {
		numHashFuncs = 3
	}
	bf := &BloomFilter{
		bits:  make([]uint64, (size+63)/64),
		size:  size,
		seeds: make([]uint64, numHashFuncs),
	}
	for i := range bf.seeds {
		bf.seeds[i] = uint64(i + 1)
	}
	return bf
}

// Add inserts a key into the filter.
func (bf *BloomFilter) Add(key string) {
	base := fnvHash(key)
	for _, seed := range bf.seeds {
		pos := (base ^ seed) % bf.size
		bf.bits[pos/64] |= 1 << (pos % 64)
	}
}

// Test reports whether a key might be in the filter. A false result is
// definitive; a true result may be a false positive.
func (bf *BloomFilter) Test(key string) bool {
	base := fnvHash(key)
	for _, seed := range bf.seeds {
		pos := (base ^ seed) % bf.size
		if bf.bits[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}
	return true
}

// Reset clears all bits, emptying the filter without reallocating.
func (bf *BloomFilter) Reset() {
	for i := range bf.bits {
		bf.bits[i] = 0
	}
}

func fnvHash(key string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return h.Sum64()
}
