// Copyright © 2018-2020 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package seedani

// mixHash64 is the classic minimap2 invertible integer mix: an
// add-shift-xor cascade. It is the sole source of subsampling decisions
// for both fine and marker seeds, so its output must be treated as
// uniform over the full 64-bit range.
//
// https://gist.github.com/badboy/6267743
func mixHash64(key uint64) uint64 {
	key = (^key) + (key << 21) // key = (key << 21) - key - 1
	key = key ^ (key >> 24)
	key = (key + (key << 3)) + (key << 8) // key * 265
	key = key ^ (key >> 14)
	key = (key + (key << 2)) + (key << 4) // key * 21
	key = key ^ (key >> 28)
	key = key + (key << 31)
	return key
}

// invMixHash64 inverts mixHash64. It exists because a 64-bit add-shift-xor
// mix is a bijection on uint64 even though the forward direction is not
// obviously invertible at a glance; kept mainly for test vectors and
// for callers that need to recover a packed k-mer from a hash bucket.
//
// https://naml.us/post/inverse-of-a-hash-function/
func invMixHash64(key uint64) uint64 {
	var tmp uint64

	// Invert key = key + (key << 31)
	tmp = key - (key << 31)
	key = key - (tmp << 31)

	// Invert key = key ^ (key >> 28)
	tmp = key ^ key>>28
	key = key ^ tmp>>28

	// Invert key *= 21
	key *= 14933078535860113213

	// Invert key = key ^ (key >> 14)
	tmp = key ^ key>>14
	tmp = key ^ tmp>>14
	tmp = key ^ tmp>>14
	key = key ^ tmp>>14

	// Invert key *= 265
	key *= 15244667743933553977

	// Invert key = key ^ (key >> 24)
	tmp = key ^ key>>24
	key = key ^ tmp>>24

	// Invert key = (^key) + (key << 21)
	tmp = ^key
	tmp = ^(key - (tmp << 21))
	tmp = ^(key - (tmp << 21))
	key = ^(key - (tmp << 21))

	return key
}

// fracMinThreshold returns floor(2^64 / c) as an unsigned 64-bit value,
// computed without overflow (2^64 itself doesn't fit a uint64).
func fracMinThreshold(c int) uint64 {
	if c <= 1 {
		return ^uint64(0)
	}
	// (2^64 - 1) / c differs from floor(2^64 / c) only when c divides
	// 2^64 exactly at the boundary; the off-by-one is irrelevant at
	// these magnitudes.
	return ^uint64(0) / uint64(c)
}
