// Copyright © 2018-2021 Wei Shen <shenwei356@gmail.com>
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

import (
	"math/rand"
	"sort"
	"testing"
)

func randomDNASeq(n int) []byte {
	alphabet := []byte("ACGT")
	seq := make([]byte, n)
	for i := range seq {
		seq[i] = alphabet[rand.Intn(4)]
	}
	return seq
}

func sketchFineKeySet(s *Sketch) map[uint64]int {
	out := make(map[uint64]int, len(s.FineSeeds))
	for k, v := range s.FineSeeds {
		out[k] = len(v)
	}
	return out
}

func sketchMarkerKeySet(s *Sketch) map[uint64]struct{} {
	out := make(map[uint64]struct{}, len(s.MarkerSeeds))
	for k := range s.MarkerSeeds {
		out[k] = struct{}{}
	}
	return out
}

// TestScalarSimdEquivalence checks that scalarSeedExtractor and
// simdSeedExtractor agree on the full fine- and marker-seed sets (up
// to bag ordering) for a variety of contig lengths, including ones
// that split unevenly across the 4 lanes.
func TestScalarSimdEquivalence(t *testing.T) {
	params := DefaultDNAParams()
	lengths := []int{0, 10, 50, 1000, 5000, 12345, 50003}

	for _, length := range lengths {
		seq := randomDNASeq(length)

		bScalar := newSketchBuilder("q", params, false)
		scalarSeedExtractor{}.AddContig(bScalar, "c1", seq)
		sScalar := bScalar.build()

		bSimd := newSketchBuilder("q", params, false)
		simdSeedExtractor{}.AddContig(bSimd, "c1", seq)
		sSimd := bSimd.build()

		fScalar := sketchFineKeySet(sScalar)
		fSimd := sketchFineKeySet(sSimd)
		if len(fScalar) != len(fSimd) {
			t.Fatalf("length=%d: fine-seed key count mismatch: scalar=%d simd=%d", length, len(fScalar), len(fSimd))
		}
		for k, n := range fScalar {
			if fSimd[k] != n {
				t.Errorf("length=%d: fine seed %x count mismatch: scalar=%d simd=%d", length, k, n, fSimd[k])
			}
		}

		mScalar := sketchMarkerKeySet(sScalar)
		mSimd := sketchMarkerKeySet(sSimd)
		if len(mScalar) != len(mSimd) {
			t.Fatalf("length=%d: marker-seed count mismatch: scalar=%d simd=%d", length, len(mScalar), len(mSimd))
		}
		for k := range mScalar {
			if _, ok := mSimd[k]; !ok {
				t.Errorf("length=%d: marker seed %x present in scalar but not simd", length, k)
			}
		}

		// Position sets per fine k-mer must also agree once sorted,
		// not merely the counts.
		for k, posScalar := range sScalar.FineSeeds {
			posSimd := sSimd.FineSeeds[k]
			if len(posScalar) != len(posSimd) {
				continue // already reported above
			}
			a := append([]uint32{}, positionsOf(posScalar)...)
			b := append([]uint32{}, positionsOf(posSimd)...)
			sort.Slice(a, func(i, j int) bool { return a[i] < a[j] })
			sort.Slice(b, func(i, j int) bool { return b[i] < b[j] })
			for i := range a {
				if a[i] != b[i] {
					t.Errorf("length=%d: fine seed %x position mismatch at %d: scalar=%d simd=%d", length, k, i, a[i], b[i])
				}
			}
		}
	}
}

func positionsOf(ps []SeedPosition) []uint32 {
	out := make([]uint32, len(ps))
	for i, p := range ps {
		out[i] = p.Pos
	}
	return out
}
