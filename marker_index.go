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
	"encoding/binary"
	"math"

	boom "github.com/tylertreat/BoomFilters"
)

// RefSketch pairs a Sketch with the integer id the MarkerIndex and
// Chainer address it by.
type RefSketch struct {
	ID     int
	Sketch *Sketch
}

// MarkerIndex is an inverted index over a fixed reference collection:
// marker seed -> ordered bag of reference ids that contain it. Built
// once, queried many times during screening.
//
// A scalable Bloom filter over the postings keys fronts the exact map:
// most of an unrelated query's markers hit nothing, and the filter
// rejects those without touching the (much larger) postings map. A
// false positive only costs the map lookup that would have happened
// anyway, and Bloom filters have no false negatives, so the tally is
// exact.
type MarkerIndex struct {
	postings  map[uint64][]int
	byID      map[int]RefSketch
	prefilter *boom.ScalableBloomFilter
}

// NewMarkerIndex builds the inverted index over refs. Each reference
// contributes at most once per marker, matching the data model's
// statement that duplicates only arise across distinct references.
func NewMarkerIndex(refs []RefSketch) *MarkerIndex {
	idx := &MarkerIndex{
		postings:  make(map[uint64][]int),
		byID:      make(map[int]RefSketch, len(refs)),
		prefilter: boom.NewScalableBloomFilter(10000, 0.01, 0.8),
	}
	var key [8]byte
	for _, ref := range refs {
		idx.byID[ref.ID] = ref
		for m := range ref.Sketch.MarkerSeeds {
			idx.postings[m] = append(idx.postings[m], ref.ID)
			binary.LittleEndian.PutUint64(key[:], m)
			idx.prefilter.Add(key[:])
		}
	}
	return idx
}

// Ref returns the RefSketch registered under id, or false if absent.
func (idx *MarkerIndex) Ref(id int) (RefSketch, bool) {
	r, ok := idx.byID[id]
	return r, ok
}

// ScreenResult reports a surviving reference and the raw marker
// overlap count it was admitted on, for diagnostics.
type ScreenResult struct {
	RefID   int
	Overlap int
}

// Screen tallies Q's marker seeds against the
// index, then keeps a reference r only if count(r) exceeds the
// Poisson-model threshold theta^k * |Q.marker_seeds|. Sketches with
// fewer than ScreenMinimumKmers markers either fall back to a raw
// overlap comparison, or are skipped outright when fasterSmall is set.
func (idx *MarkerIndex) Screen(q *Sketch, theta float64, markerK int, fasterSmall bool) []ScreenResult {
	numMarkers := len(q.MarkerSeeds)

	counts := make(map[int]int)
	var key [8]byte
	for m := range q.MarkerSeeds {
		binary.LittleEndian.PutUint64(key[:], m)
		if !idx.prefilter.Test(key[:]) {
			continue
		}
		for _, refID := range idx.postings[m] {
			counts[refID]++
		}
	}

	if numMarkers < ScreenMinimumKmers {
		if fasterSmall {
			return nil
		}
		// Looser heuristic: any nonzero raw overlap survives.
		out := make([]ScreenResult, 0, len(counts))
		for refID, c := range counts {
			if c > 0 {
				out = append(out, ScreenResult{RefID: refID, Overlap: c})
			}
		}
		return out
	}

	threshold := math.Pow(theta, float64(markerK)) * float64(numMarkers)

	out := make([]ScreenResult, 0, len(counts))
	for refID, c := range counts {
		if float64(c) > threshold {
			out = append(out, ScreenResult{RefID: refID, Overlap: c})
		}
	}
	return out
}
