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
	"math"
	"testing"
)

func markerSketch(markers ...uint64) *Sketch {
	set := make(map[uint64]struct{}, len(markers))
	for _, m := range markers {
		set[m] = struct{}{}
	}
	return &Sketch{MarkerSeeds: set}
}

// TestScreeningSoundness checks that any reference whose marker
// overlap with the query exceeds the theta^k threshold survives
// screening, and that every survivor's overlap count is indeed at or
// above that threshold.
func TestScreeningSoundness(t *testing.T) {
	theta := 0.80
	markerK := 21
	numQueryMarkers := 1000

	query := make([]uint64, numQueryMarkers)
	for i := range query {
		query[i] = uint64(i)
	}
	q := markerSketch(query...)

	threshold := math.Pow(theta, float64(markerK)) * float64(numQueryMarkers)

	// above: a reference sharing every query marker plus some of its
	// own, comfortably over threshold.
	above := append([]uint64{}, query...)
	above = append(above, 100000, 100001)

	// below: a reference sharing only one marker, comfortably under
	// threshold (0.8^21 * 1000, about 9.2, at these parameters).
	below := []uint64{query[0], 200000, 200001}

	idx := NewMarkerIndex([]RefSketch{
		{ID: 1, Sketch: markerSketch(above...)},
		{ID: 2, Sketch: markerSketch(below...)},
	})

	results := idx.Screen(q, theta, markerK, false)

	survived := make(map[int]int)
	for _, r := range results {
		survived[r.RefID] = r.Overlap
		if float64(r.Overlap) <= threshold {
			t.Errorf("survivor ref %d has overlap %d, not above threshold %v", r.RefID, r.Overlap, threshold)
		}
	}

	if _, ok := survived[1]; !ok {
		t.Errorf("ref 1 (overlap=%d) should have survived screening at threshold %v", numQueryMarkers, threshold)
	}
	if _, ok := survived[2]; ok {
		t.Errorf("ref 2 (overlap=1) should not have survived screening at threshold %v", threshold)
	}
}

// TestScreeningFasterSmallSkipsTinyQueries checks that queries with
// fewer than ScreenMinimumKmers markers are skipped outright when
// fasterSmall is requested.
func TestScreeningFasterSmallSkipsTinyQueries(t *testing.T) {
	q := markerSketch(1, 2, 3)
	idx := NewMarkerIndex([]RefSketch{
		{ID: 1, Sketch: markerSketch(1, 2, 3, 4, 5)},
	})

	if got := idx.Screen(q, 0.80, 21, true); got != nil {
		t.Errorf("expected nil (skip) for a tiny query with fasterSmall set, got %v", got)
	}

	got := idx.Screen(q, 0.80, 21, false)
	if len(got) != 1 || got[0].RefID != 1 {
		t.Errorf("expected the loose raw-overlap heuristic to admit ref 1, got %v", got)
	}
}
