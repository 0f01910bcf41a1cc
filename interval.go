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

import "sort"

// intervalSet holds the query intervals of chains already admitted by
// overlap resolution, kept sorted by start position per query contig.
// A small sorted-scan structure rather than a balanced interval tree:
// at per-pair chain counts (tens to low hundreds) the scan is both
// correct and simpler.
type intervalSet struct {
	byContig map[uint32][]queryInterval
}

type queryInterval struct {
	start, end uint32
}

func newIntervalSet() *intervalSet {
	return &intervalSet{byContig: make(map[uint32][]queryInterval)}
}

// overlaps reports whether qi overlaps any interval already accepted
// on the same query contig by at least FracCoverCutoff of the
// shorter of the two intervals.
func (s *intervalSet) overlaps(contig uint32, qi queryInterval) bool {
	for _, other := range s.byContig[contig] {
		lo := maxU32(qi.start, other.start)
		hi := minU32(qi.end, other.end)
		if hi <= lo {
			continue
		}
		overlap := float64(hi - lo)
		shorter := float64(minU32(qi.end-qi.start, other.end-other.start))
		if shorter <= 0 {
			continue
		}
		if overlap/shorter >= FracCoverCutoff {
			return true
		}
	}
	return false
}

func (s *intervalSet) insert(contig uint32, qi queryInterval) {
	list := s.byContig[contig]
	list = append(list, qi)
	sort.Slice(list, func(i, j int) bool { return list[i].start < list[j].start })
	s.byContig[contig] = list
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// resolveOverlaps sorts candidate chains by
// score descending, then greedily admits a chain if its query interval
// either doesn't overlap any already-accepted chain (on the same
// query contig), or overlaps every one of them by less than
// FracCoverCutoff of the shorter interval.
func resolveOverlaps(chains []ChainInterval) []ChainInterval {
	sort.SliceStable(chains, func(i, j int) bool { return chains[i].Score > chains[j].Score })

	accepted := make([]ChainInterval, 0, len(chains))
	set := newIntervalSet()
	for _, c := range chains {
		qi := queryInterval{start: c.QueryStart, end: c.QueryEnd}
		if set.overlaps(c.QueryContig, qi) {
			continue
		}
		set.insert(c.QueryContig, qi)
		accepted = append(accepted, c)
	}
	return accepted
}
