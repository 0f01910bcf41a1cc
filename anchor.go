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

import "github.com/twotwotwo/sorts"

// Anchor is one (query position, reference position) pair sharing a
// canonical seed k-mer.
type Anchor struct {
	QueryContig  uint32
	QueryPos     uint32
	RefContig    uint32
	RefPos       uint32
	RefPhase     uint8
	QueryPhase   uint8
	ReverseMatch bool
}

// ChainInterval is a non-overlapping chain of anchors, after DP
// extraction and before/after overlap resolution.
type ChainInterval struct {
	Score         float64
	NumAnchors    int
	QueryStart    uint32
	QueryEnd      uint32
	RefStart      uint32
	RefEnd        uint32
	RefContig     uint32
	QueryContig   uint32
	ReverseChain  bool
	ChunkID       int
}

// anchorList is a sortable []Anchor ordered by (ref_contig, ref_pos,
// query_pos). The DP's band-break early termination relies on this
// order; ties are broken lexicographically so output is bit-stable.
type anchorList []Anchor

func (a anchorList) Len() int { return len(a) }
func (a anchorList) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a anchorList) Less(i, j int) bool {
	if a[i].RefContig != a[j].RefContig {
		return a[i].RefContig < a[j].RefContig
	}
	if a[i].RefPos != a[j].RefPos {
		return a[i].RefPos < a[j].RefPos
	}
	return a[i].QueryPos < a[j].QueryPos
}

// generateAnchors iterates the smaller sketch's fine seeds, and for
// each k-mer also present in the larger sketch emits the Cartesian
// product of position bags as Anchors. Anchor lists can run to
// millions of entries for close genome pairs, so the sort is the
// parallel sorts.Quicksort rather than the stdlib sort.
func generateAnchors(small, large *Sketch) []Anchor {
	var anchors []Anchor
	for kmer, smallBag := range small.FineSeeds {
		largeBag, ok := large.FineSeeds[kmer]
		if !ok {
			continue
		}
		for _, sp := range smallBag {
			for _, lp := range largeBag {
				anchors = append(anchors, Anchor{
					QueryContig:  sp.ContigIndex,
					QueryPos:     sp.Pos,
					RefContig:    lp.ContigIndex,
					RefPos:       lp.Pos,
					RefPhase:     lp.Phase,
					QueryPhase:   sp.Phase,
					ReverseMatch: sp.Canonical != lp.Canonical,
				})
			}
		}
	}
	list := anchorList(anchors)
	sorts.Quicksort(list)
	return []Anchor(list)
}
