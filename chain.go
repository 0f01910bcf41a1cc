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

	"github.com/twotwotwo/sorts"
)

// Chainer builds collinear chains of shared seeds between a query and
// a reference Sketch and partitions them into non-overlapping
// intervals.
type Chainer struct {
	params MapParams
}

func NewChainer(params MapParams) *Chainer {
	return &Chainer{params: params}
}

// Chain runs anchor generation, DP chaining, chain extraction and
// overlap resolution for one (query, ref) sketch pair, returning the
// admitted, non-overlapping ChainIntervals. query and ref must share
// SketchParams (callers should have called mergeSketchParams first);
// a nil FineSeeds map on either side is a programming error and
// returns ErrInvalidSketch.
func (c *Chainer) Chain(query, ref *Sketch) ([]ChainInterval, error) {
	if query.FineSeeds == nil || ref.FineSeeds == nil {
		return nil, ErrInvalidSketch
	}

	small, large := query, ref
	queryIsSmall := true
	if len(ref.FineSeeds) < len(query.FineSeeds) {
		small, large = ref, query
		queryIsSmall = false
	}

	anchors := generateAnchors(small, large)
	if len(anchors) == 0 {
		return nil, nil
	}

	// generateAnchors always puts the "small" sketch's positions in
	// the query_* fields and the "large" sketch's positions in the
	// ref_* fields; swap back
	// to a true query/ref labeling when the roles were reversed.
	if !queryIsSmall {
		for i := range anchors {
			anchors[i].QueryContig, anchors[i].RefContig = anchors[i].RefContig, anchors[i].QueryContig
			anchors[i].QueryPos, anchors[i].RefPos = anchors[i].RefPos, anchors[i].QueryPos
			anchors[i].QueryPhase, anchors[i].RefPhase = anchors[i].RefPhase, anchors[i].QueryPhase
		}
		// re-sort: the anchor list must be sorted by (ref_contig,
		// ref_pos) for the DP's band-break early termination to be
		// valid, and the swap leaves it ordered by the new query
		// fields instead.
		sorts.Quicksort(anchorList(anchors))
	}

	minAnchors := c.params.MinAnchors
	// Short sequences can't accumulate long chains; relax the anchor
	// cutoff below one fragment length so they aren't filtered outright.
	shorter := query.TotalSequenceLength
	if ref.TotalSequenceLength < shorter {
		shorter = ref.TotalSequenceLength
	}
	if shorter < uint64(c.params.FragmentLength) && minAnchors > 2 {
		minAnchors--
	}
	chains := c.chainOneContigGroup(anchors, minAnchors)
	return resolveOverlaps(chains), nil
}

// chainOneContigGroup splits anchors into per-(ref_contig, chunk)
// groups and runs one sparse dynamic program independently within
// each group, one per reference contig (or per chunk of length
// fragment_length).
func (c *Chainer) chainOneContigGroup(anchors []Anchor, minAnchors int) []ChainInterval {
	var out []ChainInterval

	start := 0
	for start < len(anchors) {
		contig := anchors[start].RefContig
		end := start
		for end < len(anchors) && anchors[end].RefContig == contig {
			end++
		}
		group := anchors[start:end]

		chunkStart := 0
		for chunkStart < len(group) {
			chunkBase := group[chunkStart].RefPos
			chunkEnd := chunkStart
			for chunkEnd < len(group) && group[chunkEnd].RefPos-chunkBase < uint32(c.params.FragmentLength) {
				chunkEnd++
			}
			chunkID := int(chunkBase) / c.params.FragmentLength
			out = append(out, c.chainDP(group[chunkStart:chunkEnd], minAnchors, chunkID)...)
			chunkStart = chunkEnd
		}

		start = end
	}
	return out
}

// chainDP runs the sparse chaining dynamic program on one anchor
// group that is already sorted by ref_pos ascending.
func (c *Chainer) chainDP(anchors []Anchor, minAnchors int, chunkID int) []ChainInterval {
	n := len(anchors)
	if n == 0 {
		return nil
	}

	score := make([]float64, n)
	prev := make([]int, n)
	uf := newUnionFind(n)

	for i := 0; i < n; i++ {
		prev[i] = i
		best := c.params.AnchorScore
		bestPrev := i

		for j := i - 1; j >= 0; j-- {
			if anchors[i].RefPos-anchors[j].RefPos > uint32(c.params.BPChainBand) {
				break // valid only because anchors are sorted by ref_pos
			}
			s, ok := c.scoreAnchors(anchors[i], anchors[j])
			if !ok {
				continue
			}
			candidate := score[j] + s
			// j descends, so on equal scores the last writer is the
			// smallest j: ties go to the earliest predecessor.
			if candidate > best || (candidate == best && bestPrev != i) {
				best = candidate
				bestPrev = j
			}
		}

		score[i] = best
		prev[i] = bestPrev
		if bestPrev != i {
			uf.union(i, bestPrev)
		}
	}

	groups := make(map[int][]int)
	for i := 0; i < n; i++ {
		root := uf.find(i)
		groups[root] = append(groups[root], i)
	}

	var out []ChainInterval
	for _, members := range groups {
		if len(members) < minAnchors {
			continue
		}

		minRef, maxRef := anchors[members[0]].RefPos, anchors[members[0]].RefPos
		minQ, maxQ := anchors[members[0]].QueryPos, anchors[members[0]].QueryPos
		bestScore := math.Inf(-1)
		reverse := anchors[members[0]].ReverseMatch
		var queryContig, refContig uint32 = anchors[members[0]].QueryContig, anchors[members[0]].RefContig

		for _, idx := range members {
			a := anchors[idx]
			if a.RefPos < minRef {
				minRef = a.RefPos
			}
			if a.RefPos > maxRef {
				maxRef = a.RefPos
			}
			if a.QueryPos < minQ {
				minQ = a.QueryPos
			}
			if a.QueryPos > maxQ {
				maxQ = a.QueryPos
			}
			if score[idx] > bestScore {
				bestScore = score[idx]
			}
		}

		out = append(out, ChainInterval{
			Score:        bestScore,
			NumAnchors:   len(members),
			QueryStart:   minQ,
			QueryEnd:     maxQ + uint32(c.params.K),
			RefStart:     minRef,
			RefEnd:       maxRef + uint32(c.params.K),
			RefContig:    refContig,
			QueryContig:  queryContig,
			ReverseChain: reverse,
			ChunkID:      chunkID,
		})
	}
	return out
}

// scoreAnchors computes one predecessor candidate's score
// contribution, rejecting cross-strand, cross-contig, duplicate and
// over-gapped pairs.
func (c *Chainer) scoreAnchors(cur, prevAnchor Anchor) (float64, bool) {
	if cur.RefContig != prevAnchor.RefContig {
		return 0, false
	}
	if cur.ReverseMatch != prevAnchor.ReverseMatch {
		return 0, false
	}
	if cur.RefPos == prevAnchor.RefPos || cur.QueryPos == prevAnchor.QueryPos {
		return 0, false
	}

	dr := float64(cur.RefPos) - float64(prevAnchor.RefPos)
	if dr <= 0 {
		return 0, false
	}

	var dq float64
	if cur.ReverseMatch {
		dq = float64(prevAnchor.QueryPos) - float64(cur.QueryPos)
	} else {
		dq = float64(cur.QueryPos) - float64(prevAnchor.QueryPos)
	}
	if dq <= 0 {
		return 0, false
	}

	gap := math.Abs(dr - dq)
	if gap > c.params.MaxGapLength {
		return 0, false
	}

	return c.params.AnchorScore - gap, true
}
