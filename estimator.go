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
	"math/rand"
	"sort"
)

// SummaryFlavor selects how chain identities are aggregated into one
// AniEstResult.
type SummaryFlavor int

const (
	SummaryMean SummaryFlavor = iota
	SummaryMedian
	SummaryRobustMean
)

// AniEstResult is the final, immutable output of one pair comparison.
type AniEstResult struct {
	ANI                float64
	AlignFractionQuery float64
	AlignFractionRef   float64
	RefFile            string
	QueryFile          string
	RefContig          string
	QueryContig        string
	CILower            float64
	CIUpper            float64
	Std                float64
	NumContigsR        int
	NumContigsQ        int
	Q10R, Q50R, Q90R   float64
	Q10Q, Q50Q, Q90Q   float64
	AvgChainIntLen     float64
	TotalBasesCovered  uint64
	AAI                bool
}

// EstimatorConfig configures one Estimate call.
type EstimatorConfig struct {
	Flavor         SummaryFlavor
	Bootstrap      bool
	Resamples      int
	Rand           *rand.Rand
	MinAlignedFrac float64
}

type chainIdentity struct {
	identity float64
	weight   float64
}

// Estimate converts admitted chains into an AniEstResult.
// Returns (result, ok) where ok is false when the min-aligned-fraction
// gate rejects the pair — not an error, a "no result" outcome.
func Estimate(query, ref *Sketch, chains []ChainInterval, cfg EstimatorConfig) (AniEstResult, bool) {
	if cfg.Resamples == 0 {
		cfg.Resamples = BootstrapResamples
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(1))
	}

	k := query.Params.K
	c := query.Params.C

	var refCovered, queryCovered uint64
	var totalBases uint64
	identities := make([]chainIdentity, 0, len(chains))

	var primaryChain *ChainInterval
	for i := range chains {
		if primaryChain == nil || chains[i].Score > primaryChain.Score {
			primaryChain = &chains[i]
		}
	}

	for _, ch := range chains {
		refRange := uint64(ch.RefEnd - ch.RefStart)
		queryRange := uint64(ch.QueryEnd - ch.QueryStart)
		refCovered += refRange
		queryCovered += queryRange

		effLen := refRange
		if queryRange > effLen {
			effLen = queryRange
		}
		totalBases += effLen

		if effLen == 0 {
			continue
		}
		// Raw identity: the FracMinHash unbiased containment-to-
		// identity conversion, using the longer of the two chain spans.
		// Subsampling noise can push the containment ratio above 1 on
		// near-identical chains; identity is capped at 1 so no pair is
		// ever reported above 100%.
		id := math.Pow(float64(ch.NumAnchors)*float64(c)/float64(effLen), 1.0/float64(k))
		if id > 1 {
			id = 1
		}
		identities = append(identities, chainIdentity{identity: id, weight: float64(effLen)})
	}

	afRef := float64(refCovered) / float64(maxU64(ref.TotalSequenceLength, 1))
	afQuery := float64(queryCovered) / float64(maxU64(query.TotalSequenceLength, 1))

	minAF := cfg.MinAlignedFrac
	if minAF == 0 {
		minAF = MinAlignedFrac(query.Params.AminoAcid)
	}
	if math.Max(afQuery, afRef) < minAF {
		return AniEstResult{}, false
	}

	ani := summarize(identities, cfg.Flavor)

	result := AniEstResult{
		ANI:                ani,
		AlignFractionQuery: afQuery,
		AlignFractionRef:   afRef,
		RefFile:            ref.FileName,
		QueryFile:          query.FileName,
		NumContigsR:        len(ref.Contigs),
		NumContigsQ:        len(query.Contigs),
		TotalBasesCovered:  totalBases,
		AAI:                query.Params.AminoAcid,
	}
	if primaryChain != nil {
		if int(primaryChain.RefContig) < len(ref.Contigs) {
			result.RefContig = ref.Contigs[primaryChain.RefContig]
		}
		if int(primaryChain.QueryContig) < len(query.Contigs) {
			result.QueryContig = query.Contigs[primaryChain.QueryContig]
		}
	}
	if len(chains) > 0 {
		result.AvgChainIntLen = float64(totalBases) / float64(len(chains))
	}

	result.Q10R, result.Q50R, result.Q90R = lengthQuantiles(ref.ContigLengths)
	result.Q10Q, result.Q50Q, result.Q90Q = lengthQuantiles(query.ContigLengths)

	if len(identities) > 1 {
		result.Std = weightedStdDev(identities)
	}

	if cfg.Bootstrap && len(identities) > 0 {
		result.CILower, result.CIUpper = bootstrapCI(identities, cfg.Flavor, cfg.Resamples, cfg.Rand)
	}

	return result, true
}

func summarize(ids []chainIdentity, flavor SummaryFlavor) float64 {
	if len(ids) == 0 {
		return 0
	}
	switch flavor {
	case SummaryMedian:
		return weightedMedian(ids)
	case SummaryRobustMean:
		return robustMean(ids)
	default:
		return weightedMean(ids)
	}
}

func weightedMean(ids []chainIdentity) float64 {
	var sumW, sumWI float64
	for _, c := range ids {
		sumW += c.weight
		sumWI += c.weight * c.identity
	}
	if sumW == 0 {
		return 0
	}
	return sumWI / sumW
}

func weightedMedian(ids []chainIdentity) float64 {
	sorted := append([]chainIdentity{}, ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].identity < sorted[j].identity })

	var total float64
	for _, c := range sorted {
		total += c.weight
	}
	target := total / 2
	var cum float64
	for _, c := range sorted {
		cum += c.weight
		if cum >= target {
			return c.identity
		}
	}
	return sorted[len(sorted)-1].identity
}

// robustMean drops the top and bottom 10% of chains by identity, then
// takes the (weighted) mean of the rest.
func robustMean(ids []chainIdentity) float64 {
	sorted := append([]chainIdentity{}, ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].identity < sorted[j].identity })

	n := len(sorted)
	trim := n / 10
	trimmed := sorted[trim : n-trim]
	if len(trimmed) == 0 {
		trimmed = sorted
	}
	return weightedMean(trimmed)
}

func weightedStdDev(ids []chainIdentity) float64 {
	mean := weightedMean(ids)
	var sumW, sumWSq float64
	for _, c := range ids {
		sumW += c.weight
		sumWSq += c.weight * (c.identity - mean) * (c.identity - mean)
	}
	if sumW == 0 {
		return 0
	}
	return math.Sqrt(sumWSq / sumW)
}

// bootstrapCI is a non-parametric percentile bootstrap: resample
// chains with replacement `resamples` times, recompute the summary
// identity each time, report the 5th/95th percentiles.
func bootstrapCI(ids []chainIdentity, flavor SummaryFlavor, resamples int, rng *rand.Rand) (lo, hi float64) {
	n := len(ids)
	samples := make([]float64, resamples)
	resample := make([]chainIdentity, n)
	for r := 0; r < resamples; r++ {
		for i := 0; i < n; i++ {
			resample[i] = ids[rng.Intn(n)]
		}
		samples[r] = summarize(resample, flavor)
	}
	sort.Float64s(samples)
	lo = percentile(samples, 0.05)
	hi = percentile(samples, 0.95)
	return lo, hi
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

func lengthQuantiles(lengths []uint32) (q10, q50, q90 float64) {
	if len(lengths) == 0 {
		return 0, 0, 0
	}
	sorted := append([]uint32{}, lengths...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	q10 = float64(sorted[int(0.10*float64(len(sorted)-1))])
	q50 = float64(sorted[int(0.50*float64(len(sorted)-1))])
	q90 = float64(sorted[int(0.90*float64(len(sorted)-1))])
	return q10, q50, q90
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
