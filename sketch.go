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

// SeedPosition locates one occurrence of a seed k-mer within a Sketch.
type SeedPosition struct {
	Pos         uint32
	Canonical   bool
	ContigIndex uint32
	Phase       uint8
}

// Sketch is the immutable per-sequence seed payload produced by
// SeedExtractor. It is never mutated after sketchBuilder.build returns.
type Sketch struct {
	FileName            string
	Contigs             []string
	ContigLengths       []uint32
	TotalSequenceLength uint64

	// FineSeeds is nil for marker-only sketches (the memory-efficient
	// screening form described in the data model).
	FineSeeds   map[uint64][]SeedPosition
	MarkerSeeds map[uint64]struct{}

	Params SketchParams

	ContigOrder int
}

// C, K, MarkerC and AminoAcid forward to the Params field for
// callers that would otherwise reach through sketch.Params.X.
func (s *Sketch) C() int          { return s.Params.C }
func (s *Sketch) K() int          { return s.Params.K }
func (s *Sketch) MarkerC() int    { return s.Params.MarkerC }
func (s *Sketch) AminoAcid() bool { return s.Params.AminoAcid }

// NumFineSeeds returns the total number of fine-seed occurrences
// (summed across the bags).
func (s *Sketch) NumFineSeeds() int {
	n := 0
	for _, bag := range s.FineSeeds {
		n += len(bag)
	}
	return n
}

// sketchBuilder accumulates seeds while a sequence is being processed
// and produces an immutable Sketch. Callers use SeedExtractor, which
// owns one builder per sequence.
type sketchBuilder struct {
	fileName    string
	params      SketchParams
	contigs     []string
	lengths     []uint32
	totalLength uint64
	fine        map[uint64][]SeedPosition
	marker      map[uint64]struct{}
	markerOnly  bool
}

func newSketchBuilder(fileName string, params SketchParams, markerOnly bool) *sketchBuilder {
	b := &sketchBuilder{
		fileName:   fileName,
		params:     params,
		marker:     make(map[uint64]struct{}),
		markerOnly: markerOnly,
	}
	if !markerOnly {
		b.fine = make(map[uint64][]SeedPosition)
	}
	return b
}

func (b *sketchBuilder) addContig(name string, length uint32) int {
	b.contigs = append(b.contigs, name)
	b.lengths = append(b.lengths, length)
	b.totalLength += uint64(length)
	return len(b.contigs) - 1
}

func (b *sketchBuilder) addFineSeed(kmer uint64, pos SeedPosition) {
	if b.markerOnly {
		return
	}
	b.fine[kmer] = append(b.fine[kmer], pos)
}

func (b *sketchBuilder) addMarkerSeed(kmer uint64) {
	b.marker[kmer] = struct{}{}
}

func (b *sketchBuilder) build() *Sketch {
	return &Sketch{
		FileName:            b.fileName,
		Contigs:             b.contigs,
		ContigLengths:       b.lengths,
		TotalSequenceLength: b.totalLength,
		FineSeeds:           b.fine,
		MarkerSeeds:         b.marker,
		Params:              b.params,
	}
}

// mergeSketchParams reconciles query and reference SketchParams the
// way the SketchMismatch error kind prescribes: if they
// differ, the reference's parameters are adopted and a non-fatal
// mismatch error is returned for the caller to log; if they describe
// genuinely incompatible alphabets, the mismatch is fatal.
func mergeSketchParams(query, ref SketchParams) (SketchParams, error) {
	if query == ref {
		return ref, nil
	}
	if query.AminoAcid != ref.AminoAcid {
		return ref, ErrSketchMismatch(true, "query amino_acid=%v but reference amino_acid=%v", query.AminoAcid, ref.AminoAcid)
	}
	return ref, ErrSketchMismatch(false, "sketch parameters differ (query c=%d k=%d marker_c=%d, ref c=%d k=%d marker_c=%d); adopting reference parameters",
		query.C, query.K, query.MarkerC, ref.C, ref.K, ref.MarkerC)
}

// sortedFineKeys returns the fine-seed keys of s in ascending order,
// used where deterministic iteration matters (the sketch serializer in
// db.go).
func sortedFineKeys(s *Sketch) []uint64 {
	keys := make([]uint64, 0, len(s.FineSeeds))
	for k := range s.FineSeeds {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
