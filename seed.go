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

import "github.com/klauspost/cpuid"

// SeedExtractor builds a Sketch from raw sequence data. Two
// implementations exist (scalar and 4-lane); both must produce
// byte-identical sketches up to seed insertion order.
// NewSeedExtractor picks one based on a runtime CPU-feature probe.
type SeedExtractor interface {
	// AddContig feeds one contig's sequence into the builder under
	// construction. Contigs shorter than MinLengthContig must be
	// filtered by the caller before this is invoked.
	AddContig(b *sketchBuilder, name string, seq []byte)
}

// NewSeedExtractor returns the fastest SeedExtractor implementation
// the current CPU supports. Both implementations are pure Go (no
// cgo/assembly): the 4-lane variant only restructures the rolling
// loop into four interleaved strides, it doesn't touch actual SIMD
// registers, so the "CPU feature probe" here gates a software
// pipelining strategy rather than real vector instructions.
func NewSeedExtractor() SeedExtractor {
	if cpuid.CPU.AVX2() {
		return simdSeedExtractor{}
	}
	return scalarSeedExtractor{}
}

type scalarSeedExtractor struct{}

// AddContig implements a rolling two-register encoder: two 64-bit
// registers roll forward (f) and reverse-complement (r)
// encodings of a window of length k_marker; at each window position
// the canonical fine k-mer (low 2k bits) is hashed, and inserted into
// fine_seeds/marker_seeds if the hash is below the respective
// FracMinHash threshold.
func (scalarSeedExtractor) AddContig(b *sketchBuilder, name string, seq []byte) {
	kMarker := MarkerK(b.params.AminoAcid)
	k := b.params.K
	if b.params.AminoAcid {
		addContigAA(b, name, seq, k, kMarker)
		return
	}
	addContigDNA(b, name, seq, k, kMarker)
}

func addContigDNA(b *sketchBuilder, name string, seq []byte, k, kMarker int) {
	length := len(seq)
	contigIdx := uint32(b.addContig(name, uint32(length)))

	if length < 2*kMarker {
		return
	}
	rollDNAWindow(b, seq, contigIdx, k, kMarker, 0, length, 0)
}

// rollDNAWindow runs the forward/reverse rolling encoder over all of
// seq, but only emits seeds whose window start position
// (i-k+1) falls within [emitFrom, emitTo). This split exists so the
// 4-lane extractor in seed_simd.go can process overlapping chunks of
// one contig independently and still emit each seed exactly once,
// while producing bit-identical results to a single whole-contig pass.
// posOffset is added back onto every emitted SeedPosition.Pos so a
// lane processing a sub-slice of the contig still reports genomic
// offsets relative to the whole contig, not the sub-slice.
func rollDNAWindow(b *sketchBuilder, seq []byte, contigIdx uint32, k, kMarker int, emitFrom, emitTo, posOffset int) {
	length := len(seq)
	if length < kMarker {
		return
	}

	tC := fracMinThreshold(b.params.C)
	tM := fracMinThreshold(b.params.MarkerC)

	maskMarker := uint64(1)<<(2*uint(kMarker)) - 1
	maskFine := uint64(1)<<(2*uint(k)) - 1
	revShift := uint(2 * (kMarker - 1))

	var f, r uint64
	for i := 0; i < length; i++ {
		n := base2bit[seq[i]]
		f = ((f << 2) | uint64(n)) & maskMarker
		r = (r >> 2) | (uint64(3-n) << revShift)
		r &= maskMarker

		if i < kMarker-1 {
			continue
		}

		pos := i - k + 1
		if pos < emitFrom || pos >= emitTo {
			continue
		}

		// Fine k-mer: low 2k bits of each register.
		fineF := f & maskFine
		fineR := r & maskFine

		forwardWon := fineF <= fineR
		canonicalFine := fineF
		if !forwardWon {
			canonicalFine = fineR
		}

		h := mixHash64(canonicalFine)

		if h < tC {
			b.addFineSeed(canonicalFine, SeedPosition{
				Pos:         uint32(pos + posOffset),
				Canonical:   forwardWon,
				ContigIndex: contigIdx,
				Phase:       0,
			})
		}
		if h < tM {
			markerForwardWon := f <= r
			canonicalMarker := f
			if !markerForwardWon {
				canonicalMarker = r
			}
			b.addMarkerSeed(canonicalMarker)
		}
	}
}

func addContigAA(b *sketchBuilder, name string, seq []byte, k, kMarker int) {
	length := len(seq)
	contigIdx := uint32(b.addContig(name, uint32(length)))

	tC := fracMinThreshold(b.params.C)
	tM := fracMinThreshold(b.params.MarkerC)

	for _, orf := range FindORFs(seq) {
		residues := orf.Residues
		if len(residues) < kMarker {
			continue
		}
		var window uint64
		maskMarker := uint64(1)<<(6*uint(kMarker)) - 1
		maskFine := uint64(1)<<(6*uint(k)) - 1

		for i, aa := range residues {
			window = ((window << 6) | uint64(aa)) & maskMarker
			if i < kMarker-1 {
				continue
			}
			fine := window & maskFine
			h := mixHash64(fine)
			pos := uint32(orf.Start + (i-k+1)*3)

			if h < tC {
				b.addFineSeed(fine, SeedPosition{
					Pos:         pos,
					Canonical:   true,
					ContigIndex: contigIdx,
					Phase:       uint8(orf.Frame),
				})
			}
			if h < tM {
				b.addMarkerSeed(window)
			}
		}
	}
}
