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

// simdSeedExtractor splits one contig's fine-position range into
// numLanes overlapping strides and rolls each stride through
// rollDNAWindow independently. Each lane carries kMarker-1 bytes of
// leading context so its register state at the first emitted position
// matches what a single whole-contig pass would have computed there;
// the lanes' emit windows are disjoint, so the union of what they emit
// is exactly what addContigDNA emits in one pass: the SIMD and scalar
// extractors must produce byte-identical sketches.
//
// This doesn't touch real vector registers: four independent strides
// of the same scalar rolling loop is what "4-lane" means here. See the
// NewSeedExtractor comment in seed.go.
type simdSeedExtractor struct{}

const simdLanes = 4

func (simdSeedExtractor) AddContig(b *sketchBuilder, name string, seq []byte) {
	kMarker := MarkerK(b.params.AminoAcid)
	k := b.params.K
	if b.params.AminoAcid {
		// ORFs are of widely varying length and already processed
		// independently of one another; splitting further buys
		// nothing, so the AA path is shared with the scalar extractor.
		addContigAA(b, name, seq, k, kMarker)
		return
	}
	addContigDNALanes(b, name, seq, k, kMarker)
}

func addContigDNALanes(b *sketchBuilder, name string, seq []byte, k, kMarker int) {
	length := len(seq)
	contigIdx := uint32(b.addContig(name, uint32(length)))

	if length < 2*kMarker {
		return
	}

	posMin := kMarker - k
	posMax := length - k + 1 // exclusive
	if posMax <= posMin {
		return
	}

	total := posMax - posMin
	lanes := simdLanes
	if total < lanes {
		lanes = 1
	}
	chunk := (total + lanes - 1) / lanes

	for lane := 0; lane < lanes; lane++ {
		a := posMin + lane*chunk
		if a >= posMax {
			break
		}
		bEnd := a + chunk
		if bEnd > posMax {
			bEnd = posMax
		}

		sliceStart := a + k - kMarker // >= 0 since a >= posMin = kMarker-k
		sliceEnd := bEnd + k - 1
		if sliceEnd > length {
			sliceEnd = length
		}

		rollDNAWindow(b, seq[sliceStart:sliceEnd], contigIdx, k, kMarker, a-sliceStart, bEnd-sliceStart, sliceStart)
	}
}
