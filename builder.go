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

// NamedSequence is one contig fed into BuildSketch: a name and its raw
// bytes. The caller (the FASTA/FASTQ decoding layer) is
// responsible for dropping contigs shorter than MinLengthContig before
// they reach here.
type NamedSequence struct {
	Name string
	Seq  []byte
}

// BuildSketch runs SeedExtractor over contigs and returns the resulting
// immutable Sketch, the glue between the per-contig rolling encoder
// (seed.go/seed_simd.go/orf.go) and the per-sequence payload (sketch.go).
// markerOnly builds the memory-efficient screening form with a nil
// FineSeeds map.
func BuildSketch(fileName string, params SketchParams, markerOnly bool, contigs []NamedSequence) *Sketch {
	extractor := NewSeedExtractor()
	b := newSketchBuilder(fileName, params, markerOnly)
	for _, c := range contigs {
		extractor.AddContig(b, c.Name, c.Seq)
	}
	return b.build()
}
