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

package cmd

import (
	"io"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"

	"github.com/shenwei356/seedani"
)

// sketchFile reads every contig of a FASTA/FASTQ file (gzip-transparent
// via fastx.NewDefaultReader) and builds its Sketch. Contigs shorter
// than seedani.MinLengthContig are dropped; everything else is kept
// verbatim, duplicates included, so the sketch's total sequence length
// matches the input exactly.
func sketchFile(file string, params seedani.SketchParams, markerOnly bool) (*seedani.Sketch, error) {
	seq.ValidateSeq = false

	fastxReader, err := fastx.NewDefaultReader(file)
	if err != nil {
		return nil, err
	}

	var contigs []seedani.NamedSequence
	for {
		record, err := fastxReader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if len(record.Seq.Seq) < seedani.MinLengthContig {
			continue
		}

		name := string(record.ID)
		contigSeq := make([]byte, len(record.Seq.Seq))
		copy(contigSeq, record.Seq.Seq)
		contigs = append(contigs, seedani.NamedSequence{Name: name, Seq: contigSeq})
	}

	return seedani.BuildSketch(file, params, markerOnly, contigs), nil
}
