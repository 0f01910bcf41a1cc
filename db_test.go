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
	"bytes"
	"testing"
)

func buildCodecTestSketch(markerOnly bool) *Sketch {
	b := newSketchBuilder("genome.fna", DefaultDNAParams(), markerOnly)
	idx := b.addContig("chr1", 1000)
	b.addFineSeed(123, SeedPosition{Pos: 10, Canonical: true, ContigIndex: uint32(idx), Phase: 0})
	b.addFineSeed(123, SeedPosition{Pos: 400, Canonical: false, ContigIndex: uint32(idx), Phase: 1})
	b.addFineSeed(999999999999, SeedPosition{Pos: 50, Canonical: true, ContigIndex: uint32(idx), Phase: 2})
	b.addMarkerSeed(123)
	b.addMarkerSeed(999999999999)
	return b.build()
}

func TestWriteReadSketchRoundTrip(t *testing.T) {
	for _, markerOnly := range []bool{false, true} {
		s := buildCodecTestSketch(markerOnly)

		var buf bytes.Buffer
		if err := WriteSketch(&buf, s); err != nil {
			t.Fatalf("WriteSketch: %v", err)
		}

		got, err := ReadSketch(&buf)
		if err != nil {
			t.Fatalf("ReadSketch: %v", err)
		}

		if got.FileName != s.FileName {
			t.Errorf("FileName = %q, want %q", got.FileName, s.FileName)
		}
		if got.Params != s.Params {
			t.Errorf("Params = %+v, want %+v", got.Params, s.Params)
		}
		if got.TotalSequenceLength != s.TotalSequenceLength {
			t.Errorf("TotalSequenceLength = %d, want %d", got.TotalSequenceLength, s.TotalSequenceLength)
		}
		if len(got.Contigs) != len(s.Contigs) || got.Contigs[0] != s.Contigs[0] {
			t.Errorf("Contigs = %v, want %v", got.Contigs, s.Contigs)
		}
		if len(got.MarkerSeeds) != len(s.MarkerSeeds) {
			t.Errorf("MarkerSeeds len = %d, want %d", len(got.MarkerSeeds), len(s.MarkerSeeds))
		}
		for k := range s.MarkerSeeds {
			if _, ok := got.MarkerSeeds[k]; !ok {
				t.Errorf("missing marker seed %d", k)
			}
		}

		if markerOnly {
			if got.FineSeeds != nil {
				t.Errorf("FineSeeds should be nil for marker-only sketch, got %v", got.FineSeeds)
			}
			continue
		}

		if len(got.FineSeeds) != len(s.FineSeeds) {
			t.Fatalf("FineSeeds bag count = %d, want %d", len(got.FineSeeds), len(s.FineSeeds))
		}
		for kmer, positions := range s.FineSeeds {
			gotPositions, ok := got.FineSeeds[kmer]
			if !ok {
				t.Fatalf("missing fine seed bag for kmer %d", kmer)
			}
			if len(gotPositions) != len(positions) {
				t.Fatalf("bag for kmer %d has %d positions, want %d", kmer, len(gotPositions), len(positions))
			}
			for i, p := range positions {
				if gotPositions[i] != p {
					t.Errorf("kmer %d position %d = %+v, want %+v", kmer, i, gotPositions[i], p)
				}
			}
		}
	}
}

func TestReadSketchRejectsBadMagic(t *testing.T) {
	_, err := ReadSketch(bytes.NewReader([]byte("not a sketch record")))
	if err == nil {
		t.Fatal("expected an error for bad magic")
	}
}
