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

package index

import (
	"bytes"
	"os"
	"testing"

	"github.com/shenwei356/seedani"
)

func buildTestSketches() []*seedani.Sketch {
	var out []*seedani.Sketch
	for i, name := range []string{"a.fna", "b.fna", "c.fna"} {
		s := seedani.BuildSketch(name, seedani.DefaultDNAParams(), false, []seedani.NamedSequence{
			{Name: "contig1", Seq: bytes.Repeat([]byte("ACGTACGTAC"), 80+i*10)},
		})
		out = append(out, s)
	}
	return out
}

func TestBuildSketchDBAndCatalogRoundTrip(t *testing.T) {
	sketches := buildTestSketches()

	var sketchesBuf bytes.Buffer
	entries, err := BuildSketchDB(&sketchesBuf, sketches)
	if err != nil {
		t.Fatalf("BuildSketchDB: %v", err)
	}
	if len(entries) != len(sketches) {
		t.Fatalf("got %d entries, want %d", len(entries), len(sketches))
	}

	var catalogBuf bytes.Buffer
	if err := WriteCatalog(&catalogBuf, entries); err != nil {
		t.Fatalf("WriteCatalog: %v", err)
	}

	gotEntries, err := ReadCatalog(&catalogBuf)
	if err != nil {
		t.Fatalf("ReadCatalog: %v", err)
	}
	if len(gotEntries) != len(entries) {
		t.Fatalf("got %d entries back, want %d", len(gotEntries), len(entries))
	}

	sketchesBytes := sketchesBuf.Bytes()
	for i, e := range gotEntries {
		if e.FileName != sketches[i].FileName {
			t.Errorf("entry %d FileName = %q, want %q", i, e.FileName, sketches[i].FileName)
		}
		region := sketchesBytes[e.Offset : e.Offset+e.Length]
		got, err := seedani.ReadSketch(bytes.NewReader(region))
		if err != nil {
			t.Fatalf("ReadSketch(entry %d): %v", i, err)
		}
		if got.FileName != sketches[i].FileName {
			t.Errorf("decoded sketch %d FileName = %q, want %q", i, got.FileName, sketches[i].FileName)
		}
		if got.TotalSequenceLength != sketches[i].TotalSequenceLength {
			t.Errorf("decoded sketch %d TotalSequenceLength = %d, want %d",
				i, got.TotalSequenceLength, sketches[i].TotalSequenceLength)
		}
	}
}

func TestReadCatalogRejectsBadMagic(t *testing.T) {
	_, err := ReadCatalog(bytes.NewReader([]byte("not a catalog file......")))
	if err != ErrInvalidIndexFileFormat {
		t.Fatalf("got err=%v, want ErrInvalidIndexFileFormat", err)
	}
}

func TestLegacySketchFileRoundTrip(t *testing.T) {
	sketches := buildTestSketches()
	dir := t.TempDir()

	for _, s := range sketches {
		base := s.FileName
		if err := WriteLegacySketchFile(dir, base, s); err != nil {
			t.Fatalf("WriteLegacySketchFile(%s): %v", base, err)
		}
		if err := WriteLegacyMarkerFile(dir, base, s); err != nil {
			t.Fatalf("WriteLegacyMarkerFile(%s): %v", base, err)
		}

		got, err := ReadLegacySketchFile(dir + "/" + base + LegacySketchExt)
		if err != nil {
			t.Fatalf("ReadLegacySketchFile(%s): %v", base, err)
		}
		if got.FileName != s.FileName {
			t.Errorf("ReadLegacySketchFile(%s).FileName = %q, want %q", base, got.FileName, s.FileName)
		}
		if got.NumFineSeeds() != s.NumFineSeeds() {
			t.Errorf("ReadLegacySketchFile(%s).NumFineSeeds() = %d, want %d", base, got.NumFineSeeds(), s.NumFineSeeds())
		}

		marker, err := ReadLegacyMarkerFile(dir + "/" + base + LegacyMarkerExt)
		if err != nil {
			t.Fatalf("ReadLegacyMarkerFile(%s): %v", base, err)
		}
		if marker.FileName != s.FileName {
			t.Errorf("ReadLegacyMarkerFile(%s).FileName = %q, want %q", base, marker.FileName, s.FileName)
		}
		if marker.NumFineSeeds() != 0 {
			t.Errorf("ReadLegacyMarkerFile(%s).NumFineSeeds() = %d, want 0 (marker-only projection)", base, marker.NumFineSeeds())
		}
	}
}

func TestInfoYAMLRoundTrip(t *testing.T) {
	info := Info{Version: "0.1.0", C: 125, K: 15, MarkerC: 1000, AminoAcid: false, NumRefs: 3}

	var buf bytes.Buffer
	if err := info.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	path := t.TempDir() + "/_db.yml"
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}

	got, err := InfoFromFile(path)
	if err != nil {
		t.Fatalf("InfoFromFile: %v", err)
	}
	if got != info {
		t.Errorf("InfoFromFile = %+v, want %+v", got, info)
	}
}
