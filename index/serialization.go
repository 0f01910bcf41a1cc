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

// Package index implements the on-disk consolidated reference database:
// one sketches.db holding every reference Sketch back to back, and one
// index.db catalog of where each one starts, so a run against a large
// reference collection only has to keep the catalog and the marker
// postings resident and can fault the rest in lazily.
package index

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"
	gzip "github.com/klauspost/pgzip"
	"gopkg.in/yaml.v2"

	"github.com/shenwei356/seedani"
)

// Magic identifies an index.db catalog file.
var Magic = [8]byte{'.', 's', 'e', 'e', 'd', 'i', 'd', 'x'}

// Version is the catalog format version.
const Version uint8 = 1

// ErrInvalidIndexFileFormat means the catalog's magic number didn't match.
var ErrInvalidIndexFileFormat = errors.New("seedani/index: invalid index format")

// ErrTruncatedIndexFile means fewer entries were readable than the
// header promised.
var ErrTruncatedIndexFile = errors.New("seedani/index: truncated index file")

var be = binary.BigEndian

// Entry locates one serialized Sketch record within sketches.db.
type Entry struct {
	FileName string
	Offset   int64
	Length   int64
}

// WriteCatalog writes entries to w as index.db: an 8-byte magic, a
// 1-byte version, a 4-byte count, then each entry as a length-prefixed
// name and two big-endian int64s.
func WriteCatalog(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)

	if err := binary.Write(bw, be, Magic); err != nil {
		return err
	}
	if err := bw.WriteByte(Version); err != nil {
		return err
	}
	if err := binary.Write(bw, be, uint32(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if err := binary.Write(bw, be, uint16(len(e.FileName))); err != nil {
			return err
		}
		if _, err := bw.WriteString(e.FileName); err != nil {
			return err
		}
		if err := binary.Write(bw, be, e.Offset); err != nil {
			return err
		}
		if err := binary.Write(bw, be, e.Length); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadCatalog reads an index.db written by WriteCatalog.
func ReadCatalog(r io.Reader) ([]Entry, error) {
	br := bufio.NewReader(r)

	var magic [8]byte
	if err := binary.Read(br, be, &magic); err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, ErrInvalidIndexFileFormat
	}
	version, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, ErrInvalidIndexFileFormat
	}

	var n uint32
	if err := binary.Read(br, be, &n); err != nil {
		return nil, err
	}

	entries := make([]Entry, n)
	for i := range entries {
		var nameLen uint16
		if err := binary.Read(br, be, &nameLen); err != nil {
			return nil, ErrTruncatedIndexFile
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(br, name); err != nil {
			return nil, ErrTruncatedIndexFile
		}
		var offset, length int64
		if err := binary.Read(br, be, &offset); err != nil {
			return nil, ErrTruncatedIndexFile
		}
		if err := binary.Read(br, be, &length); err != nil {
			return nil, ErrTruncatedIndexFile
		}
		entries[i] = Entry{FileName: string(name), Offset: offset, Length: length}
	}
	return entries, nil
}

// BuildSketchDB serializes sketches to w back to back (one
// seedani.WriteSketch record each) and returns the Entry catalog
// describing where each one landed, ready to be passed to
// WriteCatalog.
func BuildSketchDB(w io.Writer, sketches []*seedani.Sketch) ([]Entry, error) {
	cw := &countingWriter{w: w}
	entries := make([]Entry, 0, len(sketches))
	for _, s := range sketches {
		start := cw.n
		if err := seedani.WriteSketch(cw, s); err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			FileName: s.FileName,
			Offset:   start,
			Length:   cw.n - start,
		})
	}
	return entries, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Info is the human-editable sidecar manifest written next to
// sketches.db/index.db.
type Info struct {
	Version   string `yaml:"version"`
	C         int    `yaml:"c"`
	K         int    `yaml:"k"`
	MarkerC   int    `yaml:"marker-c"`
	AminoAcid bool   `yaml:"amino-acid"`
	NumRefs   int    `yaml:"num-refs"`
}

// InfoFileName is the sidecar manifest's fixed name within a database directory.
const InfoFileName = "_db.yml"

// InfoFromFile reads and parses the sidecar manifest at path.
func InfoFromFile(path string) (Info, error) {
	var info Info
	data, err := os.ReadFile(path)
	if err != nil {
		return info, err
	}
	err = yaml.Unmarshal(data, &info)
	return info, err
}

// WriteTo serializes info as yaml to w.
func (info Info) WriteTo(w io.Writer) error {
	data, err := yaml.Marshal(info)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// MmapSource is a seedani.SketchSource backed by a memory-mapped
// sketches.db plus its index.db catalog: references are decoded lazily,
// on first touch, straight out of the mapped pages instead of being
// decoded up front.
type MmapSource struct {
	data    mmap.MMap
	entries []Entry
}

// OpenMmapSource maps sketchesPath and reads its catalog from
// indexPath.
func OpenMmapSource(sketchesPath, indexPath string) (*MmapSource, error) {
	idxFile, err := os.Open(indexPath)
	if err != nil {
		return nil, err
	}
	defer idxFile.Close()
	entries, err := ReadCatalog(idxFile)
	if err != nil {
		return nil, err
	}

	fh, err := os.Open(sketchesPath)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	data, err := mmap.Map(fh, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}

	return &MmapSource{data: data, entries: entries}, nil
}

// Close unmaps the underlying sketches.db.
func (s *MmapSource) Close() error {
	return s.data.Unmap()
}

// Load implements seedani.SketchSource by slicing the id'th record
// straight out of the memory-mapped file and decoding it.
func (s *MmapSource) Load(id int) (*seedani.Sketch, error) {
	if id < 0 || id >= len(s.entries) {
		return nil, ErrTruncatedIndexFile
	}
	e := s.entries[id]
	region := s.data[e.Offset : e.Offset+e.Length]
	return seedani.ReadSketch(&bytesReader{region, 0})
}

// Entries exposes the loaded catalog, e.g. so a caller can build the
// RefSketch slice a MarkerIndex is constructed from.
func (s *MmapSource) Entries() []Entry { return s.entries }

// bytesReader is a tiny io.Reader over a byte slice, avoiding a
// bytes.Reader allocation's extra bookkeeping for the common case of a
// single sequential decode.
type bytesReader struct {
	b   []byte
	pos int
}

func (r *bytesReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.pos:])
	r.pos += n
	return n, nil
}

// Legacy per-sketch file extensions, predating the consolidated
// sketches.db/index.db database. Both file kinds are written and read
// through pgzip.
const (
	LegacySketchExt = ".sketch"
	LegacyMarkerExt = ".marker"
)

// WriteLegacySketchFile writes s's full record (fine seeds included)
// to dir/<base>.sketch, gzip-compressed.
func WriteLegacySketchFile(dir, base string, s *seedani.Sketch) error {
	return writeLegacyFile(filepath.Join(dir, base+LegacySketchExt), s)
}

// WriteLegacyMarkerFile writes a marker-only projection of s (a nil
// FineSeeds map, matching the data model's memory-efficient screening
// form) to dir/<base>.marker, gzip-compressed.
func WriteLegacyMarkerFile(dir, base string, s *seedani.Sketch) error {
	markerOnly := *s
	markerOnly.FineSeeds = nil
	return writeLegacyFile(filepath.Join(dir, base+LegacyMarkerExt), &markerOnly)
}

func writeLegacyFile(path string, s *seedani.Sketch) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(fh)
	if err := seedani.WriteSketch(gw, s); err != nil {
		gw.Close()
		fh.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

// ReadLegacySketchFile reads a .sketch file written by
// WriteLegacySketchFile.
func ReadLegacySketchFile(path string) (*seedani.Sketch, error) {
	return readLegacyFile(path)
}

// ReadLegacyMarkerFile reads a .marker file written by
// WriteLegacyMarkerFile; the returned Sketch's FineSeeds is nil.
func ReadLegacyMarkerFile(path string) (*seedani.Sketch, error) {
	return readLegacyFile(path)
}

func readLegacyFile(path string) (*seedani.Sketch, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	gr, err := gzip.NewReader(fh)
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	return seedani.ReadSketch(gr)
}
