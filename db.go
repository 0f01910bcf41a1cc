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
	"bufio"
	"encoding/binary"
	"io"
	"sort"

	"github.com/pkg/errors"
)

// dbMagic identifies a single serialized Sketch record.
var dbMagic = [8]byte{'.', 's', 'e', 'e', 'd', 'a', 'n', 'i'}

const dbVersion uint8 = 1

// WriteSketch serializes s to w in the engine's native record format:
// a small fixed header, the contig table, the marker-seed set, and
// (when present) the fine-seed bag. Kmer/count and position/contig
// pairs are packed with PutUint64s (varint-GB.go) rather than fixed
// 8-byte slots, since most bags are small.
func WriteSketch(w io.Writer, s *Sketch) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.Write(dbMagic[:]); err != nil {
		return errors.Wrap(err, "write magic")
	}
	if err := bw.WriteByte(dbVersion); err != nil {
		return errors.Wrap(err, "write version")
	}

	if err := writeString(bw, s.FileName); err != nil {
		return errors.Wrap(err, "write file name")
	}

	if err := binary.Write(bw, binary.LittleEndian, int32(s.Params.C)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(s.Params.K)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(s.Params.MarkerC)); err != nil {
		return err
	}
	// use_syncs is reserved for a syncmer-based sketch variant; always
	// zero in this format version.
	if err := bw.WriteByte(0); err != nil {
		return err
	}
	if err := bw.WriteByte(boolByte(s.Params.AminoAcid)); err != nil {
		return err
	}
	// The translation table and minimum ORF size travel with the record
	// so an amino-acid sketch is self-describing.
	if _, err := bw.Write(codonTable[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(MinOrfCodons)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(s.ContigOrder)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, s.TotalSequenceLength); err != nil {
		return err
	}

	if err := writeUvarint(bw, uint64(len(s.Contigs))); err != nil {
		return errors.Wrap(err, "write contig count")
	}
	for i, name := range s.Contigs {
		if err := writeString(bw, name); err != nil {
			return errors.Wrap(err, "write contig name")
		}
		if err := binary.Write(bw, binary.LittleEndian, s.ContigLengths[i]); err != nil {
			return errors.Wrap(err, "write contig length")
		}
	}

	if err := writeUvarint(bw, uint64(len(s.MarkerSeeds))); err != nil {
		return errors.Wrap(err, "write marker count")
	}
	for _, keys := range [][]uint64{sortedMarkerKeys(s)} {
		for _, k := range keys {
			if err := binary.Write(bw, binary.LittleEndian, k); err != nil {
				return errors.Wrap(err, "write marker kmer")
			}
		}
	}

	hasFine := s.FineSeeds != nil
	if err := bw.WriteByte(boolByte(hasFine)); err != nil {
		return err
	}
	if hasFine {
		keys := sortedFineKeys(s)
		if err := writeUvarint(bw, uint64(len(keys))); err != nil {
			return errors.Wrap(err, "write fine bag count")
		}
		buf := make([]byte, 16)
		for _, kmer := range keys {
			positions := s.FineSeeds[kmer]
			ctrl, n := PutUint64s(buf, kmer, uint64(len(positions)))
			if err := bw.WriteByte(ctrl); err != nil {
				return err
			}
			if _, err := bw.Write(buf[:n]); err != nil {
				return err
			}
			for _, p := range positions {
				v2 := uint64(p.ContigIndex)<<9 | uint64(p.Phase)<<1 | uint64(boolByte(p.Canonical))
				ctrl, n = PutUint64s(buf, uint64(p.Pos), v2)
				if err := bw.WriteByte(ctrl); err != nil {
					return err
				}
				if _, err := bw.Write(buf[:n]); err != nil {
					return err
				}
			}
		}
	}

	return bw.Flush()
}

// ReadSketch deserializes one record written by WriteSketch.
func ReadSketch(r io.Reader) (*Sketch, error) {
	br := bufio.NewReader(r)

	var magic [8]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, errors.Wrap(err, "read magic")
	}
	if magic != dbMagic {
		return nil, ErrInput("not a sketch record (bad magic)")
	}
	version, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != dbVersion {
		return nil, ErrInput("unsupported sketch record version %d", version)
	}

	fileName, err := readString(br)
	if err != nil {
		return nil, errors.Wrap(err, "read file name")
	}

	var c, k, markerC int32
	if err := binary.Read(br, binary.LittleEndian, &c); err != nil {
		return nil, err
	}
	if err := binary.Read(br, binary.LittleEndian, &k); err != nil {
		return nil, err
	}
	if err := binary.Read(br, binary.LittleEndian, &markerC); err != nil {
		return nil, err
	}
	if _, err := br.ReadByte(); err != nil { // use_syncs, reserved
		return nil, err
	}
	aaByte, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	var orfTable [64]byte
	if _, err := io.ReadFull(br, orfTable[:]); err != nil {
		return nil, errors.Wrap(err, "read orf table")
	}
	var orfSize int32
	if err := binary.Read(br, binary.LittleEndian, &orfSize); err != nil {
		return nil, errors.Wrap(err, "read orf size")
	}
	if aaByte != 0 && orfTable != codonTable {
		return nil, ErrInput("sketch record carries an incompatible translation table")
	}
	var contigOrder int32
	if err := binary.Read(br, binary.LittleEndian, &contigOrder); err != nil {
		return nil, err
	}
	var totalLen uint64
	if err := binary.Read(br, binary.LittleEndian, &totalLen); err != nil {
		return nil, err
	}

	numContigs, err := readUvarint(br)
	if err != nil {
		return nil, errors.Wrap(err, "read contig count")
	}
	contigs := make([]string, numContigs)
	lengths := make([]uint32, numContigs)
	for i := range contigs {
		name, err := readString(br)
		if err != nil {
			return nil, errors.Wrap(err, "read contig name")
		}
		var l uint32
		if err := binary.Read(br, binary.LittleEndian, &l); err != nil {
			return nil, errors.Wrap(err, "read contig length")
		}
		contigs[i] = name
		lengths[i] = l
	}

	numMarkers, err := readUvarint(br)
	if err != nil {
		return nil, errors.Wrap(err, "read marker count")
	}
	markers := make(map[uint64]struct{}, numMarkers)
	for i := uint64(0); i < numMarkers; i++ {
		var kmer uint64
		if err := binary.Read(br, binary.LittleEndian, &kmer); err != nil {
			return nil, errors.Wrap(err, "read marker kmer")
		}
		markers[kmer] = struct{}{}
	}

	hasFineByte, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	var fine map[uint64][]SeedPosition
	if hasFineByte != 0 {
		numBags, err := readUvarint(br)
		if err != nil {
			return nil, errors.Wrap(err, "read fine bag count")
		}
		fine = make(map[uint64][]SeedPosition, numBags)
		buf := make([]byte, 16)
		for i := uint64(0); i < numBags; i++ {
			ctrl, err := br.ReadByte()
			if err != nil {
				return nil, err
			}
			blens := ctrlByte2ByteLengths[ctrl]
			total := int(blens[0] + blens[1])
			if _, err := io.ReadFull(br, buf[:total]); err != nil {
				return nil, errors.Wrap(err, "read fine bag header")
			}
			values, _ := Uint64s(ctrl, buf[:total])
			kmer, count := values[0], values[1]

			positions := make([]SeedPosition, count)
			for j := uint64(0); j < count; j++ {
				ctrl, err := br.ReadByte()
				if err != nil {
					return nil, err
				}
				blens := ctrlByte2ByteLengths[ctrl]
				total := int(blens[0] + blens[1])
				if _, err := io.ReadFull(br, buf[:total]); err != nil {
					return nil, errors.Wrap(err, "read fine position")
				}
				pv, _ := Uint64s(ctrl, buf[:total])
				positions[j] = SeedPosition{
					Pos:         uint32(pv[0]),
					ContigIndex: uint32(pv[1] >> 9),
					Phase:       uint8((pv[1] >> 1) & 0xff),
					Canonical:   pv[1]&1 != 0,
				}
			}
			fine[kmer] = positions
		}
	}

	return &Sketch{
		FileName:            fileName,
		Contigs:             contigs,
		ContigLengths:       lengths,
		TotalSequenceLength: totalLen,
		FineSeeds:           fine,
		MarkerSeeds:         markers,
		Params: SketchParams{
			C:         int(c),
			K:         int(k),
			MarkerC:   int(markerC),
			AminoAcid: aaByte != 0,
		},
		ContigOrder: int(contigOrder),
	}, nil
}

func sortedMarkerKeys(s *Sketch) []uint64 {
	keys := make([]uint64, 0, len(s.MarkerSeeds))
	for k := range s.MarkerSeeds {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func writeString(w *bufio.Writer, s string) error {
	if err := writeUvarint(w, uint64(len(s))); err != nil {
		return err
	}
	_, err := w.WriteString(s)
	return err
}

func readString(r *bufio.Reader) (string, error) {
	n, err := readUvarint(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// writeUvarint and readUvarint wrap the engine's own compact uvarint
// codec (uvarint.go) with a 1-byte length prefix so it can be used as
// self-framing field in a byte stream.
func writeUvarint(w *bufio.Writer, x uint64) error {
	buf := make([]byte, 8)
	n := putUvarint(buf, x)
	if err := w.WriteByte(byte(n)); err != nil {
		return err
	}
	_, err := w.Write(buf[:n])
	return err
}

func readUvarint(r *bufio.Reader) (uint64, error) {
	nByte, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	n := int(nByte)
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return uvarint(buf, n), nil
}
