// Copyright © 2018-2020 Wei Shen <shenwei356@gmail.com>
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

// codonTable maps a packed codon (2 bits/base, 3 bases, index
// b1*16+b2*4+b3 with A=0,C=1,G=2,T=3) to a residue code in 0..19, or
// StopCodon (21) for a stop codon. This is the standard genetic code,
// built once at init time from the explicit codon->letter map below.
var codonTable [64]byte

var residueLetters = []byte("ARNDCEFGHIKLMPQSTVWY") // index 0..19, STOP=21 separately

func init() {
	buildCodonTable()
}

func buildCodonTable() {
	letterIdx := map[byte]byte{}
	for i, l := range residueLetters {
		letterIdx[l] = byte(i)
	}
	codons := map[string]byte{
		"TTT": letterIdx['F'], "TTC": letterIdx['F'], "TTA": letterIdx['L'], "TTG": letterIdx['L'],
		"CTT": letterIdx['L'], "CTC": letterIdx['L'], "CTA": letterIdx['L'], "CTG": letterIdx['L'],
		"ATT": letterIdx['I'], "ATC": letterIdx['I'], "ATA": letterIdx['I'], "ATG": letterIdx['M'],
		"GTT": letterIdx['V'], "GTC": letterIdx['V'], "GTA": letterIdx['V'], "GTG": letterIdx['V'],
		"TCT": letterIdx['S'], "TCC": letterIdx['S'], "TCA": letterIdx['S'], "TCG": letterIdx['S'],
		"CCT": letterIdx['P'], "CCC": letterIdx['P'], "CCA": letterIdx['P'], "CCG": letterIdx['P'],
		"ACT": letterIdx['T'], "ACC": letterIdx['T'], "ACA": letterIdx['T'], "ACG": letterIdx['T'],
		"GCT": letterIdx['A'], "GCC": letterIdx['A'], "GCA": letterIdx['A'], "GCG": letterIdx['A'],
		"TAT": letterIdx['Y'], "TAC": letterIdx['Y'],
		"CAT": letterIdx['H'], "CAC": letterIdx['H'], "CAA": letterIdx['Q'], "CAG": letterIdx['Q'],
		"AAT": letterIdx['N'], "AAC": letterIdx['N'], "AAA": letterIdx['K'], "AAG": letterIdx['K'],
		"GAT": letterIdx['D'], "GAC": letterIdx['D'], "GAA": letterIdx['E'], "GAG": letterIdx['E'],
		"TGT": letterIdx['C'], "TGC": letterIdx['C'], "TGG": letterIdx['W'],
		"CGT": letterIdx['R'], "CGC": letterIdx['R'], "CGA": letterIdx['R'], "CGG": letterIdx['R'],
		"AGT": letterIdx['S'], "AGC": letterIdx['S'], "AGA": letterIdx['R'], "AGG": letterIdx['R'],
		"GGT": letterIdx['G'], "GGC": letterIdx['G'], "GGA": letterIdx['G'], "GGG": letterIdx['G'],
	}
	stops := []string{"TAA", "TAG", "TGA"}
	for codon, aa := range codons {
		idx := codonIndex(codon)
		codonTable[idx] = aa
	}
	for _, codon := range stops {
		codonTable[codonIndex(codon)] = StopCodon
	}
}

func codonIndex(codon string) int {
	idx := 0
	for i := 0; i < 3; i++ {
		idx = idx<<2 | int(base2bit[codon[i]])
	}
	return idx
}

// EncodeCodon packs a 3-byte codon into its 6-bit residue code via the
// standard genetic code (0..19 for an amino acid, StopCodon for a stop).
func EncodeCodon(codon []byte) byte {
	idx := 0
	for i := 0; i < 3; i++ {
		idx = idx<<2 | int(base2bit[codon[i]])
	}
	return codonTable[idx]
}

// residueToByte renders a residue code back to its one-letter symbol,
// '*' for stop. Used only for diagnostics/tests.
func residueToByte(r byte) byte {
	if r == StopCodon {
		return '*'
	}
	if int(r) < len(residueLetters) {
		return residueLetters[r]
	}
	return 'X'
}

// DecodeCodon decodes a packed amino-acid KmerCode back into a byte
// slice of one-letter residue symbols.
func DecodeCodon(code uint64, k int) []byte {
	out := make([]byte, k)
	for i := 0; i < k; i++ {
		out[k-1-i] = residueToByte(byte(code & 0x3f))
		code >>= 6
	}
	return out
}

// ORF is a single open reading frame found by six-frame translation:
// a run of in-frame, stop-free codons at least MinOrfCodons long.
type ORF struct {
	Frame    int // 0,1,2 forward; 3,4,5 reverse complement
	Start    int // start offset within the scanned strand (the reverse complement for frames 3-5)
	Residues []byte
}

// FindORFs performs six-frame translation of seq and returns every ORF
// of at least MinOrfCodons codons, stopping each ORF at the first stop
// codon or the end of the frame.
func FindORFs(seq []byte) []ORF {
	var orfs []ORF
	rc := make([]byte, len(seq))
	for i, b := range seq {
		rc[len(seq)-1-i] = complementByte(b)
	}

	for frame := 0; frame < 3; frame++ {
		orfs = append(orfs, scanFrame(seq, frame, frame)...)
	}
	for frame := 0; frame < 3; frame++ {
		found := scanFrame(rc, frame, frame+3)
		orfs = append(orfs, found...)
	}
	return orfs
}

func complementByte(b byte) byte {
	switch b {
	case 'A', 'a':
		return 'T'
	case 'C', 'c':
		return 'G'
	case 'G', 'g':
		return 'C'
	case 'T', 't':
		return 'A'
	default:
		return 'T' // matches base2bit's A-collapse: complement(A)=T
	}
}

func scanFrame(seq []byte, offset int, frameID int) []ORF {
	var orfs []ORF
	var residues []byte
	start := offset
	flush := func(end int) {
		if len(residues) >= MinOrfCodons {
			orfs = append(orfs, ORF{Frame: frameID, Start: start, Residues: residues})
		}
		residues = nil
	}
	for i := offset; i+3 <= len(seq); i += 3 {
		aa := EncodeCodon(seq[i : i+3])
		if aa == StopCodon {
			flush(i)
			start = i + 3
			continue
		}
		if len(residues) == 0 {
			start = i
		}
		residues = append(residues, aa)
	}
	flush(len(seq))
	return orfs
}
