// Copyright © 2018 Wei Shen <shenwei356@gmail.com>
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

import "errors"

// ErrKOverflow means k is outside the supported range for the given
// alphabet (1-32 for nucleotide, 1-10 for amino acid).
var ErrKOverflow = errors.New("seedani: k overflow")

// ErrKMismatch means two KmerCodes being compared/combined have
// different k.
var ErrKMismatch = errors.New("seedani: k mismatch")

// base2bit maps a nucleotide byte to its 2-bit code. Only upper/lower
// A/C/G/T carry meaning: everything else, N included, collapses to
// 0 (A), so the rolling hash stays continuous across ambiguity codes.
// Callers that need N-aware behaviour must pre-mask.
var base2bit [256]byte

func init() {
	base2bit['C'], base2bit['c'] = 1, 1
	base2bit['G'], base2bit['g'] = 2, 2
	base2bit['T'], base2bit['t'] = 3, 3
}

// bit2base maps a 2-bit code back to its nucleotide byte.
var bit2base = [4]byte{'A', 'C', 'G', 'T'}

// EncodeNucl packs a byte slice (k <= 32) into a 2-bit/base uint64,
// using the byte map above. Unknown bytes become A rather than an
// error; only a length outside 1..32 returns ErrKOverflow.
func EncodeNucl(kmer []byte) (uint64, error) {
	k := len(kmer)
	if k == 0 || k > 32 {
		return 0, ErrKOverflow
	}
	var code uint64
	for i := range kmer {
		code |= uint64(base2bit[kmer[k-1-i]]) << uint(i*2)
	}
	return code, nil
}

// ReverseNucl returns the code of the reversed (not complemented) k-mer.
func ReverseNucl(code uint64, k int) (c uint64) {
	for i := 0; i < k; i++ {
		c <<= 2
		c |= code & 3
		code >>= 2
	}
	return
}

// ComplementNucl returns the code of the complemented (not reversed) k-mer.
func ComplementNucl(code uint64, k int) (c uint64) {
	for i := 0; i < k; i++ {
		c |= (code&3 ^ 3) << uint(i<<1)
		code >>= 2
	}
	return
}

// RevCompNucl returns the code of the reverse complement.
func RevCompNucl(code uint64, k int) (c uint64) {
	for i := 0; i < k; i++ {
		c <<= 2
		c |= code&3 ^ 3
		code >>= 2
	}
	return
}

// DecodeNucl converts a packed nucleotide code back to bytes.
func DecodeNucl(code uint64, k int) []byte {
	kmer := make([]byte, k)
	for i := 0; i < k; i++ {
		kmer[k-1-i] = bit2base[code&3]
		code >>= 2
	}
	return kmer
}

// KmerCode is a k-mer packed into the low bits of a uint64, alongside
// its length and alphabet. Nucleotide k-mers use 2 bits/base (k<=32,
// though the engine itself never asks for more than 32); amino-acid
// k-mers use 6 bits/residue (k<=10), packed by the codon encoder in
// orf.go.
type KmerCode struct {
	Code      uint64
	K         int
	AminoAcid bool
}

// NewKmerCode builds a KmerCode from a nucleotide byte slice.
func NewKmerCode(kmer []byte) (KmerCode, error) {
	code, err := EncodeNucl(kmer)
	if err != nil {
		return KmerCode{}, err
	}
	return KmerCode{Code: code, K: len(kmer)}, nil
}

// Equal reports whether two KmerCodes denote the same packed k-mer.
func (kcode KmerCode) Equal(other KmerCode) bool {
	return kcode.K == other.K && kcode.AminoAcid == other.AminoAcid && kcode.Code == other.Code
}

// RevComp returns the KmerCode of the reverse complement. Undefined for
// amino-acid codes (ORFs already fix a reading direction).
func (kcode KmerCode) RevComp() KmerCode {
	return KmerCode{Code: RevCompNucl(kcode.Code, kcode.K), K: kcode.K}
}

// Canonical returns whichever of {kcode, revcomp(kcode)} is
// lexicographically smaller, i.e. numerically smaller as a packed
// integer (2-bit encoding preserves lexicographic order of A<C<G<T).
func (kcode KmerCode) Canonical() (canon KmerCode, forwardWon bool) {
	if kcode.AminoAcid {
		return kcode, true
	}
	rc := kcode.RevComp()
	if rc.Code < kcode.Code {
		return rc, false
	}
	return kcode, true
}

// Bytes decodes the KmerCode back to a nucleotide byte slice.
func (kcode KmerCode) Bytes() []byte {
	if kcode.AminoAcid {
		return DecodeCodon(kcode.Code, kcode.K)
	}
	return DecodeNucl(kcode.Code, kcode.K)
}

// String returns the k-mer as a string.
func (kcode KmerCode) String() string {
	return string(kcode.Bytes())
}
