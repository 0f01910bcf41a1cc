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

import (
	"bytes"
	"math/rand"
	"testing"
)

var randomMers [][]byte
var randomMersN = 10000

func init() {
	randomMers = make([][]byte, randomMersN)
	alphabet := []byte("ACGT")
	for i := 0; i < randomMersN; i++ {
		randomMers[i] = make([]byte, rand.Intn(32)+1)
		for j := range randomMers[i] {
			randomMers[i][j] = alphabet[rand.Intn(4)]
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, mer := range randomMers {
		kcode, err := NewKmerCode(mer)
		if err != nil {
			t.Fatalf("encode error: %s: %v", mer, err)
		}
		if !bytes.Equal(mer, kcode.Bytes()) {
			t.Errorf("decode error: %s != %s", mer, kcode.Bytes())
		}
	}
}

func TestRevCompInvolution(t *testing.T) {
	for _, mer := range randomMers {
		kcode, _ := NewKmerCode(mer)
		if !kcode.RevComp().RevComp().Equal(kcode) {
			t.Errorf("RevComp() not involutive for %s", mer)
		}
	}
}

// TestCanonicalInvariance checks that a k-mer and its reverse
// complement always pick the same canonical representative, over
// 10000 random DNA strings.
func TestCanonicalInvariance(t *testing.T) {
	for _, mer := range randomMers {
		kcode, _ := NewKmerCode(mer)
		rc := kcode.RevComp()

		c1, _ := kcode.Canonical()
		c2, _ := rc.Canonical()
		if !c1.Equal(c2) {
			t.Errorf("canonical(%s) != canonical(revcomp): %s vs %s", mer, c1, c2)
		}
	}
}

func TestUnknownBytesCollapseToA(t *testing.T) {
	code, err := EncodeNucl([]byte("ANNG"))
	if err != nil {
		t.Fatal(err)
	}
	want, _ := EncodeNucl([]byte("AAAG"))
	if code != want {
		t.Errorf("N should collapse to A: got %x want %x", code, want)
	}
}
