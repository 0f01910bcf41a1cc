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

import "testing"

// TestMixHash64Vectors pins mixHash64 against fixed literal outputs.
// Values were derived directly from the add-shift-xor cascade, not
// from any external reference binary.
func TestMixHash64Vectors(t *testing.T) {
	cases := []struct {
		in, want uint64
	}{
		{0, 8633297058295171728},
		{1, 6614235796240398542},
		{2, 13228483051453548148},
		{3, 1396078460937419741},
		{100, 15790021953370380414},
		{123456789, 16581954974024456952},
		{0xdeadbeefcafebabe, 15121121717576776324},
	}
	for _, c := range cases {
		got := mixHash64(c.in)
		if got != c.want {
			t.Errorf("mixHash64(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

// TestMixHash64Deterministic checks the mix is a pure function of its
// input: repeated calls with the same key always agree.
func TestMixHash64Deterministic(t *testing.T) {
	for _, k := range []uint64{0, 1, 42, 1 << 63, ^uint64(0)} {
		a := mixHash64(k)
		b := mixHash64(k)
		if a != b {
			t.Errorf("mixHash64(%d) not deterministic: %d vs %d", k, a, b)
		}
	}
}

// TestInvMixHash64RoundTrip checks invMixHash64 inverts mixHash64 over
// a spread of keys, since the cascade is a bijection on uint64 despite
// its final step being a wrapping add.
func TestInvMixHash64RoundTrip(t *testing.T) {
	keys := []uint64{0, 1, 2, 3, 100, 123456789, 0xdeadbeefcafebabe, ^uint64(0), 1 << 63}
	for _, k := range keys {
		h := mixHash64(k)
		back := invMixHash64(h)
		if back != k {
			t.Errorf("invMixHash64(mixHash64(%d)) = %d, want %d", k, back, k)
		}
	}
}

func TestFracMinThreshold(t *testing.T) {
	if fracMinThreshold(1) != ^uint64(0) {
		t.Errorf("fracMinThreshold(1) should be the full 64-bit range")
	}
	tC := fracMinThreshold(125)
	tM := fracMinThreshold(1000)
	if tM >= tC {
		t.Errorf("marker threshold (c=1000) should be stricter than fine threshold (c=125): tM=%d tC=%d", tM, tC)
	}
}
