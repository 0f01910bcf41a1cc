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

// Fixed constants of the engine.
const (
	KMarkerDNA = 21
	KMarkerAA  = 10

	StopCodon = 21 // 21st residue symbol, reserved for translation stops.

	MinLengthContig    = 500
	MinOrfCodons       = 30
	ScreenMinimumKmers = 20

	BPChainBandDNA = 2500
	BPChainBandAA  = 500

	FragmentLengthDNA = 20000
	FragmentLengthAA  = 20000

	MinAnchorsDNA = 3
	MinAnchorsAA  = 5

	FracCoverCutoff = 0.02

	ThetaDNA = 0.80
	ThetaAAI = 0.60

	MinAlignedFracDNA = 0.15
	MinAlignedFracAA  = 0.05

	LearnedAniMinRaw          = 0.90
	LearnedAniMinC            = 70
	LearnedAniMinBasesCovered = 150000

	DefaultThreads = 3

	BootstrapResamples = 100
)

// SketchParams pins the parameters a Sketch was built with. Two
// sketches may only be chained together if their SketchParams agree
// (see mergeSketchParams / the SketchMismatch error kind).
type SketchParams struct {
	C         int
	K         int
	MarkerC   int
	AminoAcid bool
}

// Validate checks the data-model invariants a Sketch must be built
// under: the fine k must fit the marker k-mer length for the alphabet,
// and markers must subsample at least as hard as fine seeds
// (marker_c >= c). Violations are fatal.
func (p SketchParams) Validate() error {
	if p.K <= 0 || p.K > MarkerK(p.AminoAcid) {
		return ErrInvariantf("k=%d out of range for marker k=%d", p.K, MarkerK(p.AminoAcid))
	}
	if p.MarkerC < p.C {
		return ErrInvariantf("marker_c=%d < c=%d", p.MarkerC, p.C)
	}
	if p.C <= 0 {
		return ErrInvariantf("c=%d must be positive", p.C)
	}
	return nil
}

// DefaultDNAParams returns the engine's default DNA sketching
// parameters.
func DefaultDNAParams() SketchParams {
	return SketchParams{C: 125, K: 15, MarkerC: 1000, AminoAcid: false}
}

// DefaultAAParams returns the engine's default amino-acid sketching
// parameters: c=15, k=6 for AA, with marker_c using the same default
// as DNA.
func DefaultAAParams() SketchParams {
	return SketchParams{C: 15, K: 6, MarkerC: 1000, AminoAcid: true}
}

// Preset applies one of the named CLI presets on top of a base
// SketchParams, returning the adjusted copy. faster_small reports
// whether the preset additionally opts into the faster_small screening
// shortcut.
func Preset(name string, base SketchParams) (params SketchParams, fasterSmall bool) {
	params = base
	switch name {
	case "slow":
		params.C = 30
	case "medium":
		params.C = 70
	case "fast":
		params.C = 200
	case "small-genomes":
		params.C = 30
		params.MarkerC = 200
		fasterSmall = true
	}
	return params, fasterSmall
}

// MapParams configures the Chainer for one pair comparison. It is
// derived from SketchParams plus the amino-acid/nucleotide split,
// rather than being user-facing directly.
type MapParams struct {
	FragmentLength  int
	MaxGapLength    float64
	AnchorScore     float64
	MinAnchors      int
	BPChainBand     int
	FracCoverCutoff float64
	K               int
	AminoAcid       bool
}

// NewMapParams builds the Chainer configuration for the given sketch
// parameters, choosing the DNA or AA constant set.
func NewMapParams(p SketchParams) MapParams {
	if p.AminoAcid {
		return MapParams{
			FragmentLength:  FragmentLengthAA,
			MaxGapLength:    50,
			AnchorScore:     20,
			MinAnchors:      MinAnchorsAA,
			BPChainBand:     BPChainBandAA,
			FracCoverCutoff: FracCoverCutoff,
			K:               p.K,
			AminoAcid:       true,
		}
	}
	return MapParams{
		FragmentLength:  FragmentLengthDNA,
		MaxGapLength:    300,
		AnchorScore:     20,
		MinAnchors:      MinAnchorsDNA,
		BPChainBand:     BPChainBandDNA,
		FracCoverCutoff: FracCoverCutoff,
		K:               p.K,
		AminoAcid:       false,
	}
}

// MarkerK returns the fixed marker-seed k-mer length for the given
// alphabet (K=21 DNA, K=10 AA), independent of the sketch's own
// fine-seed k.
func MarkerK(aminoAcid bool) int {
	if aminoAcid {
		return KMarkerAA
	}
	return KMarkerDNA
}

// ScreenTheta returns the default screening identity threshold theta
// for the given alphabet.
func ScreenTheta(aminoAcid bool) float64 {
	if aminoAcid {
		return ThetaAAI
	}
	return ThetaDNA
}

// MinAlignedFrac returns the default min-aligned-fraction gate for the
// given alphabet.
func MinAlignedFrac(aminoAcid bool) float64 {
	if aminoAcid {
		return MinAlignedFracAA
	}
	return MinAlignedFracDNA
}
