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
	"math"
	"testing"
)

type constantModel float64

func (m constantModel) Predict(features []float64) float64 { return float64(m) }

type recordingModel struct {
	features []float64
	value    float64
}

func (m *recordingModel) Predict(features []float64) float64 {
	m.features = append([]float64{}, features...)
	return m.value
}

func adjustableResult() AniEstResult {
	return AniEstResult{
		ANI:               0.95,
		TotalBasesCovered: 200000,
		Q10R:              1000, Q50R: 5000, Q90R: 20000,
		Q10Q: 2000, Q50Q: 8000, Q90Q: 30000,
	}
}

func TestAdjustGatingConditions(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*AniEstResult)
		c       int
		optOut  bool
		changed bool
	}{
		{name: "all gates pass", mutate: func(r *AniEstResult) {}, c: 125, changed: true},
		{name: "opted out", mutate: func(r *AniEstResult) {}, c: 125, optOut: true, changed: false},
		{name: "raw ANI too low", mutate: func(r *AniEstResult) { r.ANI = 0.85 }, c: 125, changed: false},
		{name: "c too small", mutate: func(r *AniEstResult) {}, c: 30, changed: false},
		{name: "too few bases covered", mutate: func(r *AniEstResult) { r.TotalBasesCovered = 1000 }, c: 125, changed: false},
	}

	for _, c := range cases {
		a := NewLearnedAdjuster(constantModel(97.0), c.optOut)
		r := adjustableResult()
		c.mutate(&r)
		before := r.ANI
		a.Adjust(&r, c.c)
		if c.changed {
			if math.Abs(r.ANI-0.97) > 1e-12 {
				t.Errorf("%s: ANI = %v, want 0.97", c.name, r.ANI)
			}
		} else if r.ANI != before {
			t.Errorf("%s: ANI changed from %v to %v, want unchanged", c.name, before, r.ANI)
		}
	}
}

func TestAdjustRetainsRawAbove100(t *testing.T) {
	a := NewLearnedAdjuster(constantModel(101.0), false)
	r := adjustableResult()
	a.Adjust(&r, 125)
	if r.ANI != 0.95 {
		t.Errorf("a prediction >= 100 must retain the raw value, got %v", r.ANI)
	}
}

// TestAdjustFeatureOrder checks the feature vector's layout, in
// particular that whichever side has the larger median contig length is
// presented first so the model is symmetric in (query, ref).
func TestAdjustFeatureOrder(t *testing.T) {
	m := &recordingModel{value: 98.0}
	a := NewLearnedAdjuster(m, false)

	r := adjustableResult() // Q50Q (8000) > Q50R (5000): query side goes first
	a.Adjust(&r, 125)

	if len(m.features) != 12 {
		t.Fatalf("feature vector has %d entries, want 12", len(m.features))
	}
	if m.features[0] != 0.95*100 {
		t.Errorf("features[0] = %v, want raw ANI x100", m.features[0])
	}
	// Larger-median (query) quantiles occupy the first triple.
	if m.features[6] != 30000 || m.features[7] != 8000 || m.features[8] != 2000 {
		t.Errorf("first quantile triple = %v, want the query side's (Q90, Q50, Q10)", m.features[6:9])
	}
	if m.features[9] != 20000 || m.features[10] != 5000 || m.features[11] != 1000 {
		t.Errorf("second quantile triple = %v, want the ref side's (Q90, Q50, Q10)", m.features[9:12])
	}
}

func TestLoadModelEvaluatesTrees(t *testing.T) {
	data := []byte(`{
		"base_score": 1.0,
		"trees": [
			{"feature": 0, "threshold": 95.0, "value": 0,
			 "left":  {"feature": -1, "threshold": 0, "value": 90.0},
			 "right": {"feature": -1, "threshold": 0, "value": 96.0}}
		]
	}`)
	model, err := LoadModel(data)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}

	if got := model.Predict([]float64{90}); got != 91.0 {
		t.Errorf("Predict(below split) = %v, want base+left = 91.0", got)
	}
	if got := model.Predict([]float64{99}); got != 97.0 {
		t.Errorf("Predict(above split) = %v, want base+right = 97.0", got)
	}
}

func TestLoadModelRejectsGarbage(t *testing.T) {
	if _, err := LoadModel([]byte("not json")); err == nil {
		t.Fatal("expected an error for an unparseable artefact")
	}
}
