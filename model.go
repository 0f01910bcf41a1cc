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

import "encoding/json"

// RegressionModel is the opaque interface the learned-ANI artefact is
// consulted through. Implementations MUST treat it as a
// black box: the prediction mechanism is not part of this package's
// concern.
type RegressionModel interface {
	Predict(features []float64) float64
}

// treeModel is a recursive binary regression tree, the JSON-serialised
// artefact format this engine understands. Each node is either a leaf
// (Value set, Feature < 0) or a split on Features[Feature] < Threshold.
type treeModel struct {
	Feature   int          `json:"feature"`
	Threshold float64      `json:"threshold"`
	Value     float64      `json:"value"`
	Left      *treeModel   `json:"left,omitempty"`
	Right     *treeModel   `json:"right,omitempty"`
}

// ensembleModel is a sum of treeModel trees plus a base score, the
// standard gradient-boosted-tree representation this artefact encodes
// as plain JSON rather than a vendor-specific binary dump.
type ensembleModel struct {
	BaseScore float64      `json:"base_score"`
	Trees     []*treeModel `json:"trees"`
}

// LoadModel parses a JSON-encoded ensembleModel artefact. The artefact
// is a small JSON structure, not an XGBoost/LightGBM binary dump, so a
// vendor GBDT runtime would not parse it anyway.
func LoadModel(data []byte) (RegressionModel, error) {
	var m ensembleModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, ErrModelLoad(false, "parse model artefact: %v", err)
	}
	return &m, nil
}

func (m *ensembleModel) Predict(features []float64) float64 {
	total := m.BaseScore
	for _, t := range m.Trees {
		total += t.eval(features)
	}
	return total
}

func (t *treeModel) eval(features []float64) float64 {
	for t.Left != nil && t.Right != nil {
		if features[t.Feature] < t.Threshold {
			t = t.Left
		} else {
			t = t.Right
		}
	}
	return t.Value
}
