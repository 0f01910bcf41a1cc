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

// LearnedAdjuster optionally rewrites a raw AniEstResult's ANI using a
// pre-trained regression model, gated by quality conditions on the
// underlying chain evidence.
type LearnedAdjuster struct {
	model  RegressionModel
	optOut bool
}

// NewLearnedAdjuster wraps model. A nil model with optOut=false is
// valid: Adjust becomes a no-op, the degraded mode used when the
// artefact failed to load but learned-ANI wasn't explicitly requested.
func NewLearnedAdjuster(model RegressionModel, optOut bool) *LearnedAdjuster {
	return &LearnedAdjuster{model: model, optOut: optOut}
}

// Adjust rewrites result.ANI in place when the gating conditions hold:
// raw ANI >= 0.90, c >= 70, total_bases_covered >= 150000, and the
// caller hasn't opted out. The larger-median-contig side is presented
// first in the feature vector so the model is symmetric in (query, ref).
func (a *LearnedAdjuster) Adjust(result *AniEstResult, c int) {
	if a.optOut || a.model == nil {
		return
	}
	if result.ANI < LearnedAniMinRaw || c < LearnedAniMinC || result.TotalBasesCovered < LearnedAniMinBasesCovered {
		return
	}

	features := a.featureVector(result)
	predicted := a.model.Predict(features)
	if predicted < 100 {
		result.ANI = predicted / 100
	}
}

func (a *LearnedAdjuster) featureVector(r *AniEstResult) []float64 {
	q10r, q50r, q90r := r.Q10R, r.Q50R, r.Q90R
	q10q, q50q, q90q := r.Q10Q, r.Q50Q, r.Q90Q

	// Larger-median side presented first.
	if q50q > q50r {
		q10r, q50r, q90r, q10q, q50q, q90q = q10q, q50q, q90q, q10r, q50r, q90r
	}

	return []float64{
		r.ANI * 100,
		r.AlignFractionRef * 100,
		r.AlignFractionQuery * 100,
		r.CILower * 100,
		r.CIUpper * 100,
		r.Std,
		q90r, q50r, q10r,
		q90q, q50q, q10q,
	}
}
