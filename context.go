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

import "github.com/shenwei356/go-logging"

// EngineContext carries everything that would otherwise be global
// state: thread-pool size, the logging sink, the learned-ANI model,
// and estimator/screening configuration. It's built once and passed
// explicitly through call sites.
type EngineContext struct {
	Threads     int
	Log         *logging.Logger
	Adjuster    *LearnedAdjuster
	KeepRefs    bool
	FasterSmall bool
	Theta       float64
	Estimator   EstimatorConfig
}

// DefaultEngineContext returns an EngineContext with the engine's
// documented defaults.
func DefaultEngineContext(log *logging.Logger, aminoAcid bool) EngineContext {
	return EngineContext{
		Threads:   DefaultThreads,
		Log:       log,
		Theta:     ScreenTheta(aminoAcid),
		Estimator: EstimatorConfig{Flavor: SummaryMean},
	}
}
