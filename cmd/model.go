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

package cmd

import (
	_ "embed"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/shenwei356/seedani"
)

//go:embed assets/model.json
var defaultModelJSON []byte

// loadAdjuster resolves a LearnedAdjuster:
// an explicit --model path wins; failing that, ~/.seedani/model.json is
// tried; failing that, the bundled default artefact is used. A load
// failure is never fatal unless the caller explicitly asked for
// learned-ANI via --model.
func loadAdjuster(opt *Options) *seedani.LearnedAdjuster {
	if opt.NoLearnedANI {
		return seedani.NewLearnedAdjuster(nil, true)
	}

	if opt.ModelPath != "" {
		data, err := os.ReadFile(opt.ModelPath)
		checkError(err)
		model, err := seedani.LoadModel(data)
		checkError(err)
		return seedani.NewLearnedAdjuster(model, false)
	}

	if home, err := homedir.Dir(); err == nil {
		path := filepath.Join(home, ".seedani", "model.json")
		if data, err := os.ReadFile(path); err == nil {
			if model, err := seedani.LoadModel(data); err == nil {
				return seedani.NewLearnedAdjuster(model, false)
			}
		}
	}

	model, err := seedani.LoadModel(defaultModelJSON)
	if err != nil {
		log.Warningf("bundled learned-ANI model failed to load, reporting raw identity: %v", err)
		return seedani.NewLearnedAdjuster(nil, true)
	}
	return seedani.NewLearnedAdjuster(model, false)
}
