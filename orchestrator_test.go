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
	"sync"
	"testing"
)

type memorySource struct {
	refs []*Sketch
}

func (s memorySource) Load(id int) (*Sketch, error) { return s.refs[id], nil }

// TestOrchestratorScreensAndEmits runs the full screen-chain-estimate
// pipeline over one query against two references: one identical to the
// query, one unrelated. Only the identical reference should survive
// screening and produce a result.
func TestOrchestratorScreensAndEmits(t *testing.T) {
	params := DefaultDNAParams()
	params.C = 5
	params.MarkerC = 20 // dense markers so a 20 kb test sequence screens reliably

	shared := randomDNASeq(20000)
	other := randomDNASeq(20000)

	query := buildTestSketch("query.fa", shared, params)
	same := buildTestSketch("same.fa", shared, params)
	unrelated := buildTestSketch("other.fa", other, params)

	refs := []*Sketch{same, unrelated}
	index := NewMarkerIndex([]RefSketch{
		{ID: 0, Sketch: same},
		{ID: 1, Sketch: unrelated},
	})

	ctx := DefaultEngineContext(nil, false)
	ctx.Threads = 2

	orch := NewOrchestrator(ctx, index, memorySource{refs: refs})

	var mu sync.Mutex
	var results []AniEstResult
	orch.Run([]*Sketch{query}, func(r AniEstResult) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	})

	if len(results) != 1 {
		t.Fatalf("got %d results, want exactly 1 (the identical reference)", len(results))
	}
	r := results[0]
	if r.RefFile != "same.fa" || r.QueryFile != "query.fa" {
		t.Errorf("result pair = (%s, %s), want (query.fa, same.fa)", r.QueryFile, r.RefFile)
	}
	if r.ANI < 0.95 || r.ANI > 1.0 {
		t.Errorf("identical-pair ANI = %v, want ~1.0", r.ANI)
	}
	if r.AlignFractionQuery < 0.9 || r.AlignFractionRef < 0.9 {
		t.Errorf("identical-pair AF = (%v, %v), want both > 0.9", r.AlignFractionQuery, r.AlignFractionRef)
	}
}

// TestOrchestratorKeepRefsCaches checks that keep_refs wraps the
// source in a cache: repeated queries hit the underlying source once
// per reference.
func TestOrchestratorKeepRefsCaches(t *testing.T) {
	params := DefaultDNAParams()
	params.C = 5
	params.MarkerC = 20

	shared := randomDNASeq(20000)
	ref := buildTestSketch("ref.fa", shared, params)
	q1 := buildTestSketch("q1.fa", shared, params)
	q2 := buildTestSketch("q2.fa", shared, params)

	var loads int
	var loadMu sync.Mutex
	source := countingSource{
		refs: []*Sketch{ref},
		onLoad: func() {
			loadMu.Lock()
			loads++
			loadMu.Unlock()
		},
	}

	index := NewMarkerIndex([]RefSketch{{ID: 0, Sketch: ref}})

	ctx := DefaultEngineContext(nil, false)
	ctx.Threads = 1
	ctx.KeepRefs = true

	orch := NewOrchestrator(ctx, index, source)
	orch.Run([]*Sketch{q1, q2}, func(AniEstResult) {})

	if loads != 1 {
		t.Errorf("underlying source loaded %d times across 2 queries, want 1 with keep_refs", loads)
	}
}

type countingSource struct {
	refs   []*Sketch
	onLoad func()
}

func (s countingSource) Load(id int) (*Sketch, error) {
	s.onLoad()
	return s.refs[id], nil
}
