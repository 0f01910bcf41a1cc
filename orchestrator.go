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

	"github.com/dustin/go-humanize"
	"github.com/smallnest/ringbuffer"
)

// SketchSource lazily resolves a reference sketch by id, letting the
// Orchestrator run against a memory-mapped database without holding
// every reference in memory at once.
type SketchSource interface {
	Load(id int) (*Sketch, error)
}

// cachingSketchSource wraps a SketchSource with an in-memory cache,
// used when EngineContext.KeepRefs is set.
type cachingSketchSource struct {
	mu     sync.Mutex
	source SketchSource
	cache  map[int]*Sketch
}

func newCachingSketchSource(source SketchSource) *cachingSketchSource {
	return &cachingSketchSource{source: source, cache: make(map[int]*Sketch)}
}

func (c *cachingSketchSource) Load(id int) (*Sketch, error) {
	c.mu.Lock()
	if s, ok := c.cache[id]; ok {
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()

	s, err := c.source.Load(id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[id] = s
	c.mu.Unlock()
	return s, nil
}

// Orchestrator drives pair evaluation across queries and their
// surviving references: a ringbuffer-token throttle sized by
// EngineContext.Threads gates the per-query loop, and each query's
// surviving references are evaluated in one goroutine apiece.
type Orchestrator struct {
	ctx     EngineContext
	index   *MarkerIndex
	refs    SketchSource
	chainer func(params MapParams) *Chainer
}

// NewOrchestrator builds an Orchestrator over a fixed reference
// collection (via its MarkerIndex) and a SketchSource used to resolve
// the full Sketch (fine_seeds included) for references that survive
// screening.
func NewOrchestrator(ctx EngineContext, index *MarkerIndex, refs SketchSource) *Orchestrator {
	if ctx.KeepRefs {
		refs = newCachingSketchSource(refs)
	}
	return &Orchestrator{
		ctx:     ctx,
		index:   index,
		refs:    refs,
		chainer: NewChainer,
	}
}

// Run evaluates every query in queries against the reference
// collection, emitting one AniEstResult per surviving pair into sink.
// sink is called under a mutex — the single piece of shared mutable
// state the engine has.
func (o *Orchestrator) Run(queries []*Sketch, sink func(AniEstResult)) {
	var sinkMu sync.Mutex
	var progress int
	var progressMu sync.Mutex

	threads := o.ctx.Threads
	if threads <= 0 {
		threads = DefaultThreads
	}

	var wg sync.WaitGroup
	tokens := ringbuffer.New(threads) // faster than a channel token bucket

	for _, q := range queries {
		wg.Add(1)
		tokens.WriteByte(0)
		go func(q *Sketch) {
			defer wg.Done()
			defer tokens.ReadByte()

			o.runOneQuery(q, func(r AniEstResult) {
				sinkMu.Lock()
				sink(r)
				sinkMu.Unlock()
			})

			progressMu.Lock()
			progress++
			n := progress
			progressMu.Unlock()
			if o.ctx.Log != nil && n%100 == 0 {
				o.ctx.Log.Infof("processed %s queries", humanize.Comma(int64(n)))
			}
		}(q)
	}
	wg.Wait()
}

func (o *Orchestrator) runOneQuery(query *Sketch, emit func(AniEstResult)) {
	survivors := o.index.Screen(query, o.ctx.Theta, MarkerK(query.Params.AminoAcid), o.ctx.FasterSmall)

	var innerWG sync.WaitGroup
	var mu sync.Mutex

	for _, s := range survivors {
		innerWG.Add(1)
		go func(refID int) {
			defer innerWG.Done()

			refSketch, err := o.refs.Load(refID)
			if err != nil {
				if o.ctx.Log != nil {
					o.ctx.Log.Warningf("load reference %d: %v", refID, err)
				}
				return
			}

			merged, mismatchErr := mergeSketchParams(query.Params, refSketch.Params)
			if mismatchErr != nil {
				if IsFatal(mismatchErr) {
					if o.ctx.Log != nil {
						o.ctx.Log.Warningf("skip pair (fatal mismatch): %v", mismatchErr)
					}
					return
				}
				if o.ctx.Log != nil {
					o.ctx.Log.Warningf("%v", mismatchErr)
				}
			}

			effectiveQuery := query
			if merged != query.Params {
				q := *query
				q.Params = merged
				effectiveQuery = &q
			}

			chainer := o.chainer(NewMapParams(refSketch.Params))
			chains, err := chainer.Chain(effectiveQuery, refSketch)
			if err != nil {
				if IsFatal(err) {
					panic(err) // InvalidSketch is a programming error, fatal
				}
				if o.ctx.Log != nil {
					o.ctx.Log.Warningf("chain pair: %v", err)
				}
				return
			}

			result, ok := Estimate(effectiveQuery, refSketch, chains, o.ctx.Estimator)
			if !ok {
				return
			}
			if o.ctx.Adjuster != nil {
				o.ctx.Adjuster.Adjust(&result, refSketch.Params.C)
			}

			mu.Lock()
			emit(result)
			mu.Unlock()
		}(s.RefID)
	}
	innerWG.Wait()
}
