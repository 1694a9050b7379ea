package mdlint

import (
	"context"
	"runtime"
	"sync"
)

// lintParallel lints documents with a worker pool, one task per document.
// Each task reads only its own document and stages its own analyzer input
// (the exec analyzer names staging files uniquely per invocation), so tasks
// never share mutable state. Results are collected into a slice indexed by
// input position, which both serializes the aggregation and keeps output
// order deterministic.
func (e *Engine) lintParallel(ctx context.Context, docs []document) []DocumentResult {
	results := make([]DocumentResult, len(docs))
	if len(docs) == 0 {
		return results
	}

	numWorkers := min(runtime.NumCPU(), len(docs))
	if numWorkers < 1 {
		numWorkers = 1
	}

	type task struct {
		idx int
		doc document
	}
	workCh := make(chan task, len(docs))
	for i, doc := range docs {
		workCh <- task{idx: i, doc: doc}
	}
	close(workCh)

	type result struct {
		idx int
		res DocumentResult
	}
	resultCh := make(chan result, len(docs))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range workCh {
				resultCh <- result{idx: t.idx, res: e.lintDocument(ctx, t.doc)}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for r := range resultCh {
		results[r.idx] = r.res
	}
	return results
}
