package dynamo

import "sync"

// MaxWorkers bounds the goroutines ParallelFor fans out to.
const MaxWorkers = 4

// Chunks returns how many chunks ParallelFor splits [0, n) into.
func Chunks(n, minChunk int) int {
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || MaxWorkers <= 1 {
		return 1
	}
	workers := MaxWorkers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// ParallelFor executes fn over [0, n) split into Chunks(n, minChunk)
// contiguous ranges. The chunk index lets callers write into per-chunk
// buffers and reduce them in a fixed order.
func ParallelFor(n, minChunk int, fn func(chunk, start, end int)) {
	workers := Chunks(n, minChunk)
	if workers == 1 {
		fn(0, 0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if start > n {
			start = n
		}
		if end > n {
			end = n
		}

		go func(c, s, e int) {
			defer wg.Done()
			fn(c, s, e)
		}(w, start, end)
	}

	wg.Wait()
}
