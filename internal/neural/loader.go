package neural

import (
	"log"
	"time"
)

// LoadResult is the outcome of a background model load.
type LoadResult struct {
	Err     error
	Elapsed time.Duration
}

// LoadAsync loads the model on a background goroutine so the weight file can
// take seconds to materialize without blocking the frame loop. Exactly one
// result is delivered on the returned channel; the lifecycle transitions
// LOADING -> READY/ERROR before it arrives, so observers may also poll the
// state cell.
func LoadAsync(e *Engine, modelPath string) <-chan LoadResult {
	ch := make(chan LoadResult, 1)
	go func() {
		start := time.Now()
		err := e.Load(modelPath)
		elapsed := time.Since(start)
		if err == nil {
			log.Printf("neural: model loaded in %.2fs", elapsed.Seconds())
		}
		ch <- LoadResult{Err: err, Elapsed: elapsed}
		close(ch)
	}()
	return ch
}
