package importer

import (
	"context"
	"sync"
	"time"
)

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size < 1 {
		size = 1
	}
	batches := make([][]T, 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		end := min(i+size, len(items))
		batches = append(batches, items[i:end])
	}
	return batches
}

// claimSet is the per-run set of catalog ids already reconciled.
type claimSet struct {
	mu  sync.Mutex
	ids map[int64]struct{}
}

func newClaimSet() *claimSet {
	return &claimSet{ids: make(map[int64]struct{})}
}

// claim inserts id and reports whether the caller is the first to do so.
func (c *claimSet) claim(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.ids[id]; ok {
		return false
	}
	c.ids[id] = struct{}{}
	return true
}

// fanOut runs fn for every index concurrently and waits for all of them.
// A panic in one call is converted by onPanic and never reaches the siblings.
func fanOut(n int, fn func(i int), onPanic func(i int, v any)) {
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			defer func() {
				if v := recover(); v != nil {
					onPanic(i, v)
				}
			}()
			fn(i)
		}(i)
	}
	wg.Wait()
}

// pause waits for d unless ctx is done first.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
