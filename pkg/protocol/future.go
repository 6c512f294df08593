// ABOUTME: Single-resolution completion cell for outstanding requests
// ABOUTME: Resolved or rejected at most once; waiters observe it through a channel
package protocol

import (
	"context"
	"sync"
	"sync/atomic"
)

// Future completes when the response to a request arrives
type Future struct {
	id       int64
	done     chan struct{}
	once     sync.Once
	resolved atomic.Bool
	value    any
	err      error
}

func newFuture(id int64) *Future {
	return &Future{id: id, done: make(chan struct{})}
}

// ID returns the correlation id assigned to the request
func (f *Future) ID() int64 {
	return f.id
}

// Done is closed once the future has a result
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Resolved reports whether the future already has a result
func (f *Future) Resolved() bool {
	return f.resolved.Load()
}

// Wait blocks until the result arrives or ctx is done. Giving up on the wait
// does not cancel the request; it stays outstanding until answered or the
// connection drops.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *Future) resolve(v any) bool {
	return f.settle(v, nil)
}

func (f *Future) reject(err error) bool {
	return f.settle(nil, err)
}

func (f *Future) settle(v any, err error) bool {
	settled := false
	f.once.Do(func() {
		f.value = v
		f.err = err
		f.resolved.Store(true)
		close(f.done)
		settled = true
	})
	return settled
}
