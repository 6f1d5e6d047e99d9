package evbrun

import (
	"context"
	"sync"
)

// Progress is the shared floating-point cell from spec.md's §5 resource
// model: the worker writes absolute progress (0.0-1.0), a caller (a UI, a
// CLI progress line) reads it. sync.Mutex cannot be poisoned the way a
// cross-thread lock in other languages can, so the one failure mode this
// type models is the run's context already being cancelled when the
// worker goes to report -- see Set.
type Progress struct {
	mu    sync.Mutex
	value float64
}

// NewProgress returns a Progress cell starting at 0.
func NewProgress() *Progress {
	return &Progress{}
}

// Set writes absolute progress, unless ctx is already cancelled, in which
// case it returns ErrSync and leaves the cell unchanged.
func (p *Progress) Set(ctx context.Context, value float64) error {
	if err := ctx.Err(); err != nil {
		return ErrSync
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = value
	return nil
}

// Get reads the current progress value.
func (p *Progress) Get() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}
