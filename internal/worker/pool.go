// Package worker bounds how many burns run at once on this process,
// complementing the distributed admission semaphore in internal/queue
// (which caps the fleet as a whole). Adapted from the teacher's
// per-service channel semaphores (internal/worker's withSemaphore).
package worker

import (
	"context"
	"fmt"
	"log"

	"github.com/bobarin/lyricburn/internal/apierr"
)

// Pool bounds local concurrency with a buffered channel used as a
// ticket pool — the same shape as the teacher's renderSem, generalized
// to a single named pool instead of one channel per external service.
type Pool struct {
	label string
	slots chan struct{}
}

func NewPool(label string, concurrency int) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pool{label: label, slots: make(chan struct{}, concurrency)}
}

// Run acquires a local slot, runs fn, and releases the slot on return.
// If ctx is cancelled while waiting for a slot, fn never runs and Run
// returns a Cancelled error.
func (p *Pool) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	log.Printf("[%s] waiting for a local slot...", p.label)
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return apierr.New(apierr.KindCancelled, fmt.Sprintf("%s cancelled while waiting for a slot", p.label))
	}
	defer func() { <-p.slots }()

	log.Printf("[%s] acquired local slot", p.label)
	return fn(ctx)
}

// InFlight reports how many slots are currently taken.
func (p *Pool) InFlight() int {
	return len(p.slots)
}
