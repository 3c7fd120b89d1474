// Package queue provides the distributed burn-admission semaphore:
// a Redis-backed FIFO concurrency cap shared across every process
// serving burns (spec.md §4.5/§5).
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const ticketValue = "1"

// Semaphore caps concurrent burns at a configured limit using a Redis
// list as a FIFO ticket pool: capacity tickets are pushed once at
// startup, Acquire blocks on BLPop until one is available, Release
// pushes it back. BLPop's waiter ordering is FIFO, which is what gives
// admission its queue semantics across every process sharing the key.
type Semaphore struct {
	client   *redis.Client
	key      string
	capacity int
}

// NewSemaphore connects to redisURL and ensures key holds exactly
// capacity tickets, resetting it first — safe on process restart since
// a crashed process holding tickets would otherwise leak admission
// slots forever.
func NewSemaphore(ctx context.Context, redisURL, key string, capacity int) (*Semaphore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	s := &Semaphore{client: client, key: key, capacity: capacity}
	if err := s.reset(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Semaphore) reset(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to reset semaphore: %w", err)
	}
	tickets := make([]interface{}, s.capacity)
	for i := range tickets {
		tickets[i] = ticketValue
	}
	if len(tickets) == 0 {
		return nil
	}
	return s.client.RPush(ctx, s.key, tickets...).Err()
}

// Acquire blocks until an admission ticket is available or ctx is
// cancelled, whichever comes first.
func (s *Semaphore) Acquire(ctx context.Context) error {
	_, err := s.client.BLPop(ctx, 0, s.key).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire burn admission: %w", err)
	}
	return nil
}

// Release returns a ticket to the pool. Call via defer immediately
// after a successful Acquire.
func (s *Semaphore) Release(ctx context.Context) error {
	return s.client.RPush(ctx, s.key, ticketValue).Err()
}

// Len reports the number of currently free admission tickets — the
// inverse of burns in flight, exposed as the burn-queue depth gauge.
func (s *Semaphore) Len(ctx context.Context) (int64, error) {
	return s.client.LLen(ctx, s.key).Result()
}

func (s *Semaphore) Close() error {
	return s.client.Close()
}

// Capacity reports the configured number of admission tickets.
func (s *Semaphore) Capacity() int {
	return s.capacity
}
