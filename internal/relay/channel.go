package relay

import (
	"errors"
	"sync"
)

// ErrConsumerGone is returned by Send once the consumer has abandoned the
// channel. It is a shutdown signal, not a failure to report.
var ErrConsumerGone = errors.New("relay consumer gone")

// Chunk carries either a non-empty block of producer output or a terminal
// error. Exactly one of Data and Err is set.
type Chunk struct {
	Data []byte
	Err  error
}

// Channel is a bounded single-producer, single-consumer FIFO of Chunks.
type Channel struct {
	ch   chan Chunk
	gone chan struct{}

	closeOnce   sync.Once
	abandonOnce sync.Once
}

// NewChannel creates a Channel holding at most capacity chunks.
func NewChannel(capacity int) *Channel {
	if capacity < 1 {
		capacity = 1
	}
	return &Channel{
		ch:   make(chan Chunk, capacity),
		gone: make(chan struct{}),
	}
}

// Send enqueues c, blocking while the queue is full. It fails with
// ErrConsumerGone once Abandon has been called. Send must not be called
// after Close.
func (c *Channel) Send(chunk Chunk) error {
	// An abandoned channel must refuse even when there is room.
	select {
	case <-c.gone:
		return ErrConsumerGone
	default:
	}

	select {
	case c.ch <- chunk:
		return nil
	case <-c.gone:
		return ErrConsumerGone
	}
}

// TrySend enqueues c only if there is room right now.
func (c *Channel) TrySend(chunk Chunk) bool {
	select {
	case <-c.gone:
		return false
	default:
	}

	select {
	case c.ch <- chunk:
		return true
	default:
		return false
	}
}

// Close marks the end of the stream. Only the producer side calls it.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		close(c.ch)
	})
}

// Abandon tells the producer side that nobody will drain the channel again.
func (c *Channel) Abandon() {
	c.abandonOnce.Do(func() {
		close(c.gone)
	})
}

// Abandoned reports whether Abandon has been called.
func (c *Channel) Abandoned() bool {
	select {
	case <-c.gone:
		return true
	default:
		return false
	}
}

// Chunks returns the receive side. It is closed after the last chunk.
func (c *Channel) Chunks() <-chan Chunk {
	return c.ch
}

// Len returns the number of queued chunks.
func (c *Channel) Len() int { return len(c.ch) }

// Cap returns the queue capacity.
func (c *Channel) Cap() int { return cap(c.ch) }
