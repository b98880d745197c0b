package relay

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"audio-relay/internal/logging"
	"audio-relay/internal/metrics"

	"github.com/google/uuid"
)

// Defaults for Config.
const (
	DefaultChunkSize     = 8 * 1024
	DefaultQueueCapacity = 32
)

// Producer is the process side of a relay. *extractor.Process satisfies it.
type Producer interface {
	// Stdout is read until EOF by the pump and closed when it stops early.
	Stdout() io.ReadCloser
	// Wait reaps the process once reading has stopped.
	Wait() error
	// Terminate asks the process to stop without blocking.
	Terminate()
}

// Config controls a Relay.
type Config struct {
	// ChunkSize is the size of each stdout read.
	ChunkSize int
	// QueueCapacity is the number of chunks buffered between pump and consumer.
	QueueCapacity int
	// TerminateOnAbandon stops the producer as soon as the consumer leaves.
	TerminateOnAbandon bool
}

// DefaultConfig returns an 8 KiB chunk size and a 32 slot queue.
func DefaultConfig() Config {
	return Config{
		ChunkSize:          DefaultChunkSize,
		QueueCapacity:      DefaultQueueCapacity,
		TerminateOnAbandon: true,
	}
}

// Relay moves one producer's stdout into one Channel.
type Relay struct {
	ID string

	config   Config
	producer Producer
	ch       *Channel
	log      logging.Scoped

	state   atomic.Int32
	bytes   atomic.Int64
	started time.Time
	done    chan struct{}
	err     error
}

// New creates an idle Relay.
func New(config Config) *Relay {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}
	if config.QueueCapacity <= 0 {
		config.QueueCapacity = DefaultQueueCapacity
	}

	id := uuid.NewString()
	return &Relay{
		ID:     id,
		config: config,
		ch:     NewChannel(config.QueueCapacity),
		log:    logging.With("relay " + id[:8]),
		done:   make(chan struct{}),
	}
}

// Start attaches a running producer and begins pumping in a new goroutine.
// It must be called at most once.
func (r *Relay) Start(p Producer) error {
	if !r.state.CompareAndSwap(int32(StateIdle), int32(StateSpawned)) {
		return fmt.Errorf("relay %s already started", r.ID)
	}
	r.producer = p
	r.started = time.Now()

	metrics.RelaysStartedTotal.Inc()
	metrics.RelaysInProgress.Inc()

	go r.pump()
	return nil
}

// Chunks returns the queue's receive side for the consumer.
func (r *Relay) Chunks() <-chan Chunk {
	return r.ch.Chunks()
}

// Abandon is called by the consumer when it will not drain the queue again,
// for example because the client disconnected.
func (r *Relay) Abandon() {
	if r.ch.Abandoned() {
		return
	}
	r.ch.Abandon()
	if r.config.TerminateOnAbandon && r.producer != nil && !r.State().Terminal() {
		r.producer.Terminate()
	}
}

// State returns the current lifecycle state.
func (r *Relay) State() State {
	return State(r.state.Load())
}

// Done is closed after the pump has stopped and the producer is reaped.
func (r *Relay) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until Done and returns the failure that ended the relay, if any.
// An abandoned relay returns nil.
func (r *Relay) Wait() error {
	<-r.done
	return r.err
}

// BytesRelayed returns the number of bytes enqueued so far.
func (r *Relay) BytesRelayed() int64 {
	return r.bytes.Load()
}

func (r *Relay) pump() {
	defer close(r.done)
	defer r.ch.Close()

	r.state.Store(int32(StateStreaming))
	stdout := r.producer.Stdout()
	buf := make([]byte, r.config.ChunkSize)

	var readErr error
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			if sendErr := r.send(Chunk{Data: data}); sendErr != nil {
				break
			}
			r.bytes.Add(int64(n))
			metrics.RelayBytesTotal.Add(float64(n))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr = err
			break
		}
	}

	switch {
	case r.ch.Abandoned():
		r.abandoned(stdout)
	case readErr != nil:
		// Nobody will read the rest, so the producer has to go.
		r.producer.Terminate()
		_ = stdout.Close()
		_ = r.producer.Wait()
		r.fail(fmt.Errorf("read producer output: %w", readErr))
	default:
		if err := r.producer.Wait(); err != nil {
			r.fail(err)
			return
		}
		r.finish(StateCompleted)
	}
}

// send enqueues c, counting the times the consumer is behind.
func (r *Relay) send(c Chunk) error {
	if r.ch.TrySend(c) {
		return nil
	}
	if r.ch.Abandoned() {
		return ErrConsumerGone
	}
	metrics.RelayQueueFullTotal.Inc()
	return r.ch.Send(c)
}

func (r *Relay) abandoned(stdout io.ReadCloser) {
	if r.config.TerminateOnAbandon {
		r.producer.Terminate()
	}
	// Closing our end makes the producer's next write fail.
	_ = stdout.Close()
	if err := r.producer.Wait(); err != nil {
		r.log.Debug("Producer exit after abandonment: %v", err)
	}
	r.finish(StateAbandoned)
}

// fail enqueues err as the single terminal chunk.
func (r *Relay) fail(err error) {
	if sendErr := r.ch.Send(Chunk{Err: err}); errors.Is(sendErr, ErrConsumerGone) {
		r.finish(StateAbandoned)
		return
	}
	r.err = err
	r.finish(StateFailed)
}

func (r *Relay) finish(s State) {
	r.state.Store(int32(s))

	outcome := metrics.OutcomeCompleted
	switch s {
	case StateFailed:
		outcome = metrics.OutcomeFailed
	case StateAbandoned:
		outcome = metrics.OutcomeAbandoned
	}

	elapsed := time.Since(r.started)
	metrics.RelaysInProgress.Dec()
	metrics.RelaysFinishedTotal.WithLabelValues(outcome).Inc()
	metrics.RelayDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())

	switch s {
	case StateFailed:
		r.log.Warn("Relay failed after %d bytes in %v: %v", r.BytesRelayed(), elapsed, r.err)
	case StateAbandoned:
		r.log.Debug("Relay abandoned by consumer after %d bytes in %v", r.BytesRelayed(), elapsed)
	default:
		r.log.Debug("Relay completed: %d bytes in %v", r.BytesRelayed(), elapsed)
	}
}
