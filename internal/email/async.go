// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package email

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"
)

// ErrQueueFull is returned when the AsyncSink queue has no room.
var ErrQueueFull = oops.Code("EMAIL_QUEUE_FULL").Errorf("email queue is full")

// ErrClosed is returned by Send after Close.
var ErrClosed = oops.Code("EMAIL_SINK_CLOSED").Errorf("email sink is closed")

// ResultFunc observes the outcome of each delivery attempt.
type ResultFunc func(kind Kind, err error)

// AsyncOptions tunes an AsyncSink.
type AsyncOptions struct {
	// Workers is the number of delivery goroutines. Defaults to 2.
	Workers int
	// QueueSize bounds pending messages. Defaults to 100.
	QueueSize int
	// Timeout bounds one delivery. Defaults to 15s.
	Timeout  time.Duration
	Logger   *slog.Logger
	OnResult ResultFunc
}

// AsyncSink queues messages and delivers them from background workers so
// request handlers never wait on the mail provider. Failures are logged and
// reported to OnResult; they are not retried.
type AsyncSink struct {
	next    Sink
	queue   chan Message
	timeout time.Duration
	logger  *slog.Logger
	result  ResultFunc

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAsyncSink starts the workers in front of next.
func NewAsyncSink(next Sink, opts AsyncOptions) *AsyncSink {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 100
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.OnResult == nil {
		opts.OnResult = func(Kind, error) {}
	}
	s := &AsyncSink{
		next:    next,
		queue:   make(chan Message, opts.QueueSize),
		timeout: opts.Timeout,
		logger:  opts.Logger,
		result:  opts.OnResult,
	}
	for range opts.Workers {
		s.wg.Add(1)
		go s.work()
	}
	return s
}

func (s *AsyncSink) work() {
	defer s.wg.Done()
	for msg := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err := s.next.Send(ctx, msg)
		cancel()
		s.result(msg.Kind, err)
		if err != nil {
			s.logger.Error("email delivery failed",
				"kind", string(msg.Kind),
				"to", msg.To,
				"error", err.Error())
			continue
		}
		s.logger.Info("email delivered", "kind", string(msg.Kind), "to", msg.To)
	}
}

// Send enqueues msg without blocking. It fails only when the queue is full
// or the sink is closed.
func (s *AsyncSink) Send(ctx context.Context, msg Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	select {
	case s.queue <- msg:
		return nil
	default:
		s.logger.WarnContext(ctx, "email dropped, queue full", "kind", string(msg.Kind), "to", msg.To)
		s.result(msg.Kind, ErrQueueFull)
		return ErrQueueFull
	}
}

// Close stops accepting messages, drains the queue and waits for the
// workers to finish.
func (s *AsyncSink) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}

var _ Sink = (*AsyncSink)(nil)
