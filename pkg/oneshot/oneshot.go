package oneshot

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrReceiverClosed is returned by Send when the Receiver was dropped.
	ErrReceiverClosed = errors.New("oneshot: receiver closed")

	// ErrDisconnected is returned by Recv when the Sender was closed
	// without sending a value.
	ErrDisconnected = errors.New("oneshot: sender closed without a value")

	// ErrAlreadySent is returned by a second Send on the same Sender.
	ErrAlreadySent = errors.New("oneshot: value already sent")
)

type state[T any] struct {
	mu       sync.Mutex
	ready    chan struct{}
	value    T
	sent     bool
	closed   bool // sender side finished
	received bool // receiver side finished or dropped
}

// Sender is the producing half. It is owned by exactly one goroutine.
type Sender[T any] struct {
	s *state[T]
}

// Receiver is the consuming half.
type Receiver[T any] struct {
	s *state[T]
}

// New returns a connected Sender and Receiver.
func New[T any]() (*Sender[T], *Receiver[T]) {
	s := &state[T]{ready: make(chan struct{})}
	return &Sender[T]{s: s}, &Receiver[T]{s: s}
}

// Send delivers v. It never blocks.
func (tx *Sender[T]) Send(v T) error {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrAlreadySent
	}
	s.closed = true
	if s.received {
		close(s.ready)
		return ErrReceiverClosed
	}
	s.value = v
	s.sent = true
	close(s.ready)
	return nil
}

// Close releases the Sender without a value. Closing after Send is a no-op.
func (tx *Sender[T]) Close() {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.ready)
}

// ReceiverClosed reports whether the Receiver has been dropped.
func (tx *Sender[T]) ReceiverClosed() bool {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	return tx.s.received
}

// Recv waits for the value. If ctx ends first, the Receiver is dropped and
// a later Send reports ErrReceiverClosed.
func (rx *Receiver[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	s := rx.s

	select {
	case <-s.ready:
	case <-ctx.Done():
		s.mu.Lock()
		// The value may have landed between the select and the lock.
		if s.sent && !s.received {
			s.received = true
			v := s.value
			s.mu.Unlock()
			return v, nil
		}
		s.received = true
		s.mu.Unlock()
		return zero, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sent || s.received {
		s.received = true
		return zero, ErrDisconnected
	}
	s.received = true
	v := s.value
	s.value = zero
	return v, nil
}

// Close drops the Receiver. A pending or later Send reports
// ErrReceiverClosed.
func (rx *Receiver[T]) Close() {
	rx.s.mu.Lock()
	defer rx.s.mu.Unlock()
	rx.s.received = true
}
