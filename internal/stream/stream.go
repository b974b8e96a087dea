package stream

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	// DefaultBufferSize is the default capacity of the outcome channel.
	DefaultBufferSize = 16

	// DefaultReadSize is the default size of a single read from the source.
	DefaultReadSize = 4096
)

// State describes where a Stream is in its lifecycle. It only moves forward.
type State int32

const (
	// StateOpen means the relay is still reading from the source.
	StateOpen State = iota
	// StateDraining means the relay has stopped but buffered outcomes remain.
	StateDraining
	// StateClosed means Recv will only return io.EOF.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// outcome is one item on the relay channel: an event or a per-record error.
type outcome struct {
	event Event
	err   error
}

// Option configures a Stream.
type Option func(*Stream)

// WithBufferSize sets how many outcomes may wait for the consumer before the
// relay stops reading from the source.
func WithBufferSize(n int) Option {
	return func(s *Stream) {
		if n > 0 {
			s.bufferSize = n
		}
	}
}

// WithReadSize sets the size of the buffer passed to each source Read.
func WithReadSize(n int) Option {
	return func(s *Stream) {
		if n > 0 {
			s.readSize = n
		}
	}
}

// WithLogger sets the logger used for relay diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stream) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithContext ties the relay to ctx, typically the HTTP request context. Once
// ctx is done the source is closed and the relay exits without waiting for
// the consumer; outcomes already buffered are still returned by Recv, then
// io.EOF. A caller that cancels ctx and never calls Close leaks nothing.
func WithContext(ctx context.Context) Option {
	return func(s *Stream) {
		if ctx != nil {
			s.ctx = ctx
		}
	}
}

// WithCancel registers a function called once the stream no longer needs the
// source, typically the cancel func of the HTTP request context.
func WithCancel(cancel context.CancelFunc) Option {
	return func(s *Stream) {
		s.cancel = cancel
	}
}

// Stream is the consumer handle of a chat stream. A single goroutine reads
// the source, frames and decodes records, and hands outcomes to Recv through
// a bounded channel. Recv and Close must be called from one consumer.
type Stream struct {
	src    io.ReadCloser
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	bufferSize int
	readSize   int

	out  chan outcome
	stop chan struct{}
	done chan struct{}

	stopWatch  func() bool
	stopOnce   sync.Once
	sourceOnce sync.Once
	closed     atomic.Bool
}

// New starts relaying src. The source is closed by the stream, either when it
// is exhausted, when Close is called or when the WithContext ctx is done.
// Close may run while a Read is blocked,
// so src must tolerate a concurrent Close; net/http response bodies do.
func New(src io.ReadCloser, opts ...Option) *Stream {
	s := &Stream{
		src:        src,
		ctx:        context.Background(),
		logger:     slog.Default(),
		bufferSize: DefaultBufferSize,
		readSize:   DefaultReadSize,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.out = make(chan outcome, s.bufferSize)
	s.stopWatch = context.AfterFunc(s.ctx, s.closeSource)

	go s.relay()

	return s
}

// Recv returns the next event in arrival order. The error is a *DecodeError
// when one record was rejected (the stream continues), a *TransportError when
// the connection failed (nothing follows it), io.EOF once the stream is closed
// and drained, or ctx.Err() if ctx ends first.
func (s *Stream) Recv(ctx context.Context) (Event, error) {
	if s.closed.Load() {
		return nil, io.EOF
	}

	select {
	case o, ok := <-s.out:
		if !ok {
			s.closed.Store(true)
			return nil, io.EOF
		}
		return o.event, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// All returns an iterator over the remaining outcomes. Iteration ends at
// io.EOF; a ctx error is yielded once before it ends.
func (s *Stream) All(ctx context.Context) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for {
			ev, err := s.Recv(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(ev, err) {
				return
			}
			if ctx.Err() != nil {
				return
			}
		}
	}
}

// Close abandons the stream. The relay stops reading, the source is closed
// and Close returns once the relay goroutine has exited. It is safe to call
// more than once.
func (s *Stream) Close() error {
	s.closed.Store(true)
	s.stopOnce.Do(func() { close(s.stop) })
	if s.cancel != nil {
		s.cancel()
	}
	s.closeSource()
	<-s.done
	return nil
}

// State reports the lifecycle state of the stream.
func (s *Stream) State() State {
	if s.closed.Load() {
		return StateClosed
	}
	select {
	case <-s.done:
		return StateDraining
	default:
		return StateOpen
	}
}

// Done is closed when the relay goroutine has exited.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

func (s *Stream) relay() {
	defer close(s.done)
	defer close(s.out)
	defer s.release()

	framer := NewFramer()
	buf := make([]byte, s.readSize)
	var ended bool

	for {
		if s.stopped() {
			s.logger.Debug("chat stream abandoned", "ctx_err", s.ctx.Err())
			return
		}

		n, err := s.src.Read(buf)
		if n > 0 {
			for _, record := range framer.Feed(buf[:n]) {
				if !s.deliver(record, &ended) {
					return
				}
			}
		}
		if err == nil {
			continue
		}

		if errors.Is(err, io.EOF) {
			if record := framer.Flush(); record != nil {
				s.deliver(record, &ended)
			}
			s.logger.Debug("chat stream finished", "stream_end_seen", ended)
			return
		}

		if s.stopped() {
			return
		}
		if ended {
			s.logger.Debug("chat stream transport error after stream-end ignored", "error", err)
			return
		}
		s.logger.Debug("chat stream transport error",
			"error", err,
			"discarded_bytes", framer.Buffered(),
		)
		s.send(outcome{err: &TransportError{Err: err}})
		return
	}
}

// deliver decodes one record and sends its outcome. It returns false if the
// consumer has gone away.
func (s *Stream) deliver(record []byte, ended *bool) bool {
	ev, err := Decode(record)
	if err != nil {
		s.logger.Debug("chat stream record rejected", "error", err)
	} else if ev.Type() == EventStreamEnd {
		*ended = true
	}
	return s.send(outcome{event: ev, err: err})
}

func (s *Stream) send(o outcome) bool {
	select {
	case s.out <- o:
		return true
	case <-s.stop:
		return false
	case <-s.ctx.Done():
		return false
	}
}

func (s *Stream) stopped() bool {
	select {
	case <-s.stop:
		return true
	case <-s.ctx.Done():
		return true
	default:
		return false
	}
}

func (s *Stream) release() {
	s.stopWatch()
	s.closeSource()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Stream) closeSource() {
	s.sourceOnce.Do(func() {
		if err := s.src.Close(); err != nil {
			s.logger.Debug("closing chat stream source", "error", err)
		}
	})
}

// Transcript is the accumulated result of reading a stream to the end.
type Transcript struct {
	GenerationID string
	Text         string
	End          *StreamEnd
	// DecodeErrors holds every record that was rejected along the way.
	DecodeErrors []error
}

// Collect reads the stream until it ends, concatenating text fragments. A
// transport or context error is returned with the partial transcript.
func (s *Stream) Collect(ctx context.Context) (*Transcript, error) {
	t := &Transcript{}
	var text strings.Builder
	defer func() { t.Text = text.String() }()

	for ev, err := range s.All(ctx) {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			t.DecodeErrors = append(t.DecodeErrors, err)
			continue
		}
		if err != nil {
			return t, err
		}

		switch e := ev.(type) {
		case *StreamStart:
			t.GenerationID = e.GenerationID
		case *TextGeneration:
			text.WriteString(e.Text)
		case *StreamEnd:
			t.End = e
		}
	}

	return t, nil
}
