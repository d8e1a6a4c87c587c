package advisory

import (
	"context"
	"io"
	"sync"
)

// Stream is a lazy, finite, non-restartable sequence of text chunks.
// Closing it cancels the upstream connection; receiving after the
// producer finished yields io.EOF, or the producer's terminal error.
type Stream struct {
	ch   chan string
	done chan struct{}

	cancel    context.CancelFunc
	closeOnce sync.Once

	err error // set by the producer before ch is closed
}

// StreamWriter is the producer side of a Stream.
type StreamWriter struct {
	s *Stream
}

// NewStream creates a connected stream/writer pair. cancel is invoked
// when the consumer closes the stream.
func NewStream(cancel context.CancelFunc) (*Stream, *StreamWriter) {
	s := &Stream{
		ch:     make(chan string),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	return s, &StreamWriter{s: s}
}

// Recv returns the next text chunk. It returns io.EOF after a clean
// end of stream, or the producer's terminal error.
func (s *Stream) Recv() (string, error) {
	text, ok := <-s.ch
	if !ok {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	return text, nil
}

// Close cancels the stream. Safe to call more than once; pending and
// future Recv calls are released once the producer observes the cancel.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// Write delivers one chunk to the consumer. It reports false once the
// consumer has closed the stream; the producer should stop then.
func (w *StreamWriter) Write(text string) bool {
	select {
	case w.s.ch <- text:
		return true
	case <-w.s.done:
		return false
	}
}

// End terminates the stream. A nil err means a clean end (Recv returns
// io.EOF); a non-nil err is surfaced to the consumer instead of partial
// garbled text. Must be called exactly once.
func (w *StreamWriter) End(err error) {
	w.s.err = err
	close(w.s.ch)
}
