package fetch

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"
)

// ErrReadStalled reports that a single read exceeded the read timeout. The
// in-flight request is canceled; the stream is no longer usable.
var ErrReadStalled = errors.New("read stalled past timeout")

// Stream is one source attempt's response body with a per-read stall timeout.
type Stream struct {
	url         string
	resp        *http.Response
	cancel      context.CancelFunc
	timer       *time.Timer
	readTimeout time.Duration
	stalled     atomic.Bool
}

func newStream(url string, resp *http.Response, cancel context.CancelFunc, readTimeout time.Duration) *Stream {
	s := &Stream{
		url:         url,
		resp:        resp,
		cancel:      cancel,
		readTimeout: readTimeout,
	}
	if readTimeout > 0 {
		// Armed per read; firing cancels the request so the blocked Read
		// returns instead of hanging on a dead connection.
		s.timer = time.AfterFunc(readTimeout, func() {
			s.stalled.Store(true)
			cancel()
		})
		s.timer.Stop()
	}
	return s
}

// URL returns the source this stream was opened against.
func (s *Stream) URL() string {
	return s.url
}

// Read reads up to len(p) bytes from the response body. A read that blocks
// longer than the read timeout aborts the request and returns ErrReadStalled.
func (s *Stream) Read(p []byte) (int, error) {
	if s.timer != nil {
		s.timer.Reset(s.readTimeout)
		defer s.timer.Stop()
	}
	n, err := s.resp.Body.Read(p)
	if err != nil && s.stalled.Load() {
		return n, ErrReadStalled
	}
	return n, err
}

// Close releases the connection. Safe to call after a failed read.
func (s *Stream) Close() error {
	if s.timer != nil {
		s.timer.Stop()
	}
	err := s.resp.Body.Close()
	s.cancel()
	return err
}
