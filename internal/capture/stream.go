package capture

import (
	"context"
	"sync"
	"time"
)

// Stream is a Source fed by a remote camera, usually the browser's webcam
// pushing frames over a websocket. It becomes ready with the first frame and
// stops being ready when the remote side disconnects.
type Stream struct {
	constraints Constraints
	staleAfter  time.Duration
	now         func() time.Time

	mu     sync.RWMutex
	latest *Frame
	frames uint64
}

// NewStream creates a stream that is not ready yet.
// Frames older than staleAfter are not handed out; zero keeps them forever.
func NewStream(c Constraints, staleAfter time.Duration) *Stream {
	return &Stream{
		constraints: c,
		staleAfter:  staleAfter,
		now:         time.Now,
	}
}

// Push decodes an encoded frame and makes it the current one.
func (s *Stream) Push(data []byte) (Frame, error) {
	frame, err := DecodeFrame(data, s.constraints)
	if err != nil {
		return Frame{}, err
	}
	frame.CapturedAt = s.now()

	s.mu.Lock()
	s.latest = &frame
	s.frames++
	s.mu.Unlock()

	return frame, nil
}

// Disconnect drops the current frame; the stream is not ready until the next Push.
func (s *Stream) Disconnect() {
	s.mu.Lock()
	s.latest = nil
	s.mu.Unlock()
}

// Ready reports whether CaptureFrame would return a frame right now.
func (s *Stream) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readyLocked()
}

func (s *Stream) readyLocked() bool {
	if s.latest == nil {
		return false
	}
	if s.staleAfter > 0 && s.now().Sub(s.latest.CapturedAt) > s.staleAfter {
		return false
	}
	return true
}

// Frames returns how many frames have been pushed over the stream's lifetime.
func (s *Stream) Frames() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames
}

// CaptureFrame returns the most recent frame.
func (s *Stream) CaptureFrame(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.readyLocked() {
		return Frame{}, ErrDeviceNotReady
	}
	return *s.latest, nil
}
