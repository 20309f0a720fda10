package capture

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStream_NotReadyBeforeFirstFrame(t *testing.T) {
	s := NewStream(DefaultConstraints(), 0)

	if s.Ready() {
		t.Error("new stream should not be ready")
	}
	if _, err := s.CaptureFrame(context.Background()); !errors.Is(err, ErrDeviceNotReady) {
		t.Errorf("CaptureFrame() error = %v, want ErrDeviceNotReady", err)
	}
}

func TestStream_PushAndCapture(t *testing.T) {
	s := NewStream(DefaultConstraints(), 0)

	pushed, err := s.Push(jpegBytes(t, 64, 48))
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	got, err := s.CaptureFrame(context.Background())
	if err != nil {
		t.Fatalf("CaptureFrame() error = %v", err)
	}
	if got.Width != pushed.Width || got.Height != pushed.Height {
		t.Errorf("captured %dx%d, pushed %dx%d", got.Width, got.Height, pushed.Width, pushed.Height)
	}
	if s.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", s.Frames())
	}
}

func TestStream_BadFrameKeepsPrevious(t *testing.T) {
	s := NewStream(DefaultConstraints(), 0)
	if _, err := s.Push(jpegBytes(t, 64, 48)); err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	if _, err := s.Push([]byte("garbage")); err == nil {
		t.Fatal("expected error for garbage frame")
	}
	if !s.Ready() {
		t.Error("stream should still be ready after a bad frame")
	}
	if s.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", s.Frames())
	}
}

func TestStream_Disconnect(t *testing.T) {
	s := NewStream(DefaultConstraints(), 0)
	_, _ = s.Push(jpegBytes(t, 64, 48))
	s.Disconnect()

	if _, err := s.CaptureFrame(context.Background()); !errors.Is(err, ErrDeviceNotReady) {
		t.Errorf("CaptureFrame() error = %v, want ErrDeviceNotReady", err)
	}
}

func TestStream_StaleFrame(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStream(DefaultConstraints(), 2*time.Second)
	s.now = func() time.Time { return now }

	_, _ = s.Push(jpegBytes(t, 64, 48))
	if !s.Ready() {
		t.Fatal("expected fresh frame to be ready")
	}

	now = now.Add(3 * time.Second)
	if _, err := s.CaptureFrame(context.Background()); !errors.Is(err, ErrDeviceNotReady) {
		t.Errorf("CaptureFrame() error = %v, want ErrDeviceNotReady", err)
	}
}

func TestStream_CancelledContext(t *testing.T) {
	s := NewStream(DefaultConstraints(), 0)
	_, _ = s.Push(jpegBytes(t, 64, 48))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.CaptureFrame(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("CaptureFrame() error = %v, want context.Canceled", err)
	}
}
