package facematch

import (
	"context"
	"fmt"
	"time"

	"github.com/kozaktomas/face-login/internal/capture"
)

// Detector runs single-face detection, landmarking and embedding extraction on a frame.
type Detector interface {
	Detect(ctx context.Context, frame capture.Frame) (Detection, error)
}

// ModelGate reports whether the recognition models finished loading.
type ModelGate interface {
	Loaded() bool
}

// Options tune the matcher.
type Options struct {
	// Threshold is the maximum distance that still counts as a match.
	Threshold float64
	// Dim is the expected embedding length; 0 accepts any length.
	Dim int
	// ClearOnFailedRegister drops an existing registration when a
	// registration frame contains no face.
	ClearOnFailedRegister bool
	// DetectTimeout bounds a single detection call; 0 means no limit.
	DetectTimeout time.Duration
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Threshold:             DefaultThreshold,
		Dim:                   DefaultDim,
		ClearOnFailedRegister: true,
		DetectTimeout:         10 * time.Second,
	}
}

// Matcher registers and authenticates faces against a caller-owned Session.
type Matcher struct {
	detector Detector
	models   ModelGate
	opts     Options
}

// NewMatcher creates a matcher. A nil gate treats the models as always loaded.
func NewMatcher(detector Detector, models ModelGate, opts Options) *Matcher {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	return &Matcher{
		detector: detector,
		models:   models,
		opts:     opts,
	}
}

// Threshold returns the configured match threshold.
func (m *Matcher) Threshold() float64 {
	return m.opts.Threshold
}

// ModelsLoaded reports whether operations are accepted.
func (m *Matcher) ModelsLoaded() bool {
	return m.models == nil || m.models.Loaded()
}

// Register detects the face in frame and stores its embedding as the only registration.
func (m *Matcher) Register(ctx context.Context, s *Session, frame capture.Frame) error {
	if !m.ModelsLoaded() {
		return ErrModelsNotLoaded
	}

	det, err := m.detect(ctx, frame)
	if err != nil {
		return err
	}

	switch d := det.(type) {
	case Detected:
		s.store(d.Embedding)
		return nil
	default:
		if m.opts.ClearOnFailedRegister {
			s.Clear()
		}
		return ErrNoFaceDetected
	}
}

// Authenticate compares the face in frame against the session's registration.
// The session is never modified.
func (m *Matcher) Authenticate(ctx context.Context, s *Session, frame capture.Frame) (MatchResult, error) {
	if !m.ModelsLoaded() {
		return MatchResult{}, ErrModelsNotLoaded
	}

	stored := s.Embedding()
	if stored == nil {
		return MatchResult{}, ErrNotRegistered
	}

	det, err := m.detect(ctx, frame)
	if err != nil {
		return MatchResult{}, err
	}

	d, ok := det.(Detected)
	if !ok {
		return MatchResult{}, ErrNoFaceDetected
	}
	return Compare(stored, d.Embedding, m.opts.Threshold), nil
}

// CaptureAndRegister grabs a frame from src and registers it.
func (m *Matcher) CaptureAndRegister(ctx context.Context, s *Session, src capture.Source) error {
	if !m.ModelsLoaded() {
		return ErrModelsNotLoaded
	}

	frame, err := src.CaptureFrame(ctx)
	if err != nil {
		return fmt.Errorf("capture frame: %w", err)
	}
	return m.Register(ctx, s, frame)
}

// CaptureAndAuthenticate checks the registration, grabs a frame from src and authenticates it.
func (m *Matcher) CaptureAndAuthenticate(ctx context.Context, s *Session, src capture.Source) (MatchResult, error) {
	if !m.ModelsLoaded() {
		return MatchResult{}, ErrModelsNotLoaded
	}
	if !s.Registered() {
		return MatchResult{}, ErrNotRegistered
	}

	frame, err := src.CaptureFrame(ctx)
	if err != nil {
		return MatchResult{}, fmt.Errorf("capture frame: %w", err)
	}
	return m.Authenticate(ctx, s, frame)
}

func (m *Matcher) detect(ctx context.Context, frame capture.Frame) (Detection, error) {
	if m.opts.DetectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.DetectTimeout)
		defer cancel()
	}

	det, err := m.detector.Detect(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("detect face: %w", err)
	}

	switch d := det.(type) {
	case Detected:
		if len(d.Embedding) == 0 {
			return NotDetected{}, nil
		}
		if m.opts.Dim > 0 && len(d.Embedding) != m.opts.Dim {
			return nil, fmt.Errorf("%w: got %d values, want %d", ErrDimensionMismatch, len(d.Embedding), m.opts.Dim)
		}
		return d, nil
	case nil:
		return NotDetected{}, nil
	default:
		return det, nil
	}
}
