package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/kozaktomas/face-login/internal/capture"
	"github.com/kozaktomas/face-login/internal/config"
	"github.com/kozaktomas/face-login/internal/database"
	"github.com/kozaktomas/face-login/internal/facematch"
	"github.com/kozaktomas/face-login/internal/web/middleware"
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Web: config.WebConfig{
			PostLoginPath: "/punchedin-successful",
		},
		Camera: config.CameraConfig{
			FacingMode: "user",
			Width:      640,
			Height:     480,
		},
		Detector: config.DetectorConfig{Kind: "service"},
		Matcher: config.MatcherConfig{
			Threshold:             0.6,
			Dim:                   4,
			ClearOnFailedRegister: true,
		},
	}
}

// frameJPEG encodes a small solid image whose red channel selects the fake detection.
func frameJPEG(t *testing.T, red uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := range 16 {
		for x := range 16 {
			img.Set(x, y, color.RGBA{R: red, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// colorDetector returns an embedding derived from the frame's top-left pixel.
// Dark frames (red < 32) contain no face.
type colorDetector struct{}

func (colorDetector) Detect(ctx context.Context, frame capture.Frame) (facematch.Detection, error) {
	img, err := jpeg.Decode(bytes.NewReader(frame.Data))
	if err != nil {
		return nil, err
	}
	r, _, _, _ := img.At(0, 0).RGBA()
	red := float64(r>>8) / 255
	if red < 32.0/255 {
		return facematch.NotDetected{}, nil
	}
	return facematch.Detected{Embedding: facematch.Embedding{red, 0, 0, 0}, Score: 0.9}, nil
}

type staticGate bool

func (g staticGate) Loaded() bool { return bool(g) }

// memoryEvents collects recorded audit events
type memoryEvents struct {
	mu     sync.Mutex
	events []database.AuthEvent
	err    error
}

func (m *memoryEvents) Record(ctx context.Context, e *database.AuthEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, *e)
	return nil
}

func (m *memoryEvents) outcomes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Kind + ":" + e.Outcome
	}
	return out
}

func newTestMatcher(loaded bool) *facematch.Matcher {
	opts := facematch.DefaultOptions()
	opts.Dim = 4
	return facematch.NewMatcher(colorDetector{}, staticGate(loaded), opts)
}

func newTestSessionManager(t *testing.T) *middleware.SessionManager {
	t.Helper()
	sm := middleware.NewSessionManager("test-secret", capture.DefaultConstraints(), 0)
	t.Cleanup(sm.Stop)
	return sm
}

// requestWithSession creates a request with the session in context
func requestWithSession(method, path string, body []byte, session *middleware.Session) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	return req.WithContext(middleware.SetSessionInContext(req.Context(), session))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%v'", expectedMessage, result["error"])
	}
}
