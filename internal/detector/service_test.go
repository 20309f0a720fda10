package detector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/face-login/internal/capture"
	"github.com/kozaktomas/face-login/internal/facematch"
	"github.com/kozaktomas/face-login/internal/models"
)

var jpegMagic = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F', 'I', 'F'}

func newFaceServer(t *testing.T, resp FaceResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/face" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		file.Close()
		if ct := header.Header.Get("Content-Type"); ct != "image/jpeg" {
			http.Error(w, "unexpected content type "+ct, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestService_Detect_PicksHighestScore(t *testing.T) {
	server := newFaceServer(t, FaceResponse{
		FacesCount: 2,
		Faces: []FaceDetection{
			{FaceIndex: 0, Dim: 2, Embedding: []float32{1, 0}, BBox: []float64{0, 0, 10, 10}, DetScore: 0.7},
			{FaceIndex: 1, Dim: 2, Embedding: []float32{0, 1}, BBox: []float64{5, 5, 25, 25}, DetScore: 0.95},
		},
		Model: "buffalo_l",
	})
	defer server.Close()

	svc := NewService(server.URL, time.Second)
	det, err := svc.Detect(context.Background(), capture.Frame{Data: jpegMagic})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	d, ok := det.(facematch.Detected)
	if !ok {
		t.Fatalf("expected Detected, got %T", det)
	}
	if d.Score != 0.95 {
		t.Errorf("expected score 0.95, got %v", d.Score)
	}
	if d.Embedding[1] != 1 {
		t.Errorf("expected embedding of second face, got %v", d.Embedding)
	}
	if d.Box.X2 != 25 {
		t.Errorf("expected bbox of second face, got %+v", d.Box)
	}
}

func TestService_Detect_NoFaces(t *testing.T) {
	server := newFaceServer(t, FaceResponse{FacesCount: 0, Faces: []FaceDetection{}})
	defer server.Close()

	det, err := NewService(server.URL, time.Second).Detect(context.Background(), capture.Frame{Data: jpegMagic})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if _, ok := det.(facematch.NotDetected); !ok {
		t.Errorf("expected NotDetected, got %T", det)
	}
}

func TestService_Detect_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewService(server.URL, time.Second).Detect(context.Background(), capture.Frame{Data: jpegMagic})
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Errorf("expected status 500 error, got %v", err)
	}
}

func TestService_Detect_EmptyFrame(t *testing.T) {
	if _, err := NewService("http://127.0.0.1:1", time.Second).Detect(context.Background(), capture.Frame{}); err == nil {
		t.Error("expected error for empty frame")
	}
}

func TestService_LoadBundles(t *testing.T) {
	tests := []struct {
		name    string
		loaded  []string
		wantErr string
	}{
		{
			name:   "all loaded",
			loaded: []string{"ssd_mobilenetv1", "face_landmark_68", "face_recognition", "extra"},
		},
		{
			name:    "one missing",
			loaded:  []string{"ssd_mobilenetv1", "face_landmark_68"},
			wantErr: "face_recognition",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/models" {
					http.NotFound(w, r)
					return
				}
				_ = json.NewEncoder(w).Encode(modelsResponse{Models: tt.loaded})
			}))
			defer server.Close()

			err := NewService(server.URL, time.Second).LoadBundles(context.Background(), "", models.DefaultManifest().Bundles)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("LoadBundles() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadBundles() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestNew(t *testing.T) {
	if b, err := New(Config{Kind: KindService}); err != nil {
		t.Errorf("New(service) error = %v", err)
	} else if _, ok := b.(*Service); !ok {
		t.Errorf("expected *Service, got %T", b)
	}

	if b, err := New(Config{}); err != nil || b == nil {
		t.Errorf("New(default) = %v, %v", b, err)
	}

	if _, err := New(Config{Kind: "opencv"}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestBoxFromBBox(t *testing.T) {
	if got := boxFromBBox([]float64{1, 2, 3, 4}); got != (facematch.Box{X1: 1, Y1: 2, X2: 3, Y2: 4}) {
		t.Errorf("boxFromBBox() = %+v", got)
	}
	if got := boxFromBBox([]float64{1, 2}); got != (facematch.Box{}) {
		t.Errorf("boxFromBBox() with short input = %+v", got)
	}
}
