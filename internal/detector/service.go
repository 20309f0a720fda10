package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"slices"
	"strings"
	"time"

	"github.com/kozaktomas/face-login/internal/capture"
	"github.com/kozaktomas/face-login/internal/facematch"
	"github.com/kozaktomas/face-login/internal/models"
)

const defaultServiceURL = "http://localhost:8000"

// Service detects faces through the face embedding server.
type Service struct {
	baseURL string
	client  *http.Client
}

// NewService creates a client for the embedding server at baseURL.
func NewService(baseURL string, timeout time.Duration) *Service {
	if baseURL == "" {
		baseURL = defaultServiceURL
	}
	return &Service{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// FaceDetection represents a single detected face
type FaceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// FaceResponse represents the response from the face embedding endpoint
type FaceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []FaceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// modelsResponse lists the models the server has in memory.
type modelsResponse struct {
	Models []string `json:"models"`
}

// Detect sends the frame to /embed/face and keeps the most confident face.
func (s *Service) Detect(ctx context.Context, frame capture.Frame) (facematch.Detection, error) {
	body, err := s.postMultipartImage(ctx, "/embed/face", frame.Data)
	if err != nil {
		return nil, err
	}

	var faceResp FaceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	best := bestFace(faceResp.Faces)
	if best == nil {
		return facematch.NotDetected{}, nil
	}

	return facematch.Detected{
		Embedding: facematch.FromFloat32(best.Embedding),
		Box:       boxFromBBox(best.BBox),
		Score:     best.DetScore,
	}, nil
}

// LoadBundles checks that the server has every bundle's model loaded.
func (s *Service) LoadBundles(ctx context.Context, dir string, bundles []models.Bundle) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	body, err := s.do(req)
	if err != nil {
		return err
	}

	var resp modelsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	var missing []string
	for _, b := range bundles {
		if !slices.Contains(resp.Models, b.ServiceID) {
			missing = append(missing, b.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("embedding server is missing models: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Close is a no-op; the server owns its models.
func (s *Service) Close() error {
	return nil
}

// postMultipartImage posts the image as the "file" form field.
func (s *Service) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	if len(imageData) == 0 {
		return nil, errors.New("empty image")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="frame.jpg"`)
	h.Set("Content-Type", detectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return s.do(req)
}

func (s *Service) do(req *http.Request) ([]byte, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// bestFace returns the face with the highest detection score.
func bestFace(faces []FaceDetection) *FaceDetection {
	var best *FaceDetection
	for i := range faces {
		if len(faces[i].Embedding) == 0 {
			continue
		}
		if best == nil || faces[i].DetScore > best.DetScore {
			best = &faces[i]
		}
	}
	return best
}

func boxFromBBox(bbox []float64) facematch.Box {
	if len(bbox) != 4 {
		return facematch.Box{}
	}
	return facematch.Box{X1: bbox[0], Y1: bbox[1], X2: bbox[2], Y2: bbox[3]}
}

// detectMIMEType detects the MIME type from image data
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	return "application/octet-stream"
}
