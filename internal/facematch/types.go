// Package facematch registers a single face per session and authenticates
// later frames against it by Euclidean embedding distance.
package facematch

import "errors"

const (
	// DefaultThreshold is the largest embedding distance still treated as the same person.
	DefaultThreshold = 0.6
	// DefaultDim is the descriptor length produced by the dlib recognition model.
	DefaultDim = 128
)

var (
	ErrModelsNotLoaded   = errors.New("models not loaded")
	ErrNoFaceDetected    = errors.New("no face detected")
	ErrNotRegistered     = errors.New("no user registered")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Embedding is a face descriptor in the recognition model's feature space.
type Embedding []float64

// Clone returns a copy that does not share the backing array.
func (e Embedding) Clone() Embedding {
	if e == nil {
		return nil
	}
	out := make(Embedding, len(e))
	copy(out, e)
	return out
}

// FromFloat32 converts a descriptor as returned by detection backends.
func FromFloat32(v []float32) Embedding {
	out := make(Embedding, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

// Box is a face bounding box in frame pixels.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Area returns the box area, or 0 for degenerate boxes.
func (b Box) Area() float64 {
	w, h := b.X2-b.X1, b.Y2-b.Y1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Detection is the result of running single-face detection on a frame.
// It is either Detected or NotDetected.
type Detection interface {
	isDetection()
}

// Detected carries the embedding of the face selected in the frame.
type Detected struct {
	Embedding Embedding
	Box       Box
	Score     float64
}

// NotDetected means the frame contained no usable face.
type NotDetected struct{}

func (Detected) isDetection()    {}
func (NotDetected) isDetection() {}

// MatchResult is the outcome of one authentication attempt.
type MatchResult struct {
	Matched   bool    `json:"matched"`
	Distance  float64 `json:"distance"`
	Threshold float64 `json:"threshold"`
}
