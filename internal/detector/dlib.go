//go:build dlib

package detector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	face "github.com/Kagami/go-face"

	"github.com/kozaktomas/face-login/internal/capture"
	"github.com/kozaktomas/face-login/internal/facematch"
	"github.com/kozaktomas/face-login/internal/models"
)

// Dlib detects faces in-process with the dlib models from the model directory.
type Dlib struct {
	mu  sync.Mutex // the dlib recognizer is not safe for concurrent use
	rec *face.Recognizer
}

// NewDlib creates a backend with no models loaded.
func NewDlib() *Dlib {
	return &Dlib{}
}

// LoadBundles loads the recognizer from dir once every bundle file is present.
func (d *Dlib) LoadBundles(ctx context.Context, dir string, bundles []models.Bundle) error {
	if err := models.CheckFiles(dir, bundles); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	rec, err := face.NewRecognizer(dir)
	if err != nil {
		return fmt.Errorf("failed to load dlib models: %w", err)
	}

	d.mu.Lock()
	if d.rec != nil {
		d.rec.Close()
	}
	d.rec = rec
	d.mu.Unlock()
	return nil
}

// Detect runs the recognizer on a JPEG frame and keeps the largest face.
func (d *Dlib) Detect(ctx context.Context, frame capture.Frame) (facematch.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.rec == nil {
		return nil, errors.New("dlib models not loaded")
	}

	faces, err := d.rec.Recognize(frame.Data)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}

	var best facematch.Detected
	found := false
	for _, f := range faces {
		r := f.Rectangle
		box := facematch.Box{
			X1: float64(r.Min.X),
			Y1: float64(r.Min.Y),
			X2: float64(r.Max.X),
			Y2: float64(r.Max.Y),
		}
		if !found || box.Area() > best.Box.Area() {
			best = facematch.Detected{
				Embedding: facematch.FromFloat32(f.Descriptor[:]),
				Box:       box,
				Score:     1, // dlib reports no confidence
			}
			found = true
		}
	}

	if !found {
		return facematch.NotDetected{}, nil
	}
	return best, nil
}

// Close releases the recognizer.
func (d *Dlib) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rec != nil {
		d.rec.Close()
		d.rec = nil
	}
	return nil
}
