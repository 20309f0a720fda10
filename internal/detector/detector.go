// Package detector provides the face detection backends used by the matcher.
package detector

import (
	"fmt"
	"time"

	"github.com/kozaktomas/face-login/internal/facematch"
	"github.com/kozaktomas/face-login/internal/models"
)

const (
	KindService = "service"
	KindDlib    = "dlib"
)

// Backend detects faces and owns the models it detects with.
type Backend interface {
	facematch.Detector
	models.Backend
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Kind    string
	URL     string
	Timeout time.Duration
}

// New creates the backend named by cfg.Kind.
func New(cfg Config) (Backend, error) {
	switch cfg.Kind {
	case "", KindService:
		return NewService(cfg.URL, cfg.Timeout), nil
	case KindDlib:
		return NewDlib(), nil
	default:
		return nil, fmt.Errorf("unknown face detector %q (expected %q or %q)", cfg.Kind, KindService, KindDlib)
	}
}
