//go:build !dlib

package detector

import (
	"context"
	"errors"

	"github.com/kozaktomas/face-login/internal/capture"
	"github.com/kozaktomas/face-login/internal/facematch"
	"github.com/kozaktomas/face-login/internal/models"
)

var errNoDlibSupport = errors.New("the dlib face detector requires a build with -tags dlib")

// Dlib is unavailable in builds without dlib.
type Dlib struct{}

// NewDlib returns a backend whose models never load.
func NewDlib() *Dlib {
	return &Dlib{}
}

// LoadBundles always fails.
func (d *Dlib) LoadBundles(ctx context.Context, dir string, bundles []models.Bundle) error {
	return errNoDlibSupport
}

// Detect always fails.
func (d *Dlib) Detect(ctx context.Context, frame capture.Frame) (facematch.Detection, error) {
	return nil, errNoDlibSupport
}

// Close is a no-op.
func (d *Dlib) Close() error {
	return nil
}
