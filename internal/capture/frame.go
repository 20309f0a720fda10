// Package capture turns a camera stream into still frames on demand.
package capture

import (
	"context"
	"errors"
	"time"
)

// ErrDeviceNotReady is returned when the camera has not produced a frame yet
// or has been disconnected.
var ErrDeviceNotReady = errors.New("camera not ready")

// Frame is a still image taken from a camera stream, JPEG encoded.
type Frame struct {
	Data       []byte
	Width      int
	Height     int
	CapturedAt time.Time
}

// Source produces the current frame of a camera on demand.
type Source interface {
	CaptureFrame(ctx context.Context) (Frame, error)
}

// Constraints are the camera options requested from the device.
// The browser passes them to getUserMedia; local webcams use Width and Height.
type Constraints struct {
	FacingMode string `json:"facing_mode"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// DefaultConstraints returns the user-facing 640x480 setup.
func DefaultConstraints() Constraints {
	return Constraints{
		FacingMode: "user",
		Width:      640,
		Height:     480,
	}
}
