//go:build !gocv

package capture

import (
	"context"
	"errors"
)

var errNoWebcamSupport = errors.New("local webcam capture requires a build with -tags gocv")

// Webcam is unavailable in builds without OpenCV.
type Webcam struct{}

// OpenWebcam always fails in builds without OpenCV.
func OpenWebcam(deviceID int, c Constraints) (*Webcam, error) {
	return nil, errNoWebcamSupport
}

// CaptureFrame always reports the device as not ready.
func (w *Webcam) CaptureFrame(ctx context.Context) (Frame, error) {
	return Frame{}, ErrDeviceNotReady
}

// Close is a no-op.
func (w *Webcam) Close() error {
	return nil
}
