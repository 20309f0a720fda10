//go:build gocv

package capture

import (
	"context"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Webcam captures frames from a local camera device through OpenCV.
type Webcam struct {
	mu          sync.Mutex
	device      *gocv.VideoCapture
	constraints Constraints
}

// OpenWebcam opens the camera with the given index and requests the
// constrained frame size.
func OpenWebcam(deviceID int, c Constraints) (*Webcam, error) {
	device, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", deviceID, err)
	}
	if c.Width > 0 && c.Height > 0 {
		device.Set(gocv.VideoCaptureFrameWidth, float64(c.Width))
		device.Set(gocv.VideoCaptureFrameHeight, float64(c.Height))
	}
	return &Webcam{device: device, constraints: c}, nil
}

// CaptureFrame grabs one frame and encodes it as JPEG.
func (w *Webcam) CaptureFrame(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.device == nil || !w.device.IsOpened() {
		return Frame{}, ErrDeviceNotReady
	}

	mat := gocv.NewMat()
	defer mat.Close()

	if ok := w.device.Read(&mat); !ok || mat.Empty() {
		return Frame{}, ErrDeviceNotReady
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return Frame{}, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())

	// Drivers may ignore the requested size.
	return DecodeFrame(data, w.constraints)
}

// Close releases the camera.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.device == nil {
		return nil
	}
	err := w.device.Close()
	w.device = nil
	if err != nil {
		return fmt.Errorf("close camera: %w", err)
	}
	return nil
}
