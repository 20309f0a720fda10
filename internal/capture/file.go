package capture

import (
	"context"
	"fmt"
	"os"
)

// FileSource serves a still image from disk as if it were the camera.
type FileSource struct {
	Path        string
	Constraints Constraints
}

// NewFileSource creates a source for the image at path.
func NewFileSource(path string, c Constraints) *FileSource {
	return &FileSource{Path: path, Constraints: c}
}

// CaptureFrame reads and decodes the file on every call.
func (f *FileSource) CaptureFrame(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrDeviceNotReady, err)
	}
	return DecodeFrame(data, f.Constraints)
}
