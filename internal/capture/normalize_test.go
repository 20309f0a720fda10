package capture

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"
)

func TestDecodeFrame_KeepsFittingJPEG(t *testing.T) {
	data := jpegBytes(t, 320, 240)

	frame, err := DecodeFrame(data, DefaultConstraints())
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if !bytes.Equal(frame.Data, data) {
		t.Error("expected fitting JPEG to be kept unchanged")
	}
	if frame.Width != 320 || frame.Height != 240 {
		t.Errorf("size = %dx%d, want 320x240", frame.Width, frame.Height)
	}
}

func TestDecodeFrame_ConvertsPNG(t *testing.T) {
	frame, err := DecodeFrame(pngBytes(t, 100, 50), DefaultConstraints())
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(frame.Data))
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q, want jpeg", format)
	}
}

func TestDecodeFrame_ScalesDown(t *testing.T) {
	frame, err := DecodeFrame(jpegBytes(t, 1280, 720), DefaultConstraints())
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if frame.Width != 640 || frame.Height != 360 {
		t.Errorf("size = %dx%d, want 640x360", frame.Width, frame.Height)
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(frame.Data))
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if cfg.Width != 640 || cfg.Height != 360 {
		t.Errorf("encoded size = %dx%d, want 640x360", cfg.Width, cfg.Height)
	}
}

// Webcam drivers that ignore the requested size hand over full sensor frames.
func TestDecodeFrame_FitsDeviceSizedFrames(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{1920, 1080, 640, 360},
		{1280, 960, 640, 480},
		{640, 480, 640, 480},
	}

	for _, tt := range tests {
		frame, err := DecodeFrame(jpegBytes(t, tt.w, tt.h), DefaultConstraints())
		if err != nil {
			t.Fatalf("DecodeFrame(%dx%d) error = %v", tt.w, tt.h, err)
		}
		if frame.Width != tt.wantW || frame.Height != tt.wantH {
			t.Errorf("DecodeFrame(%dx%d) = %dx%d, want %dx%d", tt.w, tt.h, frame.Width, frame.Height, tt.wantW, tt.wantH)
		}
	}
}

func TestDecodeFrame_Errors(t *testing.T) {
	if _, err := DecodeFrame(nil, DefaultConstraints()); err == nil {
		t.Error("expected error for empty data")
	}
	if _, err := DecodeFrame([]byte("not an image"), DefaultConstraints()); err == nil {
		t.Error("expected error for garbage data")
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		maxW, maxH   int
		wantW, wantH int
	}{
		{"fits", 640, 480, 640, 480, 640, 480},
		{"landscape", 1920, 1080, 640, 480, 640, 360},
		{"portrait", 480, 960, 640, 480, 240, 480},
		{"no limit", 4000, 3000, 0, 0, 4000, 3000},
		{"tiny result", 10000, 1, 640, 480, 640, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := fitWithin(tt.w, tt.h, tt.maxW, tt.maxH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("fitWithin() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}
