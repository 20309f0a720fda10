package capture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"time"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 90

// DecodeFrame decodes an encoded still image and fits it into the constraints.
// Oversized images are scaled down keeping the aspect ratio; JPEG input that
// already fits is kept byte for byte.
func DecodeFrame(data []byte, c Constraints) (Frame, error) {
	if len(data) == 0 {
		return Frame{}, errors.New("empty frame")
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), c.Width, c.Height)

	if width == bounds.Dx() && height == bounds.Dy() {
		if format == "jpeg" {
			return Frame{Data: data, Width: width, Height: height, CapturedAt: time.Now()}, nil
		}
		out, err := encodeJPEG(img)
		if err != nil {
			return Frame{}, err
		}
		return Frame{Data: out, Width: width, Height: height, CapturedAt: time.Now()}, nil
	}

	resized := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	out, err := encodeJPEG(resized)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Data: out, Width: width, Height: height, CapturedAt: time.Now()}, nil
}

// fitWithin returns the largest size with the same aspect ratio that is no
// bigger than maxW x maxH. Non-positive limits disable scaling.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if maxW <= 0 || maxH <= 0 || (w <= maxW && h <= maxH) {
		return w, h
	}

	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(int(float64(w)*scale), 1)
	nh := max(int(float64(h)*scale), 1)
	return nw, nh
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
