package minimax

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder
	"io"
)

// Frame image limits for video generation.
const (
	MinFrameSide  = 300
	MaxFrameBytes = 20 * 1024 * 1024

	frameJPEGQuality = 95
)

// ValidateFrameSize checks that the aspect ratio is strictly between 2:5
// and 5:2 and that the short side is at least MinFrameSide pixels.
func ValidateFrameSize(name string, width, height int) error {
	if width <= 0 || height <= 0 {
		return invalid(name, "image has no pixels (%dx%d)", width, height)
	}
	ratio := float64(width) / float64(height)
	if ratio <= 2.0/5.0 || ratio >= 5.0/2.0 {
		return invalid(name, "aspect ratio (%.2f) must be between 2:5 and 5:2", ratio)
	}
	if short := min(width, height); short < MinFrameSide {
		return invalid(name, "short side (%dpx) must be at least %dpx", short, MinFrameSide)
	}
	return nil
}

// EncodeFrame validates img and returns it as a JPEG data URI suitable for
// first_frame_image / last_frame_image.
func EncodeFrame(name string, img image.Image) (string, error) {
	b := img.Bounds()
	if err := ValidateFrameSize(name, b.Dx(), b.Dy()); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: frameJPEGQuality}); err != nil {
		return "", fmt.Errorf("encode %s as jpeg: %w", name, err)
	}
	if buf.Len() > MaxFrameBytes {
		return "", invalid(name, "file size (%.1fMB) exceeds 20MB limit", float64(buf.Len())/1024/1024)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// LoadFrame decodes a PNG, JPEG or GIF image from r and encodes it with
// EncodeFrame.
func LoadFrame(name string, r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", invalid(name, "decode image: %v", err)
	}
	return EncodeFrame(name, img)
}
