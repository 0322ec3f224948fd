package facenet

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// resizeImage scales the image down so that neither dimension exceeds
// maxSize, keeping the aspect ratio. Images already small enough are
// re-encoded unchanged.
func resizeImage(data []byte, maxSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxSize || height > maxSize {
		scale := float64(maxSize) / float64(width)
		if height > width {
			scale = float64(maxSize) / float64(height)
		}
		newWidth := int(float64(width) * scale)
		newHeight := int(float64(height) * scale)

		dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("could not encode image: %w", err)
	}
	return buf.Bytes(), nil
}
