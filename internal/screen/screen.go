package screen

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

var ErrUnsupported = errors.New("screen capture is not supported on this platform")

// Capturer grabs regions of the desktop and masks them for OCR.
type Capturer struct {
	threshold uint8
}

func New(threshold uint8) *Capturer {
	return &Capturer{threshold: threshold}
}

// CaptureMasked returns a grayscale image with the same bounds as region.
func (c *Capturer) CaptureMasked(region image.Rectangle) (image.Image, error) {
	if region.Empty() {
		return nil, fmt.Errorf("empty region %v", region)
	}

	img, err := capture(region)
	if err != nil {
		return nil, err
	}

	return Mask(img, c.threshold), nil
}

// Mask turns every pixel at or above threshold luminance black and the rest
// white. Game HUD text is bright on a dark background; tesseract prefers dark
// glyphs on a light page.
func Mask(img image.Image, threshold uint8) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			if g.Y >= threshold {
				out.SetGray(x, y, color.Gray{Y: 0})
			} else {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}
