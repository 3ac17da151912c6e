//go:build !windows

package screen

import "image"

func capture(image.Rectangle) (image.Image, error) {
	return nil, ErrUnsupported
}
