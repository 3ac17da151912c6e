//go:build !windows

package input

import (
	"context"
	"image"
)

func (m *Mouse) Click(context.Context, image.Point) error {
	return ErrUnsupported
}
