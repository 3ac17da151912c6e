//go:build windows

package input

import (
	"context"
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/hectorgimenez/questengine/internal/utils"
	"github.com/lxn/win"
)

func (m *Mouse) Click(ctx context.Context, p image.Point) error {
	if !win.SetCursorPos(int32(p.X), int32(p.Y)) {
		return fmt.Errorf("moving cursor to %v failed", p)
	}

	if err := send(win.MOUSEEVENTF_LEFTDOWN); err != nil {
		return err
	}
	// Always release the button, even when cancelled mid click
	utils.Wait(ctx, pressDelay)

	return send(win.MOUSEEVENTF_LEFTUP)
}

func send(flags uint32) error {
	in := win.MOUSE_INPUT{
		Type: win.INPUT_MOUSE,
		Mi:   win.MOUSEINPUT{DwFlags: flags},
	}
	if win.SendInput(1, unsafe.Pointer(&in), int32(unsafe.Sizeof(in))) != 1 {
		return errors.New("SendInput was blocked")
	}
	return nil
}
