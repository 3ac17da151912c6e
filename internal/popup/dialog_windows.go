//go:build windows

package popup

import (
	"context"
	"fmt"
	"syscall"
	"time"
	"unsafe"

	"github.com/hectorgimenez/questengine/internal/utils/winproc"
	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const (
	caption     = "questengine"
	dialogClass = "#32770"
	keyPoll     = 50 * time.Millisecond
)

var virtualKeys = map[Key]int32{
	KeyEnter:  win.VK_RETURN,
	KeySpace:  win.VK_SPACE,
	KeyEscape: win.VK_ESCAPE,
	KeyTab:    win.VK_TAB,
}

// Dialog shows popups as topmost message boxes.
type Dialog struct{}

func NewDialog() *Dialog {
	return &Dialog{}
}

// Native returns the popup provider for the current platform.
func Native() Provider {
	return NewDialog()
}

func (d *Dialog) Show(ctx context.Context, p Popup) error {
	switch p.Kind {
	case KindSimple:
		return d.untilClosed(ctx, p.Message)
	case KindTimed:
		messageBoxTimeout(p.Message, p.Duration)
		return nil
	case KindKeyGated:
		return d.keyGated(ctx, p)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, p.Kind)
	}
}

func (d *Dialog) untilClosed(ctx context.Context, message string) error {
	closed := make(chan int32, 1)
	go func() {
		closed <- messageBoxTimeout(message, 0)
	}()

	select {
	case <-closed:
	case <-ctx.Done():
		dismiss(closed)
	}
	return nil
}

func (d *Dialog) keyGated(ctx context.Context, p Popup) error {
	vk, ok := virtualKeys[p.Key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, p.Key)
	}

	show := func() chan int32 {
		closed := make(chan int32, 1)
		go func() {
			closed <- messageBoxTimeout(p.Message, 0)
		}()
		return closed
	}

	// box is nil while no message box is up
	box := show()
	defer func() {
		if box != nil {
			dismiss(box)
		}
	}()

	ticker := time.NewTicker(keyPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-box:
			box = nil
			switch closeOutcome(p.Key, r) {
			case boxConfirmed:
				if p.OnClosed != nil {
					p.OnClosed()
				}
				return nil
			case boxFailed:
				return ErrBoxFailed
			case boxReopen:
				// The prompt was closed without the key, put it back
				box = show()
			}
		case <-ticker.C:
			if keyDown(vk) {
				if p.OnClosed != nil {
					p.OnClosed()
				}
				return nil
			}
		}
	}
}

// dismiss closes our message box and waits for it to go away. The box may not
// exist yet when called, so keep asking.
func dismiss(closed <-chan int32) {
	for {
		closeDialog()
		select {
		case <-closed:
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func keyDown(vk int32) bool {
	state, _, _ := winproc.GetAsyncKeyState.Call(uintptr(vk))
	return state&0x8000 != 0
}

// messageBoxTimeout blocks until the box is dismissed or d elapses. A zero d
// waits forever.
func messageBoxTimeout(message string, d time.Duration) int32 {
	text, _ := syscall.UTF16PtrFromString(message)
	title, _ := syscall.UTF16PtrFromString(caption)

	ms := uint32(0xFFFFFFFF)
	if d > 0 {
		ms = uint32(d.Milliseconds())
	}

	r, _, _ := winproc.MessageBoxTimeout.Call(
		0,
		uintptr(unsafe.Pointer(text)),
		uintptr(unsafe.Pointer(title)),
		uintptr(windows.MB_OK|windows.MB_TOPMOST|windows.MB_SETFOREGROUND),
		0,
		uintptr(ms),
	)
	return int32(r)
}

func closeDialog() {
	class, _ := syscall.UTF16PtrFromString(dialogClass)
	title, _ := syscall.UTF16PtrFromString(caption)
	if hwnd := win.FindWindow(class, title); hwnd != 0 {
		win.PostMessage(hwnd, win.WM_CLOSE, 0, 0)
	}
}

// Fatal shows a blocking error box. Used right before the process exits.
func Fatal(title, message string) {
	t, _ := syscall.UTF16PtrFromString(title)
	txt, _ := syscall.UTF16PtrFromString(message)

	windows.MessageBox(0, txt, t, windows.MB_OK|windows.MB_ICONERROR)
}
