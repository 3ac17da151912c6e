//go:build windows

package window

import (
	"github.com/hectorgimenez/questengine/internal/utils/winproc"
	"github.com/lxn/win"
)

// Console controls the console window questengine runs in.
type Console struct {
	hwnd win.HWND
}

func NewConsole() *Console {
	hwnd, _, _ := winproc.GetConsoleWindow.Call()
	return &Console{hwnd: win.HWND(hwnd)}
}

func (c *Console) Minimize() {
	if c.hwnd == 0 {
		return
	}
	win.ShowWindow(c.hwnd, win.SW_MINIMIZE)
}

func (c *Console) Restore() {
	if c.hwnd == 0 {
		return
	}
	win.ShowWindow(c.hwnd, win.SW_RESTORE)
	win.SetForegroundWindow(c.hwnd)
}
