//go:build windows

package main

import "github.com/hectorgimenez/questengine/internal/utils/winproc"

// setDPIAware makes screen coordinates physical pixels, so configured
// regions and clicks line up with what tesseract sees.
func setDPIAware() {
	winproc.SetProcessDpiAware.Call()
}
