package winproc

import "golang.org/x/sys/windows"

var (
	USER32             = windows.NewLazySystemDLL("user32.dll")
	MessageBoxTimeout  = USER32.NewProc("MessageBoxTimeoutW")
	GetAsyncKeyState   = USER32.NewProc("GetAsyncKeyState")
	SetProcessDpiAware = USER32.NewProc("SetProcessDPIAware")
)
