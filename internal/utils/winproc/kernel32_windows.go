package winproc

import "golang.org/x/sys/windows"

var (
	KERNEL32         = windows.NewLazySystemDLL("kernel32.dll")
	GetConsoleWindow = KERNEL32.NewProc("GetConsoleWindow")
)
