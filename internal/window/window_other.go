//go:build !windows

package window

// Console does nothing outside windows; terminals manage their own windows.
type Console struct{}

func NewConsole() *Console {
	return &Console{}
}

func (c *Console) Minimize() {}

func (c *Console) Restore() {}
