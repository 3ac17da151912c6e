package input

import (
	"errors"
	"time"
)

var ErrUnsupported = errors.New("mouse input is not supported on this platform")

// pressDelay is how long the button stays down. Some launchers ignore
// zero-length clicks.
const pressDelay = 50 * time.Millisecond

// Mouse clicks at absolute desktop coordinates.
type Mouse struct{}

func NewMouse() *Mouse {
	return &Mouse{}
}
