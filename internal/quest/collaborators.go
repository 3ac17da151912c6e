package quest

import (
	"context"
	"errors"
	"image"

	"github.com/hectorgimenez/questengine/internal/event"
)

var (
	ErrInvalidResult = errors.New("invalid quest result")
	ErrRunActive     = errors.New("a quest run is already active")
)

// Capturer takes a masked snapshot of a screen region.
type Capturer interface {
	CaptureMasked(region image.Rectangle) (image.Image, error)
}

// Recognizer extracts text from an image. A cancelled read may return early;
// callers discard its result.
type Recognizer interface {
	Text(ctx context.Context, img image.Image) (string, error)
}

type HostProcess interface {
	Name() string
	IsRunning() bool
	Kill() error
}

// Store keeps at most one pending Record.
type Store interface {
	Save(r Record) error
	LoadPending() (*Record, error)
	ClearPending() error
}

type Window interface {
	Minimize()
	Restore()
}

type Clicker interface {
	Click(ctx context.Context, p image.Point) error
}

// Exiter terminates the controlling application, never the host.
type Exiter interface {
	Exit()
}

type ExitFunc func()

func (f ExitFunc) Exit() {
	f()
}

type EventSender interface {
	Send(e event.Event)
}

type noopEvents struct{}

func (noopEvents) Send(event.Event) {}
