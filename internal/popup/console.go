package popup

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/hectorgimenez/questengine/internal/utils"
)

// Console prints popups to a writer. Key-gated popups are closed by a line
// on the reader: a terminal in cooked mode cannot see single key presses, so
// any line counts as the key.
type Console struct {
	mu  sync.Mutex
	out io.Writer
	in  io.Reader

	readOnce sync.Once
	lines    chan string
}

func NewConsole(out io.Writer, in io.Reader) *Console {
	return &Console{out: out, in: in}
}

func (c *Console) Show(ctx context.Context, p Popup) error {
	switch p.Kind {
	case KindSimple:
		c.print(p.Message)
	case KindTimed:
		c.print(p.Message)
		utils.Wait(ctx, p.Duration)
	case KindKeyGated:
		c.print(fmt.Sprintf("%s [%s]", p.Message, strings.ToUpper(string(p.Key))))
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-c.readLines():
			if !ok {
				return fmt.Errorf("waiting for %s: %w", p.Key, io.ErrUnexpectedEOF)
			}
		}
		if p.OnClosed != nil {
			p.OnClosed()
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, p.Kind)
	}

	return nil
}

func (c *Console) print(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, msg)
}

// readLines starts a single reader for the life of the Console so that a
// cancelled popup does not leave a competing reader behind.
func (c *Console) readLines() <-chan string {
	c.readOnce.Do(func() {
		c.lines = make(chan string)
		go func() {
			defer close(c.lines)
			s := bufio.NewScanner(c.in)
			for s.Scan() {
				c.lines <- s.Text()
			}
		}()
	})
	return c.lines
}
