package quest

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"
)

type readResult struct {
	text string
	err  error
}

// sensor runs capture and recognition on tracked worker goroutines so polling
// loops never block on either. A read that completes after ctx is done is
// thrown away.
type sensor struct {
	capture Capturer
	ocr     Recognizer
	tasks   *errgroup.Group
}

func (s *sensor) read(ctx context.Context, region image.Rectangle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	out := make(chan readResult, 1)
	s.tasks.Go(func() error {
		img, err := s.capture.CaptureMasked(region)
		if err != nil {
			out <- readResult{err: fmt.Errorf("capturing region %v: %w", region, err)}
			return nil
		}
		text, err := s.ocr.Text(ctx, img)
		if err != nil {
			err = fmt.Errorf("reading region %v: %w", region, err)
		}
		out <- readResult{text: text, err: err}
		return nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-out:
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return r.text, r.err
	}
}
