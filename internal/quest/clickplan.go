package quest

import (
	"image"
	"sync"
)

// ClickPlan is populated once. Later Populate calls are ignored.
type ClickPlan struct {
	mu        sync.RWMutex
	populated bool
	points    []image.Point
}

func (c *ClickPlan) Populate(points []image.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.populated {
		return
	}
	c.points = append([]image.Point(nil), points...)
	c.populated = true
}

func (c *ClickPlan) Points() []image.Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]image.Point(nil), c.points...)
}

func (c *ClickPlan) Empty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.points) == 0
}
