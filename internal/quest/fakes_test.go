package quest

import (
	"context"
	"image"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hectorgimenez/questengine/internal/config"
	"github.com/hectorgimenez/questengine/internal/event"
	"github.com/hectorgimenez/questengine/internal/popup"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastIntervals() Intervals {
	return Intervals{
		Liveness:  5 * time.Millisecond,
		Poll:      5 * time.Millisecond,
		Click:     time.Millisecond,
		TimeRetry: time.Millisecond,
	}
}

type fakeHost struct {
	running atomic.Bool
	kills   atomic.Int32
}

func newFakeHost() *fakeHost {
	h := &fakeHost{}
	h.running.Store(true)
	return h
}

func (h *fakeHost) Name() string    { return "Spartan" }
func (h *fakeHost) IsRunning() bool { return h.running.Load() }
func (h *fakeHost) Kill() error {
	h.kills.Add(1)
	h.running.Store(false)
	return nil
}

type fakeStore struct {
	mu      sync.Mutex
	saved   []Record
	cleared int
}

func (s *fakeStore) Save(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, r)
	return nil
}

func (s *fakeStore) LoadPending() (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saved) == 0 || s.cleared > 0 {
		return nil, nil
	}
	r := s.saved[len(s.saved)-1]
	return &r, nil
}

func (s *fakeStore) ClearPending() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
	return nil
}

func (s *fakeStore) snapshot() ([]Record, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.saved...), s.cleared
}

type fakePopups struct {
	mu      sync.Mutex
	shown   []popup.Popup
	confirm bool
}

func (p *fakePopups) Show(ctx context.Context, pp popup.Popup) error {
	p.mu.Lock()
	p.shown = append(p.shown, pp)
	confirm := p.confirm
	p.mu.Unlock()

	if pp.Kind == popup.KindKeyGated {
		if !confirm {
			<-ctx.Done()
			return nil
		}
		if pp.OnClosed != nil {
			pp.OnClosed()
		}
	}
	return nil
}

func (p *fakePopups) messages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.shown))
	for _, pp := range p.shown {
		out = append(out, pp.Message)
	}
	return out
}

type fakeWindow struct {
	minimized atomic.Int32
}

func (w *fakeWindow) Minimize() { w.minimized.Add(1) }
func (w *fakeWindow) Restore()  {}

type fakeClicker struct {
	mu     sync.Mutex
	clicks []image.Point
}

func (c *fakeClicker) Click(_ context.Context, p image.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clicks = append(c.clicks, p)
	return nil
}

func (c *fakeClicker) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clicks)
}

type fakeExit struct {
	calls atomic.Int32
	done  chan struct{}
	once  sync.Once
}

func newFakeExit() *fakeExit {
	return &fakeExit{done: make(chan struct{})}
}

func (e *fakeExit) Exit() {
	e.calls.Add(1)
	e.once.Do(func() { close(e.done) })
}

func (e *fakeExit) wait(t *testing.T) {
	t.Helper()
	select {
	case <-e.done:
	case <-time.After(5 * time.Second):
		t.Fatal("application exit was never requested")
	}
}

// fakeCapturer returns a blank image covering the requested region so the
// recognizer can tell regions apart by their bounds.
type fakeCapturer struct{}

func (fakeCapturer) CaptureMasked(region image.Rectangle) (image.Image, error) {
	return image.NewGray(region), nil
}

// fakeRecognizer replays a script of texts per region. The last entry repeats
// forever.
type fakeRecognizer struct {
	mu      sync.Mutex
	scripts map[image.Rectangle][]string
	reads   map[image.Rectangle]int
}

func newFakeRecognizer() *fakeRecognizer {
	return &fakeRecognizer{
		scripts: make(map[image.Rectangle][]string),
		reads:   make(map[image.Rectangle]int),
	}
}

func (r *fakeRecognizer) script(region config.Region, texts ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts[region.Rect()] = texts
}

func (r *fakeRecognizer) Text(_ context.Context, img image.Image) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := img.Bounds()
	n := r.reads[b]
	r.reads[b]++
	texts := r.scripts[b]
	if len(texts) == 0 {
		return "", nil
	}
	if n >= len(texts) {
		return texts[len(texts)-1], nil
	}
	return texts[n], nil
}

func (r *fakeRecognizer) readCount(region config.Region) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads[region.Rect()]
}

type eventRecorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *eventRecorder) Send(e event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) stages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if sc, ok := e.(event.StageChangedEvent); ok {
			out = append(out, sc.Stage)
		}
	}
	return out
}

func testConfig() config.Config {
	cfg := config.Config{Mode: config.ModeOCR}
	cfg.Regions.Timer = config.Region{X: 0, Y: 0, Width: 100, Height: 20}
	cfg.Regions.Status = config.Region{X: 0, Y: 50, Width: 100, Height: 20}
	cfg.Regions.Readiness = config.Region{X: 0, Y: 100, Width: 100, Height: 20}
	cfg.Markers.Success = config.DefaultSuccessMarker
	cfg.Markers.Failure = config.DefaultFailureMarker
	cfg.Markers.Readiness = config.DefaultReadinessMarker
	cfg.Popup.Message = config.DefaultPopupMessage
	cfg.Popup.Key = config.DefaultPopupKey
	return cfg
}

type harness struct {
	host    *fakeHost
	store   *fakeStore
	popups  *fakePopups
	window  *fakeWindow
	clicker *fakeClicker
	exit    *fakeExit
	ocr     *fakeRecognizer
	events  *eventRecorder
}

func newHarness() *harness {
	return &harness{
		host:    newFakeHost(),
		store:   &fakeStore{},
		popups:  &fakePopups{},
		window:  &fakeWindow{},
		clicker: &fakeClicker{},
		exit:    newFakeExit(),
		ocr:     newFakeRecognizer(),
		events:  &eventRecorder{},
	}
}

func (h *harness) deps() Deps {
	return Deps{
		Logger:     testLogger(),
		Capturer:   fakeCapturer{},
		Recognizer: h.ocr,
		Host:       h.host,
		Store:      h.store,
		Popups:     h.popups,
		Window:     h.window,
		Clicker:    h.clicker,
		Exit:       h.exit,
		Events:     h.events,
	}
}

func (h *harness) engine(t *testing.T, cfg config.Config, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithIntervals(fastIntervals())}, opts...)
	e, err := NewEngine(cfg, h.deps(), opts...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

// waitUntil polls cond until it holds or the test times out.
func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func (r *eventRecorder) reached(stage string) func() bool {
	return func() bool {
		stages := r.stages()
		return len(stages) > 0 && stages[len(stages)-1] == stage
	}
}

func containsMessage(messages []string, want string) bool {
	for _, m := range messages {
		if strings.Contains(m, want) {
			return true
		}
	}
	return false
}
