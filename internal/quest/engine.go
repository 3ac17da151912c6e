package quest

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hectorgimenez/questengine/internal/config"
	"github.com/hectorgimenez/questengine/internal/event"
	"github.com/hectorgimenez/questengine/internal/popup"
	"golang.org/x/sync/errgroup"
)

type Intervals struct {
	Liveness  time.Duration
	Poll      time.Duration
	Click     time.Duration
	TimeRetry time.Duration
}

func DefaultIntervals() Intervals {
	return Intervals{
		Liveness:  time.Second,
		Poll:      5 * time.Second,
		Click:     500 * time.Millisecond,
		TimeRetry: time.Second,
	}
}

// Deps are the collaborators an Engine is built from. Capturer and Recognizer
// may be nil in manual mode.
type Deps struct {
	Logger     *slog.Logger
	Capturer   Capturer
	Recognizer Recognizer
	Host       HostProcess
	Store      Store
	Popups     popup.Provider
	Window     Window
	Clicker    Clicker
	Exit       Exiter
	Events     EventSender
}

type Option func(*Engine)

func WithIntervals(i Intervals) Option {
	return func(e *Engine) {
		e.intervals = i
	}
}

// WithFailureOverride makes host exit handling call fn instead of terminating
// the application.
func WithFailureOverride(fn func()) Option {
	return func(e *Engine) {
		e.onQuestFailed = fn
	}
}

// Engine wires the run phases together:
// readiness -> click sequence -> result monitor -> completion, with the
// supervisor watching the host throughout.
type Engine struct {
	logger        *slog.Logger
	host          HostProcess
	events        EventSender
	intervals     Intervals
	onQuestFailed func()

	run        RunState
	plan       ClickPlan
	supervisor *Supervisor
	readiness  phase
	tasks      errgroup.Group

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewEngine(cfg config.Config, deps Deps, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Host == nil || deps.Store == nil || deps.Popups == nil || deps.Window == nil || deps.Clicker == nil || deps.Exit == nil {
		return nil, errors.New("engine is missing a required collaborator")
	}
	if cfg.Mode == config.ModeOCR && (deps.Capturer == nil || deps.Recognizer == nil) {
		return nil, errors.New("ocr mode requires a capturer and a recognizer")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Events == nil {
		deps.Events = noopEvents{}
	}

	e := &Engine{
		logger:    deps.Logger,
		host:      deps.Host,
		events:    deps.Events,
		intervals: DefaultIntervals(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if len(cfg.Clicks) > 0 {
		points := make([]image.Point, 0, len(cfg.Clicks))
		for _, p := range cfg.Clicks {
			points = append(points, image.Pt(p.X, p.Y))
		}
		e.plan.Populate(points)
	}

	exitHandler := NewExitHandler(e.logger, &e.run, deps.Popups, deps.Exit, e.events, e.onQuestFailed)
	e.supervisor = NewSupervisor(e.logger, &e.run, deps.Host, exitHandler, e.events, e.intervals.Liveness)
	completion := NewCompletionHandler(e.logger, &e.run, deps.Popups, deps.Host, deps.Store, deps.Exit, e.events)

	var monitor phase
	if cfg.Mode == config.ModeManual {
		monitor = &PassiveMonitor{supervisor: e.supervisor}
	} else {
		monitor = &ResultMonitor{
			logger:        e.logger,
			supervisor:    e.supervisor,
			run:           &e.run,
			sensor:        e.newSensor(deps),
			store:         deps.Store,
			completion:    completion,
			statusRegion:  cfg.Regions.Status.Rect(),
			timerRegion:   cfg.Regions.Timer.Rect(),
			successMarker: cfg.Markers.Success,
			failureMarker: cfg.Markers.Failure,
			interval:      e.intervals.Poll,
			retryInterval: e.intervals.TimeRetry,
		}
	}

	clicks := &ClickSequencer{
		logger:     e.logger,
		supervisor: e.supervisor,
		plan:       &e.plan,
		clicker:    deps.Clicker,
		window:     deps.Window,
		delay:      e.intervals.Click,
		next:       monitor,
	}

	if cfg.Mode == config.ModeManual {
		key, err := popup.ParseKey(cfg.Popup.Key)
		if err != nil {
			return nil, err
		}
		e.readiness = &ManualReadiness{
			logger:     e.logger,
			supervisor: e.supervisor,
			popups:     deps.Popups,
			message:    cfg.Popup.Message,
			key:        key,
			next:       clicks,
		}
	} else {
		e.readiness = &ReadinessDetector{
			logger:     e.logger,
			supervisor: e.supervisor,
			sensor:     e.newSensor(deps),
			region:     cfg.Regions.Readiness.Rect(),
			marker:     cfg.Markers.Readiness,
			interval:   e.intervals.Poll,
			next:       clicks,
		}
	}

	return e, nil
}

func (e *Engine) newSensor(deps Deps) *sensor {
	return &sensor{capture: deps.Capturer, ocr: deps.Recognizer, tasks: &e.tasks}
}

// ClickPlan is exposed so the surrounding application can populate it when
// the config did not. The first population wins.
func (e *Engine) ClickPlan() *ClickPlan {
	return &e.plan
}

func (e *Engine) IsPlaying() bool {
	return e.run.IsPlaying()
}

// Start begins a run and returns immediately. Use Wait to join it.
func (e *Engine) Start(ctx context.Context) error {
	runID := uuid.NewString()
	if !e.run.Begin(runID) {
		return ErrRunActive
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	e.logger.Info("Quest run started", slog.String("runId", runID), slog.String("process", e.host.Name()))
	e.events.Send(event.RunStarted(event.Text(runID, "Quest run started"), e.host.Name()))

	e.tasks.Go(func() error {
		return e.readiness.Run(runCtx)
	})

	return nil
}

// Wait joins every phase, sensor read and watcher started by the engine and
// returns the first fatal error.
func (e *Engine) Wait() error {
	err := e.tasks.Wait()
	e.supervisor.Wait()
	return err
}

// Stop cancels the current run without running any exit or completion
// handling.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	e.supervisor.StopWatching()
}
