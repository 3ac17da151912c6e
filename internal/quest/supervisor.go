package quest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hectorgimenez/questengine/internal/event"
	"golang.org/x/sync/errgroup"
)

type stageExitHandler interface {
	Handle(ctx context.Context, stage Stage)
}

type watcher struct {
	stage  Stage
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc
}

// Supervisor owns at most one watcher. A watcher polls host liveness and is
// the only place unexpected host death is detected.
type Supervisor struct {
	logger   *slog.Logger
	run      *RunState
	host     HostProcess
	exit     stageExitHandler
	events   EventSender
	interval time.Duration

	mu      sync.Mutex
	current *watcher
	loops   errgroup.Group
}

func NewSupervisor(logger *slog.Logger, run *RunState, host HostProcess, exit stageExitHandler, events EventSender, interval time.Duration) *Supervisor {
	if events == nil {
		events = noopEvents{}
	}
	return &Supervisor{
		logger:   logger,
		run:      run,
		host:     host,
		exit:     exit,
		events:   events,
		interval: interval,
	}
}

// RegisterWatcher cancels the current watcher, if any, and starts a new one
// bound to stage under the same lock. The returned context is the new
// watcher's token: it is cancelled when the watcher is replaced or stopped.
func (s *Supervisor) RegisterWatcher(ctx context.Context, stage Stage) context.Context {
	wctx, cancel := context.WithCancel(ctx)
	w := &watcher{stage: stage, parent: ctx, ctx: wctx, cancel: cancel}

	s.mu.Lock()
	if s.current != nil {
		s.current.cancel()
	}
	s.current = w
	s.loops.Go(func() error {
		s.watch(w)
		return nil
	})
	s.mu.Unlock()

	s.logger.Debug("Watcher registered", slog.String("stage", stage.String()))
	s.events.Send(event.StageChanged(event.Text(s.run.RunID(), "Supervising stage "+stage.String()), stage.String()))

	return wctx
}

// StopWatching cancels the current watcher. Safe to call with none active.
func (s *Supervisor) StopWatching() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	s.current.cancel()
	s.current = nil
}

// Wait blocks until every watcher loop started so far has returned.
func (s *Supervisor) Wait() {
	_ = s.loops.Wait()
}

// release stops w only if it is still the active watcher. A superseded
// watcher gets false and must not act.
func (s *Supervisor) release(w *watcher) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != w || w.ctx.Err() != nil {
		return false
	}
	w.cancel()
	s.current = nil
	return true
}

func (s *Supervisor) watch(w *watcher) {
	for w.ctx.Err() == nil {
		if !s.run.IsPlaying() {
			// Whoever ended the run is in charge of shutting down
			s.release(w)
			return
		}

		if !s.host.IsRunning() {
			if !s.release(w) {
				return
			}
			s.logger.Warn("Host process is gone",
				slog.String("process", s.host.Name()),
				slog.String("stage", w.stage.String()))
			s.exit.Handle(context.WithoutCancel(w.parent), w.stage)
			return
		}

		t := time.NewTimer(s.interval)
		select {
		case <-w.ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}
