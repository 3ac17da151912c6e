package quest

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingExitHandler struct {
	mu     sync.Mutex
	stages []Stage
	called chan struct{}
}

func newRecordingExitHandler() *recordingExitHandler {
	return &recordingExitHandler{called: make(chan struct{}, 10)}
}

func (h *recordingExitHandler) Handle(_ context.Context, stage Stage) {
	h.mu.Lock()
	h.stages = append(h.stages, stage)
	h.mu.Unlock()
	h.called <- struct{}{}
}

func (h *recordingExitHandler) calls() []Stage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Stage(nil), h.stages...)
}

func newTestSupervisor(run *RunState, host HostProcess, exit stageExitHandler) *Supervisor {
	return NewSupervisor(testLogger(), run, host, exit, nil, 5*time.Millisecond)
}

func TestRegisterWatcherCancelsPrevious(t *testing.T) {
	run := &RunState{}
	run.Begin("run")
	sup := newTestSupervisor(run, newFakeHost(), newRecordingExitHandler())

	first := sup.RegisterWatcher(context.Background(), StageOpen)
	second := sup.RegisterWatcher(context.Background(), StageAutoClicking)

	select {
	case <-first.Done():
	case <-time.After(time.Second):
		t.Fatal("first watcher was not cancelled by the replacement")
	}
	if second.Err() != nil {
		t.Fatal("replacement watcher should be active")
	}

	sup.StopWatching()
	sup.Wait()
	if second.Err() == nil {
		t.Fatal("StopWatching should cancel the active watcher")
	}
}

func TestStopWatchingIsIdempotent(t *testing.T) {
	run := &RunState{}
	run.Begin("run")
	sup := newTestSupervisor(run, newFakeHost(), newRecordingExitHandler())

	sup.StopWatching()
	sup.RegisterWatcher(context.Background(), StageOpen)
	sup.StopWatching()
	sup.StopWatching()
	sup.Wait()
}

func TestSupervisorHandlesHostDeathOnce(t *testing.T) {
	run := &RunState{}
	run.Begin("run")
	host := newFakeHost()
	exit := newRecordingExitHandler()
	sup := newTestSupervisor(run, host, exit)

	token := sup.RegisterWatcher(context.Background(), StagePlayingQuest)
	host.running.Store(false)

	select {
	case <-exit.called:
	case <-time.After(time.Second):
		t.Fatal("exit handler was not called")
	}
	sup.Wait()

	if got := exit.calls(); len(got) != 1 || got[0] != StagePlayingQuest {
		t.Fatalf("exit handler calls = %v, want [PlayingQuest]", got)
	}
	if token.Err() == nil {
		t.Error("the claiming watcher should be stopped")
	}
}

func TestSupervisorStopsSilentlyWhenRunEnded(t *testing.T) {
	run := &RunState{}
	run.Begin("run")
	host := newFakeHost()
	exit := newRecordingExitHandler()
	sup := newTestSupervisor(run, host, exit)

	token := sup.RegisterWatcher(context.Background(), StageOpen)
	run.End()
	host.running.Store(false)

	select {
	case <-token.Done():
	case <-time.After(time.Second):
		t.Fatal("watcher kept running after the run ended")
	}
	sup.Wait()

	if got := exit.calls(); len(got) != 0 {
		t.Fatalf("exit handler called %v after the run ended", got)
	}
}

func TestStoppedWatcherNeverActs(t *testing.T) {
	run := &RunState{}
	run.Begin("run")
	host := newFakeHost()
	exit := newRecordingExitHandler()
	sup := newTestSupervisor(run, host, exit)

	sup.RegisterWatcher(context.Background(), StageAutoClicking)
	sup.StopWatching()
	host.running.Store(false)
	sup.Wait()

	time.Sleep(20 * time.Millisecond)
	if got := exit.calls(); len(got) != 0 {
		t.Fatalf("exit handler called %v by a stopped watcher", got)
	}
}

func TestRegisterWatcherPublishesStage(t *testing.T) {
	run := &RunState{}
	run.Begin("run")
	events := &eventRecorder{}
	sup := NewSupervisor(testLogger(), run, newFakeHost(), newRecordingExitHandler(), events, time.Millisecond)

	sup.RegisterWatcher(context.Background(), StageOpen)
	sup.RegisterWatcher(context.Background(), StagePlayingQuest)
	sup.StopWatching()
	sup.Wait()

	got := events.stages()
	if len(got) != 2 || got[0] != "Open" || got[1] != "PlayingQuest" {
		t.Fatalf("published stages = %v", got)
	}
}
