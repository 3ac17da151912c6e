package quest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hectorgimenez/questengine/internal/config"
	"golang.org/x/sync/errgroup"
)

type recordingCompleter struct {
	mu      sync.Mutex
	results []Result
	elapsed []string
}

func (c *recordingCompleter) Handle(_ context.Context, result Result, elapsed string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
	c.elapsed = append(c.elapsed, elapsed)
	return nil
}

type monitorFixture struct {
	monitor    *ResultMonitor
	run        *RunState
	ocr        *fakeRecognizer
	store      *fakeStore
	completion *recordingCompleter
	tasks      *errgroup.Group
	cfg        config.Config
}

func newMonitorFixture() *monitorFixture {
	cfg := testConfig()
	run := &RunState{}
	run.Begin("run")
	ocr := newFakeRecognizer()
	store := &fakeStore{}
	completion := &recordingCompleter{}
	tasks := &errgroup.Group{}
	sup := newTestSupervisor(run, newFakeHost(), newRecordingExitHandler())

	return &monitorFixture{
		monitor: &ResultMonitor{
			logger:        testLogger(),
			supervisor:    sup,
			run:           run,
			sensor:        &sensor{capture: fakeCapturer{}, ocr: ocr, tasks: tasks},
			store:         store,
			completion:    completion,
			statusRegion:  cfg.Regions.Status.Rect(),
			timerRegion:   cfg.Regions.Timer.Rect(),
			successMarker: cfg.Markers.Success,
			failureMarker: cfg.Markers.Failure,
			interval:      time.Millisecond,
			retryInterval: time.Millisecond,
		},
		run:        run,
		ocr:        ocr,
		store:      store,
		completion: completion,
		tasks:      tasks,
		cfg:        cfg,
	}
}

func TestClassify(t *testing.T) {
	f := newMonitorFixture()
	tests := []struct {
		text string
		want Result
	}{
		{"QUEST COMPLETE", ResultCompleted},
		{"quest FAILED", ResultFailed},
		{"in progress", ResultOngoing},
		{"", ResultOngoing},
	}
	for _, tt := range tests {
		if got := f.monitor.classify(tt.text); got != tt.want {
			t.Errorf("classify(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestElapsedTimeRetries(t *testing.T) {
	tests := []struct {
		name      string
		empty     int
		wantReads int
		want      string
	}{
		{"first read", 0, 1, "01:02:03"},
		{"after three empty reads", 3, 4, "01:02:03"},
		{"last allowed read", maxElapsedTimeReads - 1, maxElapsedTimeReads, "01:02:03"},
		{"never readable", maxElapsedTimeReads, maxElapsedTimeReads, UnknownElapsedTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMonitorFixture()
			script := make([]string, 0, tt.empty+1)
			for i := 0; i < tt.empty; i++ {
				script = append(script, "--:--")
			}
			script = append(script, "time 01:02:03 left")
			f.ocr.script(f.cfg.Regions.Timer, script...)

			got, ok := f.monitor.readElapsedTime(context.Background())
			_ = f.tasks.Wait()
			if !ok {
				t.Fatal("readElapsedTime() reported cancellation")
			}
			if got != tt.want {
				t.Errorf("elapsed = %q, want %q", got, tt.want)
			}
			if reads := f.ocr.readCount(f.cfg.Regions.Timer); reads != tt.wantReads {
				t.Errorf("timer reads = %d, want %d", reads, tt.wantReads)
			}
		})
	}
}

func TestElapsedTimeRequiresFullMatch(t *testing.T) {
	f := newMonitorFixture()
	f.ocr.script(f.cfg.Regions.Timer, "1:02:03", "123:45:678", "00:45:12")

	got, _ := f.monitor.readElapsedTime(context.Background())
	_ = f.tasks.Wait()
	if got != "00:45:12" {
		t.Fatalf("elapsed = %q, want 00:45:12", got)
	}
	if reads := f.ocr.readCount(f.cfg.Regions.Timer); reads != 3 {
		t.Errorf("timer reads = %d, want 3", reads)
	}
}

func TestElapsedTimeAbortsOnCancel(t *testing.T) {
	f := newMonitorFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := f.monitor.readElapsedTime(ctx); ok {
		t.Fatal("readElapsedTime() should report cancellation")
	}
	_ = f.tasks.Wait()
}

func TestMonitorPersistsBeforeCompletion(t *testing.T) {
	f := newMonitorFixture()
	f.ocr.script(f.cfg.Regions.Status, "running", "running", "QUEST FAILED")
	f.ocr.script(f.cfg.Regions.Timer, "00:10:00")

	if err := f.monitor.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	_ = f.tasks.Wait()
	f.monitor.supervisor.Wait()

	saved, _ := f.store.snapshot()
	if len(saved) != 1 || saved[0].Result != ResultFailed || saved[0].ElapsedTime != "00:10:00" || saved[0].RunID != "run" {
		t.Fatalf("saved = %+v", saved)
	}
	if len(f.completion.results) != 1 || f.completion.results[0] != ResultFailed || f.completion.elapsed[0] != "00:10:00" {
		t.Fatalf("completion = %v %v", f.completion.results, f.completion.elapsed)
	}
	if f.run.IsPlaying() {
		t.Error("run should be stopped after a terminal result")
	}
}

func TestMonitorYieldsWhenRunAlreadyEnded(t *testing.T) {
	f := newMonitorFixture()
	f.ocr.script(f.cfg.Regions.Timer, "00:10:00")
	f.run.End()

	token := context.Background()
	if err := f.monitor.finish(context.Background(), token, ResultCompleted); err != nil {
		t.Fatalf("finish() error = %v", err)
	}
	_ = f.tasks.Wait()

	if saved, _ := f.store.snapshot(); len(saved) != 0 {
		t.Fatalf("saved %+v although exit handling owned the run", saved)
	}
	if len(f.completion.results) != 0 {
		t.Fatal("completion handler ran although exit handling owned the run")
	}
}

func TestMonitorCancelledBeforeTerminal(t *testing.T) {
	f := newMonitorFixture()
	f.ocr.script(f.cfg.Regions.Status, "running")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.monitor.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop on cancellation")
	}
	_ = f.tasks.Wait()
	f.monitor.supervisor.Wait()

	if saved, _ := f.store.snapshot(); len(saved) != 0 {
		t.Fatalf("saved %+v after cancellation", saved)
	}
	if !f.run.IsPlaying() {
		t.Error("cancellation must not end the run")
	}
}
