package host

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name, candidate string
		want            bool
	}{
		{"Spartan", "Spartan.exe", true},
		{"spartan.exe", "SPARTAN.EXE", true},
		{"Spartan", "Spartan", true},
		{"Spartan", "SpartanLauncher.exe", false},
		{"Spartan", "", false},
	}
	for _, tt := range tests {
		if got := matches(tt.name, tt.candidate); got != tt.want {
			t.Errorf("matches(%q, %q) = %v, want %v", tt.name, tt.candidate, got, tt.want)
		}
	}
}

func TestWaitRunningTimesOut(t *testing.T) {
	p := New(slog.New(slog.NewTextHandler(io.Discard, nil)), "questengine-no-such-process")

	start := time.Now()
	err := p.WaitRunning(context.Background(), 50*time.Millisecond)
	if !errors.Is(err, ErrNotStarted) {
		t.Fatalf("WaitRunning() error = %v, want ErrNotStarted", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("WaitRunning() ignored its timeout")
	}
}

func TestKillWithoutProcess(t *testing.T) {
	p := New(slog.New(slog.NewTextHandler(io.Discard, nil)), "questengine-no-such-process")
	if p.IsRunning() {
		t.Skip("process table unexpectedly contains the test name")
	}
	if err := p.Kill(); err != nil {
		t.Fatalf("Kill() error = %v", err)
	}
}
