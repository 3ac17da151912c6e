package quest

import "sync"

// RunState is the isPlaying flag shared by the whole supervision subsystem.
// End is the only way to clear it and exactly one caller wins per run, which
// is what keeps exit handling and completion handling mutually exclusive.
type RunState struct {
	mu        sync.Mutex
	isPlaying bool
	runID     string
}

func (r *RunState) Begin(runID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isPlaying {
		return false
	}
	r.isPlaying = true
	r.runID = runID
	return true
}

func (r *RunState) IsPlaying() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isPlaying
}

// End reports whether this call moved the run from playing to stopped.
func (r *RunState) End() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isPlaying {
		return false
	}
	r.isPlaying = false
	return true
}

func (r *RunState) RunID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runID
}
