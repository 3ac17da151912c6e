package event

import (
	"context"
	"sync"
	"time"
)

// Status is the latest known state of the current or last run.
type Status struct {
	RunID       string    `json:"runId"`
	HostProcess string    `json:"hostProcess,omitempty"`
	Stage       string    `json:"stage,omitempty"`
	Playing     bool      `json:"playing"`
	Result      string    `json:"result,omitempty"`
	ElapsedTime string    `json:"elapsedTime,omitempty"`
	Message     string    `json:"message,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Tracker folds events into a Status. Register Handle on a Listener.
type Tracker struct {
	mu     sync.RWMutex
	status Status
}

func (t *Tracker) Handle(_ context.Context, e Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := &t.status
	switch evt := e.(type) {
	case RunStartedEvent:
		*s = Status{RunID: evt.RunID(), HostProcess: evt.HostProcess, Playing: true}
	case StageChangedEvent:
		s.Stage = evt.Stage
	case QuestFinishedEvent:
		s.Playing = false
		s.Result = evt.Result
		s.ElapsedTime = evt.ElapsedTime
	case HostExitedEvent:
		s.Playing = false
		s.Stage = evt.Stage
	case PendingRecoveredEvent:
		// A previous process' result, only fill in when nothing newer is known
		if s.RunID != "" {
			return nil
		}
		s.RunID = evt.RunID()
		s.Result = evt.Result
		s.ElapsedTime = evt.ElapsedTime
	default:
		return nil
	}
	s.Message = e.Message()
	s.UpdatedAt = e.OccurredAt()

	return nil
}

func (t *Tracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}
