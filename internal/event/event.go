package event

import "time"

type Event interface {
	Message() string
	OccurredAt() time.Time
	RunID() string
}

type BaseEvent struct {
	message    string
	occurredAt time.Time
	runID      string
}

func (b BaseEvent) Message() string {
	return b.message
}

func (b BaseEvent) OccurredAt() time.Time {
	return b.occurredAt
}

func (b BaseEvent) RunID() string {
	return b.runID
}

func Text(runID, message string) BaseEvent {
	return BaseEvent{
		message:    message,
		occurredAt: time.Now(),
		runID:      runID,
	}
}
