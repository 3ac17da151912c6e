package event

type RunStartedEvent struct {
	BaseEvent
	HostProcess string
}

func RunStarted(be BaseEvent, hostProcess string) RunStartedEvent {
	return RunStartedEvent{
		BaseEvent:   be,
		HostProcess: hostProcess,
	}
}

// StageChangedEvent is sent every time a new watcher takes over supervision.
type StageChangedEvent struct {
	BaseEvent
	Stage string
}

func StageChanged(be BaseEvent, stage string) StageChangedEvent {
	return StageChangedEvent{
		BaseEvent: be,
		Stage:     stage,
	}
}

type QuestFinishedEvent struct {
	BaseEvent
	Result      string
	ElapsedTime string
}

func QuestFinished(be BaseEvent, result, elapsedTime string) QuestFinishedEvent {
	return QuestFinishedEvent{
		BaseEvent:   be,
		Result:      result,
		ElapsedTime: elapsedTime,
	}
}

// HostExitedEvent reports the host process disappearing while a run was live.
type HostExitedEvent struct {
	BaseEvent
	Stage string
}

func HostExited(be BaseEvent, stage string) HostExitedEvent {
	return HostExitedEvent{
		BaseEvent: be,
		Stage:     stage,
	}
}

// PendingRecoveredEvent carries a result that was persisted by a previous
// process but never cleared.
type PendingRecoveredEvent struct {
	BaseEvent
	Result      string
	ElapsedTime string
}

func PendingRecovered(be BaseEvent, result, elapsedTime string) PendingRecoveredEvent {
	return PendingRecoveredEvent{
		BaseEvent:   be,
		Result:      result,
		ElapsedTime: elapsedTime,
	}
}
