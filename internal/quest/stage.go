package quest

import "fmt"

// Stage is the lifecycle phase a watcher is bound to.
type Stage int

const (
	StageOpen Stage = iota
	StageAutoClicking
	StagePlayingQuest
	// StageEnding is only used for exit messages, nothing polls under it.
	StageEnding
)

func (s Stage) String() string {
	switch s {
	case StageOpen:
		return "Open"
	case StageAutoClicking:
		return "AutoClicking"
	case StagePlayingQuest:
		return "PlayingQuest"
	case StageEnding:
		return "Ending"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

func exitMessage(s Stage) string {
	switch s {
	case StageOpen:
		return "Quest was initialized, but no actions were taken."
	case StageAutoClicking:
		return "Auto-clicking was in progress but was interrupted."
	case StagePlayingQuest:
		return "The quest was in progress when the exit occurred."
	case StageEnding:
		return "The quest was in the ending phase when it was interrupted."
	default:
		return fmt.Sprintf("Host exited at an unknown stage: %d", int(s))
	}
}
