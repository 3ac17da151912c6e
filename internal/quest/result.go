package quest

import (
	"fmt"
	"time"
)

type Result int

const (
	ResultOngoing Result = iota
	ResultCompleted
	ResultFailed
)

// UnknownElapsedTime replaces an elapsed time that could not be read.
const UnknownElapsedTime = "Unknown"

func (r Result) String() string {
	switch r {
	case ResultOngoing:
		return "Ongoing"
	case ResultCompleted:
		return "Completed"
	case ResultFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

func (r Result) Terminal() bool {
	return r == ResultCompleted || r == ResultFailed
}

func (r Result) MarshalText() ([]byte, error) {
	if !r.Terminal() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidResult, r)
	}
	return []byte(r.String()), nil
}

func (r *Result) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Completed":
		*r = ResultCompleted
	case "Failed":
		*r = ResultFailed
	default:
		return fmt.Errorf("%w: %q", ErrInvalidResult, string(b))
	}
	return nil
}

// Record is the crash recovery copy of a finished quest. Only terminal results
// are ever stored.
type Record struct {
	RunID       string    `json:"runId"`
	Result      Result    `json:"result"`
	ElapsedTime string    `json:"elapsedTime"`
	SavedAt     time.Time `json:"savedAt"`
}
