package popup

// Message box return codes, from winuser.h.
const (
	boxResultFailed = 0
	boxResultOK     = 1
)

type boxOutcome int

const (
	boxReopen boxOutcome = iota
	boxConfirmed
	boxFailed
)

// closeOutcome decides what a key-gated popup does when its message box goes
// away. OK is the default button, so it only confirms when Enter is the key.
// Any other close leaves the popup waiting for the key with the prompt shown
// again.
func closeOutcome(key Key, result int32) boxOutcome {
	switch {
	case result == boxResultFailed:
		return boxFailed
	case result == boxResultOK && key == KeyEnter:
		return boxConfirmed
	default:
		return boxReopen
	}
}
