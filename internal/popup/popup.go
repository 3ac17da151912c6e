package popup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind selects how a popup is shown. The set is closed: providers switch on it
// in a single place and reject anything else.
type Kind int

const (
	KindSimple Kind = iota
	KindTimed
	KindKeyGated
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindTimed:
		return "timed"
	case KindKeyGated:
		return "key-gated"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type Key string

const (
	KeyEnter  Key = "enter"
	KeySpace  Key = "space"
	KeyEscape Key = "escape"
	KeyTab    Key = "tab"
)

var (
	ErrUnknownKind = errors.New("unknown popup kind")
	ErrUnknownKey  = errors.New("unknown popup key")
	ErrBoxFailed   = errors.New("message box could not be shown")
)

func ParseKey(s string) (Key, error) {
	switch k := Key(strings.ToLower(strings.TrimSpace(s))); k {
	case KeyEnter, KeySpace, KeyEscape, KeyTab:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, s)
	}
}

type Popup struct {
	Kind    Kind
	Message string
	// Duration is how long a timed popup stays up.
	Duration time.Duration
	// Key closes a key-gated popup. OnClosed runs once the key is pressed, but
	// not when the popup is dismissed by cancellation. It is called before
	// Show returns.
	Key      Key
	OnClosed func()
}

func Simple(message string) Popup {
	return Popup{Kind: KindSimple, Message: message}
}

func Timed(message string, d time.Duration) Popup {
	return Popup{Kind: KindTimed, Message: message, Duration: d}
}

func KeyGated(message string, key Key, onClosed func()) Popup {
	return Popup{Kind: KindKeyGated, Message: message, Key: key, OnClosed: onClosed}
}

// Provider shows popups. Show blocks until the popup is gone: a timed popup
// after its duration, a key-gated popup after the key press or ctx being done.
type Provider interface {
	Show(ctx context.Context, p Popup) error
}
