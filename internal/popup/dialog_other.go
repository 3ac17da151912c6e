//go:build !windows

package popup

import (
	"fmt"
	"os"
)

// Native returns the popup provider for the current platform.
func Native() Provider {
	return NewConsole(os.Stdout, os.Stdin)
}

func Fatal(title, message string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
}
