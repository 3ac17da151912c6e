package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strings"
)

// pageSegMode 7 treats the image as a single line of text, which is what the
// HUD regions hold.
const pageSegMode = "7"

type Tesseract struct {
	binary   string
	language string
}

func NewTesseract(binary, language string) *Tesseract {
	return &Tesseract{binary: binary, language: language}
}

// Text runs one recognition. Killing the process is how a cancelled read
// returns early.
func (t *Tesseract) Text(ctx context.Context, img image.Image) (string, error) {
	var in bytes.Buffer
	if err := png.Encode(&in, img); err != nil {
		return "", fmt.Errorf("encoding image: %w", err)
	}

	var out, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.binary, t.args()...)
	cmd.Stdin = &in
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	hideWindow(cmd)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%s failed: %w: %s", t.binary, err, strings.TrimSpace(stderr.String()))
	}

	return normalize(out.String()), nil
}

func (t *Tesseract) args() []string {
	return []string{"stdin", "stdout", "-l", t.language, "--psm", pageSegMode}
}

// normalize joins the recognised lines with single spaces.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
