package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// OCR recognises text in an image.
type OCR interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Tesseract runs the tesseract command, reading the image from stdin.
type Tesseract struct {
	Bin       string
	Languages string
}

func (t Tesseract) Recognize(ctx context.Context, image []byte) (string, error) {
	cmd := exec.CommandContext(ctx, t.Bin, "stdin", "stdout", "-l", t.Languages)
	cmd.Stdin = bytes.NewReader(image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Available reports whether the tesseract binary can be found.
func (t Tesseract) Available() bool {
	_, err := exec.LookPath(t.Bin)
	return err == nil
}
