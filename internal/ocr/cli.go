package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CLIEngineName identifies the CLI engine in configuration and logs
const CLIEngineName = "tesseract-cli"

// waitDelay bounds how long Wait blocks on output pipes after the process
// is killed, in case it left children holding them open
const waitDelay = time.Second

// ErrNoVersion is returned when the binary runs but prints no version
var ErrNoVersion = errors.New("tesseract printed no version")

// CLIEngine runs OCR by piping the image through the tesseract binary.
// It needs no cgo, only a tesseract install on PATH.
type CLIEngine struct {
	binary string
}

// NewCLIEngine creates a new CLI engine. An empty binary means "tesseract".
func NewCLIEngine(binary string) *CLIEngine {
	if binary == "" {
		binary = "tesseract"
	}
	return &CLIEngine{binary: binary}
}

// Name returns the engine identifier
func (e *CLIEngine) Name() string {
	return CLIEngineName
}

// Recognize performs OCR on the image bytes
func (e *CLIEngine) Recognize(ctx context.Context, image []byte, language string) (string, error) {
	if language == "" {
		language = "eng"
	}

	// tesseract stdin stdout -l eng
	cmd := exec.CommandContext(ctx, e.binary, "stdin", "stdout", "-l", language)
	cmd.Stdin = bytes.NewReader(image)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("tesseract command failed: %w, output: %s", err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// Version returns the first line of `tesseract --version`
func (e *CLIEngine) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, e.binary, "--version")
	cmd.WaitDelay = waitDelay

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("tesseract --version: %w", ctx.Err())
		}
		return "", fmt.Errorf("tesseract not found or not executable: %w", err)
	}

	line, _, _ := strings.Cut(string(output), "\n")
	if line = strings.TrimSpace(line); line == "" {
		return "", ErrNoVersion
	}
	return line, nil
}
