package ocr

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript writes an executable shell script named tesseract
func writeScript(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script engine stand-in needs a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "tesseract")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

// writeFakeTesseract writes a shell script that echoes stdin back, or
// prints a version banner when called with --version
func writeFakeTesseract(t *testing.T) string {
	t.Helper()
	return writeScript(t, `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "tesseract 5.3.0"
  echo " leptonica-1.82.0"
  exit 0
fi
if [ "$4" = "fail" ]; then
  echo "Failed loading language 'fail'" >&2
  exit 1
fi
cat
`)
}

func TestCLIEngine_Recognize(t *testing.T) {
	e := NewCLIEngine(writeFakeTesseract(t))

	text, err := e.Recognize(context.Background(), []byte(`"name": "Bob"`), "eng")
	require.NoError(t, err)
	assert.Equal(t, `"name": "Bob"`, text)
	assert.Equal(t, "tesseract-cli", e.Name())
}

func TestCLIEngine_RecognizeFailure(t *testing.T) {
	e := NewCLIEngine(writeFakeTesseract(t))

	_, err := e.Recognize(context.Background(), []byte("img"), "fail")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed loading language")
}

func TestCLIEngine_Version(t *testing.T) {
	e := NewCLIEngine(writeFakeTesseract(t))

	v, err := e.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tesseract 5.3.0", v)
}

func TestCLIEngine_VersionStopsAtDeadline(t *testing.T) {
	e := NewCLIEngine(writeScript(t, "#!/bin/sh\nexec sleep 5\n"))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := e.Version(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestCLIEngine_VersionEmptyOutput(t *testing.T) {
	e := NewCLIEngine(writeScript(t, "#!/bin/sh\nexit 0\n"))

	_, err := e.Version(context.Background())
	assert.ErrorIs(t, err, ErrNoVersion)
}

func TestCLIEngine_MissingBinary(t *testing.T) {
	e := NewCLIEngine(filepath.Join(t.TempDir(), "no-such-tesseract"))

	_, err := e.Version(context.Background())
	assert.Error(t, err)

	_, err = e.Recognize(context.Background(), []byte("img"), "eng")
	assert.Error(t, err)
}
