package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"batchtube/internal/models"
)

// stubEngine writes a fake downloader script that prints progress lines, the
// landed file path, and a flood of trailing output larger than the line
// buffer, then returns an engine invoking it.
func stubEngine(t *testing.T, outFile string, exitCode int) *YtDlp {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub downloader script requires a POSIX shell")
	}

	script := fmt.Sprintf(`#!/bin/sh
echo "[download]  10.0%% of 1.00MiB at 1.00MiB/s ETA 00:05"
echo "[download] 100%% of 1.00MiB in 00:01"
echo "%s"
i=0
while [ $i -lt 300 ]; do
	echo "[debug] trailing line $i"
	i=$((i+1))
done
exit %d
`, outFile, exitCode)

	bin := filepath.Join(t.TempDir(), "fake-dl")
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write stub downloader: %v", err)
	}
	return NewYtDlp(bin)
}

// request with a cookie file pinned so Fetch skips browser-store resolution.
func stubRequest(t *testing.T) *models.DownloadRequest {
	t.Helper()
	return models.NewDownloadRequest("https://example.com/watch?v=abc", models.DownloadOptions{
		CookieFile: filepath.Join(t.TempDir(), "cookies.txt"),
	})
}

func TestFetchCapturesFilenameAndProgress(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(outFile, []byte("video bytes"), 0o644); err != nil {
		t.Fatalf("failed to write output file: %v", err)
	}
	e := stubEngine(t, outFile, 0)

	var fractions []float64
	outcome, err := e.Fetch(context.Background(), stubRequest(t),
		func(fraction, speed float64, eta time.Duration) {
			fractions = append(fractions, fraction)
		})
	if err != nil {
		t.Fatalf("expected fetch to pass, got: %v", err)
	}
	if outcome.Filename != outFile {
		t.Errorf("expected filename %q, got %q", outFile, outcome.Filename)
	}
	if outcome.BytesWritten != int64(len("video bytes")) {
		t.Errorf("expected %d bytes, got %d", len("video bytes"), outcome.BytesWritten)
	}

	// The path line lands well before the trailing flood ends; it must still
	// be captured, and both distinct progress events must have arrived.
	if len(fractions) != 2 || fractions[0] != 0.1 || fractions[1] != 1.0 {
		t.Errorf("expected progress fractions [0.1 1.0], got %v", fractions)
	}
}

func TestFetchReportsEngineFailure(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(outFile, []byte("video bytes"), 0o644); err != nil {
		t.Fatalf("failed to write output file: %v", err)
	}
	e := stubEngine(t, outFile, 3)

	_, err := e.Fetch(context.Background(), stubRequest(t), nil)
	if err == nil {
		t.Fatal("expected error for non-zero engine exit, got nil")
	}
}

func TestFetchFailsWithoutPrintedPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub downloader script requires a POSIX shell")
	}

	bin := filepath.Join(t.TempDir(), "fake-dl")
	script := "#!/bin/sh\necho \"[download] 100%\"\nexit 0\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write stub downloader: %v", err)
	}

	_, err := NewYtDlp(bin).Fetch(context.Background(), stubRequest(t), nil)
	if err == nil || !strings.Contains(err.Error(), "no output filename") {
		t.Fatalf("expected missing-filename error, got: %v", err)
	}
}
