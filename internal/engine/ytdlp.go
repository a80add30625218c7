// Package engine wraps the external yt-dlp binary behind the Engine contract.
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"batchtube/internal/contracts"
	"batchtube/internal/domain/consts"
	"batchtube/internal/models"
	"batchtube/internal/utils/logging"
)

// YtDlp shells out to yt-dlp for each fetch, streaming progress back through
// the caller's callback.
type YtDlp struct {
	bin     string
	cookies *CookieManager
}

var _ contracts.Engine = (*YtDlp)(nil)

// NewYtDlp returns an engine invoking the given binary; empty means the
// default "yt-dlp" on PATH.
func NewYtDlp(bin string) *YtDlp {
	if bin == "" {
		bin = consts.YtDlpBin
	}
	return &YtDlp{
		bin:     bin,
		cookies: NewCookieManager(),
	}
}

// Fetch downloads one request, forwarding progress events until the engine
// process exits. Returns the landed file's path and size.
func (e *YtDlp) Fetch(ctx context.Context, req *models.DownloadRequest, onProgress contracts.ProgressFunc) (*models.Outcome, error) {
	var cookieFile string
	if req.Options.CookieSource == "" && req.Options.CookieFile == "" {
		// No explicit cookie choice: try the browser stores for this host.
		if path, err := e.cookies.ResolveCookieFile(req.URL); err == nil {
			cookieFile = path
		} else {
			logging.D(2, "No browser cookies resolved for %q: %v", req.URL, err)
		}
	}

	cmd := e.buildCommand(ctx, req, cookieFile)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe error: %w", err)
	}

	lineChan := make(chan string, 100)
	filenameChan := make(chan string, 1)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", e.bin, err)
	}

	// Merge stdout and stderr into lineChan.
	go func() {
		defer close(lineChan)
		scanner := bufio.NewScanner(io.MultiReader(stdout, stderr))
		for scanner.Scan() {
			select {
			case lineChan <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	go scanOutput(lineChan, filenameChan, req.URL, onProgress)

	// Both pipes must reach EOF before Wait may close them: the filename
	// arrives only after the scanner has drained all output.
	filename := <-filenameChan
	waitErr := cmd.Wait()

	if waitErr != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("download canceled for %s: %w", req.URL, ctx.Err())
		}
		return nil, fmt.Errorf("%s failed for %s: %w", e.bin, req.URL, waitErr)
	}
	if filename == "" {
		return nil, errors.New("no output filename captured")
	}

	if err := waitForFile(filename, consts.FileReadyTimeout); err != nil {
		return nil, err
	}
	size, err := verifyDownload(filename)
	if err != nil {
		return nil, err
	}

	return &models.Outcome{
		Filename:     filename,
		BytesWritten: size,
	}, nil
}

// scanOutput parses progress lines and captures the printed output path. It
// consumes every line so the merge goroutine never stalls on a full buffer,
// and delivers the filename only once the output is fully drained.
func scanOutput(lineChan <-chan string, filenameChan chan<- string, url string, onProgress contracts.ProgressFunc) {
	defer close(filenameChan)

	var (
		filename     string
		lastFraction float64
	)
	for line := range lineChan {
		if line == "" {
			continue
		}
		logging.D(4, "Engine output for %q: %q", url, line)

		if ev, ok := parseProgressLine(line); ok {
			if onProgress != nil && ev.Fraction != lastFraction {
				onProgress(ev.Fraction, ev.Speed, ev.ETA)
				lastFraction = ev.Fraction
			}
			continue
		}

		if filename == "" && isVideoFilePath(line) {
			filename = line
		}
	}
	filenameChan <- filename
}

// waitForFile waits until the file is ready in the file system.
func waitForFile(path string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return nil
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("unexpected error while checking file: %w", err)
		}
		time.Sleep(consts.Interval100ms)
	}
	return fmt.Errorf("file not ready after %v: %s", timeout, path)
}

// verifyDownload checks the landed file exists and is not empty.
func verifyDownload(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("download verification failed: %w", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("download path %q is a directory", path)
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("downloaded file is empty: %s", path)
	}
	return info.Size(), nil
}
