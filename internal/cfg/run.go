package cfg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"batchtube/internal/batch"
	"batchtube/internal/contracts"
	"batchtube/internal/domain/keys"
	"batchtube/internal/engine"
	"batchtube/internal/files"
	"batchtube/internal/models"
	"batchtube/internal/utils/logging"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// runBatch gathers URLs from arguments and the batch file, submits them as one
// batch, and blocks until every item reaches a terminal state.
func runBatch(ctx context.Context, store contracts.HistoryStore, args []string) error {
	urls := append([]string(nil), args...)

	fs := afero.NewOsFs()
	if batchFile := viper.GetString(keys.BatchFile); batchFile != "" {
		fileURLs, err := files.LoadURLFile(fs, batchFile)
		if err != nil {
			return err
		}
		logging.I("Loaded %d URLs from %q", len(fileURLs), batchFile)
		urls = append(urls, fileURLs...)
	}
	urls = dedupeURLs(urls)
	if len(urls) == 0 {
		return errors.New("no URLs to download")
	}

	opts := models.DownloadOptions{
		Format:         viper.GetString(keys.Format),
		OutputDir:      viper.GetString(keys.OutputDir),
		OutputTemplate: viper.GetString(keys.OutputTmpl),
		MaxFilesize:    viper.GetString(keys.MaxFilesize),
		CookieSource:   viper.GetString(keys.CookieSource),
		CookieFile:     viper.GetString(keys.CookieFile),
		Retries:        viper.GetInt(keys.Retries),
		ExtraArgs:      viper.GetStringSlice(keys.ExtraArgs),
	}

	requests := make([]*models.DownloadRequest, 0, len(urls))
	for _, u := range urls {
		requests = append(requests, models.NewDownloadRequest(u, opts))
	}

	h, err := batch.Submit(ctx, engine.NewYtDlp(""), requests, batch.SubmitOptions{
		MaxConcurrent: viper.GetInt(keys.MaxConcurrent),
		Store:         store,
	})
	if err != nil {
		return err
	}

	go displayProgress(h)

	result, err := h.Await(ctx)
	if err != nil {
		h.Stop()
		<-h.Done()
		result, _ = h.Await(context.Background())
	}

	if logPath, logErr := files.WriteBatchLog(fs, opts.OutputDir, result); logErr != nil {
		logging.W("Failed to write batch log: %v", logErr)
	} else {
		logging.D(1, "Batch log written to %q", logPath)
	}

	printSummary(result)
	return err
}

// displayProgress prints overall completion on an interval until the batch ends.
func displayProgress(h *batch.Handle) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.Done():
			return
		case <-ticker.C:
			snap := h.Progress()
			fmt.Printf("\rDownloading... %5.1f%% (%d items)", snap.Overall*100, len(snap.Items))
		}
	}
}

// printSummary writes the end-of-batch report to stdout.
func printSummary(result *models.BatchResult) {
	succeeded, failed, skipped := result.Counts()
	fmt.Printf("\nBatch %s: %d succeeded, %d failed, %d skipped (took %s)\n",
		result.BatchID, succeeded, failed, skipped,
		result.FinishedAt.Sub(result.StartedAt).Round(time.Second))

	for _, item := range result.Items {
		switch item.Status {
		case models.StatusFailed:
			fmt.Printf("  FAILED  %s: %s\n", item.URL, item.ErrReason)
		case models.StatusSkipped:
			fmt.Printf("  SKIPPED %s\n", item.URL)
		}
	}
}

// dedupeURLs drops repeated URLs, preserving first-seen order.
func dedupeURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := urls[:0]
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			logging.D(1, "Dropping duplicate URL %q", u)
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
