package engine

import (
	"context"
	"os/exec"
	"path/filepath"
	"strconv"

	"batchtube/internal/domain/consts"
	"batchtube/internal/models"
	"batchtube/internal/utils/logging"
)

// yt-dlp argument strings.
const (
	argOutput            = "-o"
	argFormat            = "-f"
	argPrint             = "--print"
	argAfterMove         = "after_move:filepath"
	argNewline           = "--newline"
	argProgress          = "--progress"
	argRestrictFilenames = "--restrict-filenames"
	argMaxFilesize       = "--max-filesize"
	argRetries           = "--retries"
	argCookies           = "--cookies"
	argCookiesFromBrowse = "--cookies-from-browser"
	argNoPlaylist        = "--no-playlist"
)

// buildCommand assembles the yt-dlp invocation for one request.
func (e *YtDlp) buildCommand(ctx context.Context, req *models.DownloadRequest, cookieFile string) *exec.Cmd {
	opts := req.Options
	args := make([]string, 0, 24)

	args = append(args, argRestrictFilenames, argNewline, argProgress, argNoPlaylist)

	tmpl := opts.OutputTemplate
	if tmpl == "" {
		tmpl = consts.DefaultOutputTmpl
	}
	outPath := tmpl
	if opts.OutputDir != "" {
		outPath = filepath.Join(opts.OutputDir, tmpl)
	}
	args = append(args, argOutput, outPath)

	// Print the final file path to stdout once the download lands.
	args = append(args, argPrint, argAfterMove)

	if opts.Format != "" {
		args = append(args, argFormat, opts.Format)
	}
	if opts.MaxFilesize != "" {
		args = append(args, argMaxFilesize, opts.MaxFilesize)
	}
	if opts.Retries > 0 {
		args = append(args, argRetries, strconv.Itoa(opts.Retries))
	}

	switch {
	case cookieFile != "":
		args = append(args, argCookies, cookieFile)
	case opts.CookieFile != "":
		args = append(args, argCookies, opts.CookieFile)
	case opts.CookieSource != "":
		args = append(args, argCookiesFromBrowse, opts.CookieSource)
	}

	args = append(args, opts.ExtraArgs...)

	// Target URL goes last.
	args = append(args, req.URL)

	cmd := exec.CommandContext(ctx, e.bin, args...)
	logging.D(1, "Built download command for %q: %v", req.URL, cmd.String())
	return cmd
}
