// Package consts holds various global, unchanging values.
package consts

import "time"

// External downloader binary.
const (
	YtDlpBin = "yt-dlp"
)

// Intervals and timeouts.
const (
	Interval100ms    = 100 * time.Millisecond
	WorkerBackoff    = 250 * time.Millisecond
	FileReadyTimeout = 10 * time.Second
	FlushTimeout     = 5 * time.Second
)

// Defaults.
const (
	DefaultMaxConcurrent = 3
	DefaultRetries       = 3
	DefaultOutputTmpl    = "%(title)s.%(ext)s"
)

// AllVidExtensions is a list of video file extensions.
var AllVidExtensions = [...]string{".3gp", ".avi", ".f4v", ".flv", ".m4v", ".mkv",
	".mov", ".mp4", ".mpeg", ".mpg", ".ogm", ".ogv",
	".ts", ".vob", ".webm", ".wmv"}
