package engine

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"batchtube/internal/domain/consts"
)

// progressRe matches yt-dlp --newline progress output, e.g.
// "[download]  42.3% of ~  12.34MiB at    1.20MiB/s ETA 00:42".
var progressRe = regexp.MustCompile(
	`\[download\]\s+([\d.]+)%(?:\s+of\s+~?\s*([\d.]+)([KMGT]?i?B))?(?:\s+at\s+([\d.]+)([KMGT]?i?B)/s)?(?:\s+ETA\s+([\d:]+))?`)

var sizeUnits = map[string]float64{
	"B":   1,
	"KiB": 1 << 10,
	"KB":  1e3,
	"MiB": 1 << 20,
	"MB":  1e6,
	"GiB": 1 << 30,
	"GB":  1e9,
	"TiB": 1 << 40,
	"TB":  1e12,
}

// ProgressEvent is one parsed progress line.
type ProgressEvent struct {
	Fraction float64
	Speed    float64 // bytes per second
	ETA      time.Duration
}

// parseProgressLine extracts a progress event from one line of yt-dlp output.
func parseProgressLine(line string) (ProgressEvent, bool) {
	m := progressRe.FindStringSubmatch(line)
	if m == nil {
		return ProgressEvent{}, false
	}

	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return ProgressEvent{}, false
	}

	ev := ProgressEvent{Fraction: pct / 100.0}

	if m[4] != "" {
		if speed, err := strconv.ParseFloat(m[4], 64); err == nil {
			ev.Speed = speed * sizeUnits[m[5]]
		}
	}
	if m[6] != "" {
		ev.ETA = parseClock(m[6])
	}
	return ev, true
}

// parseClock converts "MM:SS" or "HH:MM:SS" into a duration.
func parseClock(s string) time.Duration {
	parts := strings.Split(s, ":")
	var total int
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second
}

// isVideoFilePath reports whether a line looks like the printed output path of
// a finished download.
func isVideoFilePath(line string) bool {
	if !strings.HasPrefix(line, "/") {
		return false
	}
	ext := filepath.Ext(line)
	for _, valid := range consts.AllVidExtensions {
		if strings.EqualFold(ext, valid) {
			return true
		}
	}
	return false
}
