package engine

import (
	"math"
	"testing"
	"time"
)

func TestParseProgressLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		ok       bool
		fraction float64
		speed    float64
		eta      time.Duration
	}{
		{
			name:     "full line with estimate",
			line:     "[download]  42.3% of ~  12.34MiB at    1.20MiB/s ETA 00:42",
			ok:       true,
			fraction: 0.423,
			speed:    1.20 * (1 << 20),
			eta:      42 * time.Second,
		},
		{
			name:     "exact size, hour-long ETA",
			line:     "[download]   5.0% of 1.50GiB at 500.00KiB/s ETA 01:02:03",
			ok:       true,
			fraction: 0.05,
			speed:    500 * (1 << 10),
			eta:      1*time.Hour + 2*time.Minute + 3*time.Second,
		},
		{
			name:     "bare percentage",
			line:     "[download] 100%",
			ok:       true,
			fraction: 1.0,
		},
		{
			name: "destination line",
			line: "[download] Destination: /videos/example.mp4",
			ok:   false,
		},
		{
			name: "unrelated output",
			line: "[info] Downloading video thumbnail",
			ok:   false,
		},
		{
			name: "empty line",
			line: "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := parseProgressLine(tt.line)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if !ok {
				return
			}
			if math.Abs(ev.Fraction-tt.fraction) > 1e-9 {
				t.Errorf("expected fraction %v, got %v", tt.fraction, ev.Fraction)
			}
			if math.Abs(ev.Speed-tt.speed) > 1e-6 {
				t.Errorf("expected speed %v, got %v", tt.speed, ev.Speed)
			}
			if ev.ETA != tt.eta {
				t.Errorf("expected ETA %v, got %v", tt.eta, ev.ETA)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	if got := parseClock("00:42"); got != 42*time.Second {
		t.Errorf("expected 42s, got %v", got)
	}
	if got := parseClock("01:02:03"); got != time.Hour+2*time.Minute+3*time.Second {
		t.Errorf("expected 1h2m3s, got %v", got)
	}
	if got := parseClock("bogus"); got != 0 {
		t.Errorf("expected 0 for junk input, got %v", got)
	}
}

func TestIsVideoFilePath(t *testing.T) {
	valid := []string{
		"/videos/example.mp4",
		"/videos/Example Video.MKV",
		"/tmp/clip.webm",
	}
	for _, p := range valid {
		if !isVideoFilePath(p) {
			t.Errorf("expected %q to be treated as a video path", p)
		}
	}

	invalid := []string{
		"relative/path.mp4",
		"/videos/notes.txt",
		"[download] 100% of 10MiB",
		"",
	}
	for _, p := range invalid {
		if isVideoFilePath(p) {
			t.Errorf("expected %q to be rejected", p)
		}
	}
}
