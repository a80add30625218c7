// Package logging provides leveled, printf-style logging for batchtube,
// backed by zerolog with an optional file sink.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level controls debug verbosity (0-5). D calls above this level are dropped.
var Level int

var (
	mu  sync.Mutex
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
	logFile *os.File
)

// SetupLogging attaches a log file sink alongside console output.
func SetupLogging(logFilePath string) error {
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %q: %w", logFilePath, err)
	}
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f

	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	log = zerolog.New(io.MultiWriter(console, f)).With().Timestamp().Logger()
	return nil
}

// Close closes the log file sink if one was opened.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// I logs informational messages.
func I(format string, args ...any) {
	log.Info().Msgf(format, args...)
}

// S logs success messages.
func S(format string, args ...any) {
	log.Info().Str("result", "success").Msgf(format, args...)
}

// W logs warnings.
func W(format string, args ...any) {
	log.Warn().Msgf(format, args...)
}

// E logs errors.
func E(format string, args ...any) {
	log.Error().Msgf(format, args...)
}

// D logs debug messages at the given verbosity level.
func D(l int, format string, args ...any) {
	if l > Level {
		return
	}
	log.Debug().Int("lvl", l).Msgf(format, args...)
}
