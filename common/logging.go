package common

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	loggersMu sync.Mutex
	loggers   []*log.Logger
	logLevel  = log.InfoLevel
)

// NewLogger creates a component logger writing to stderr with the given prefix.
// Every logger created here follows the level set through SetLogLevel, including
// loggers created before the level changed.
//
// Parameters:
//   - prefix: the component name printed before each message (e.g. "renderer")
//
// Returns:
//   - *log.Logger: the component logger
func NewLogger(prefix string) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          prefix,
	})

	loggersMu.Lock()
	defer loggersMu.Unlock()
	l.SetLevel(logLevel)
	loggers = append(loggers, l)
	return l
}

// SetLogLevel parses a level name ("debug", "info", "warn", "error", "fatal") and applies it
// to the default charmbracelet logger and every component logger created by NewLogger.
//
// Parameters:
//   - level: the level name
//
// Returns:
//   - error: an error if the level name is not recognized
func SetLogLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}

	loggersMu.Lock()
	defer loggersMu.Unlock()
	logLevel = lvl
	log.SetLevel(lvl)
	for _, l := range loggers {
		l.SetLevel(lvl)
	}
	return nil
}
