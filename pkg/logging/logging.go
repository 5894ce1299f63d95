package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogFileEnv overrides the log file location. "off" disables the file.
const LogFileEnv = "CALVIN_LOG_FILE"

var (
	fileMu sync.Mutex
	file   *os.File
)

// SetupLogger configures the global logger for the given -v count.
// Output goes to stderr and to the calvin log file.
func SetupLogger(verbosity int) {
	setup(verbosity, zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	})
}

// SetupLoggerWithWriter is SetupLogger with the console side replaced by out.
func SetupLoggerWithWriter(verbosity int, out io.Writer) {
	setup(verbosity, out)
}

func setup(verbosity int, console io.Writer) {
	zerolog.SetGlobalLevel(levelFor(verbosity))

	writers := []io.Writer{console}
	path := LogFilePath()
	var fileErr error
	if path != "" {
		var f *os.File
		if f, fileErr = openLogFile(path); fileErr == nil {
			writers = append(writers, f)
		}
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).With().Timestamp()
	if verbosity >= 2 {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", path).Msg("Failed to create log file, logging to console only")
	}
	log.Debug().Int("verbosity", verbosity).Str("logFile", path).Msg("Logger initialized")
}

func levelFor(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// GetLogger returns a logger tagged with the component name.
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// LogFilePath returns where the log file lives, or "" when file logging is off.
// Without an override it is $XDG_STATE_HOME/calvin/calvin.log.
func LogFilePath() string {
	switch v := os.Getenv(LogFileEnv); v {
	case "off":
		return ""
	case "":
	default:
		return v
	}
	// xdg caches the environment at init
	xdg.Reload()
	if xdg.StateHome == "" {
		return "calvin.log"
	}
	return filepath.Join(xdg.StateHome, "calvin", "calvin.log")
}

// openLogFile opens path for appending, reusing the handle from an earlier
// setup when the path is unchanged.
func openLogFile(path string) (*os.File, error) {
	fileMu.Lock()
	defer fileMu.Unlock()

	if file != nil {
		if file.Name() == path {
			return file, nil
		}
		_ = file.Close()
		file = nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	file = f
	return f, nil
}

// LogOperationStart logs the start of an operation and returns a function to log its completion
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
