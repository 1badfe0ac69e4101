// Package cli is a terminal client for a running runboard server.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/runboard/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging initializes the logger. When logFile is set, log lines go to
// stderr and the file.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = io.NopCloser(nil)
	)
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, file)
		closer = file
	}
	if err := logger.InitWithWriter(w); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	if err := logger.SetLevelString(level); err != nil {
		return nil, fmt.Errorf("failed to set log level: %w", err)
	}
	return closer, nil
}

// ShowHelp prints usage information.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `runboard client
===============

Prints speedrun.com leaderboards and games through a running runboard server.

Usage:
  go run ./cmd/runboard-cli [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -link string
        Leaderboard link, e.g. https://www.speedrun.com/api/v1/leaderboards/{game}/category/{category}
  -game string
        Game id; loads its first per-game category when -link is empty
  -pages int
        Leaderboard pages to print (default 1)
  -games
        Print the newest games
  -popular
        Print the popular games
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Also write logs to this file
  -verbose
        Debug logging and print dispatched events
  -help
        Show this help message

Examples:
  go run ./cmd/runboard-cli -link https://www.speedrun.com/api/v1/leaderboards/o1y9wo6q/category/7dgrrxk4 -pages 2
  go run ./cmd/runboard-cli -games -popular
`)
}
