package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/runboard/internal/cli"
)

const defaultRunTimeout = 5 * time.Minute

func main() {
	os.Exit(run())
}

func run() int {
	var (
		baseURL = flag.String("url", cli.DefaultBaseURL, "Base URL of the service")
		link    = flag.String("link", "", "Leaderboard link to load")
		gameID  = flag.String("game", "", "Game id to load when -link is empty")
		pages   = flag.Int("pages", cli.DefaultPages, "Leaderboard pages to print")
		games   = flag.Bool("games", false, "Print the newest games")
		popular = flag.Bool("popular", false, "Print the popular games")
		timeout = flag.Duration("timeout", cli.DefaultTimeout, "HTTP request timeout")
		logFile = flag.String("log", "", "Also write logs to this file")
		verbose = flag.Bool("verbose", false, "Debug logging and print dispatched events")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		cli.ShowHelp(os.Stdout)
		return 0
	}

	closer, err := cli.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = closer.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	config := &cli.Config{
		BaseURL: *baseURL,
		Link:    *link,
		GameID:  *gameID,
		Pages:   *pages,
		Games:   *games,
		Popular: *popular,
		Timeout: *timeout,
		Verbose: *verbose,
	}

	if err := cli.Run(ctx, config, os.Stdout); err != nil {
		os.Stderr.WriteString("runboard-cli: " + err.Error() + "\n")
		return 1
	}
	return 0
}
