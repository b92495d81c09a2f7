package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lvcoi/ytdl-menu/internal/app"
	"github.com/lvcoi/ytdl-menu/internal/config"
	"github.com/lvcoi/ytdl-menu/internal/downloader"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := app.NewLogger(os.Stderr, "INFO")
	cfg := config.Load(logger)
	app.SetLevel(logger, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer downloader.CloseIdleConnections()

	var exitCode int
	root := newRootCmd(logger, cfg, &exitCode)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		// cobra already printed the usage error
		return downloader.ExitCode(&downloader.ValidationError{Field: "arguments", Attempts: 1, Err: err})
	}
	return exitCode
}
