package app

import (
	"context"
	"errors"
	"os"

	"github.com/lvcoi/ytdl-menu/internal/console"
	"github.com/lvcoi/ytdl-menu/internal/downloader"
)

// ExitInterrupted is returned when the run was cancelled.
const ExitInterrupted = 130

// Source says what the URLs of a Request point to.
type Source string

const (
	SourceVideo    Source = "video"
	SourcePlaylist Source = "playlist"
	SourceChannel  Source = "channel"
)

// Request is one non-interactive command.
type Request struct {
	Source    Source
	URLs      []string
	AudioOnly bool
	// OutputDir wins over the configured directory. When both are empty the
	// user is asked, or the working directory is used without a terminal.
	OutputDir string
	// Quality is the 1-based stream index; 0 asks on a terminal and takes
	// the first stream otherwise.
	Quality int
}

// Result is the outcome of one video URL.
type Result struct {
	URL   string
	Files []string
	Err   error
}

// Run executes req and returns the per-URL results with the exit code: 0
// when everything succeeded, otherwise the highest code among the failures.
func (a *App) Run(ctx context.Context, req Request) ([]Result, int) {
	log := a.logger().WithField("command", string(req.Source))

	urls, err := a.resolve(ctx, req)
	if err != nil {
		log.WithError(err).Error("URL refusée")
		a.printer().Error(err)
		return nil, exitCode(ctx, err)
	}

	dir, err := a.outputDir(req.OutputDir)
	if err != nil {
		log.WithError(err).Error("dossier de sortie indisponible")
		a.printer().Error(err)
		return nil, exitCode(ctx, err)
	}

	opts := a.options(dir, req.AudioOnly)
	if req.Quality > 0 || !a.Interactive {
		opts.Choose = FixedQuality(req.Quality)
	}

	report, err := a.Batcher.DownloadMultiple(ctx, urls, opts)
	results := make([]Result, 0, len(urls))
	code := 0
	for _, u := range urls {
		res := Result{URL: u, Files: report.Outputs[u], Err: report.Errors[u]}
		if res.Err != nil {
			if c := downloader.ExitCode(res.Err); c > code {
				code = c
			}
		}
		results = append(results, res)
	}
	if err != nil {
		a.printer().Error(err)
		if c := exitCode(ctx, err); c > code {
			code = c
		}
	}
	if ctx.Err() != nil {
		code = ExitInterrupted
	}
	return results, code
}

// resolve validates the command URLs and expands collections.
func (a *App) resolve(ctx context.Context, req Request) ([]string, error) {
	switch req.Source {
	case SourcePlaylist, SourceChannel:
		if len(req.URLs) != 1 {
			return nil, &downloader.ValidationError{Field: "url de " + string(req.Source), Attempts: 1,
				Err: errors.New("une seule URL attendue")}
		}
		if req.Source == SourcePlaylist {
			return a.Expander.Playlist(ctx, req.URLs[0])
		}
		return a.Expander.Channel(ctx, req.URLs[0])
	default:
		if len(req.URLs) == 0 {
			return nil, &downloader.InvalidURLError{Reason: "aucune URL fournie"}
		}
		for _, u := range req.URLs {
			if err := downloader.ValidateURL(u); err != nil {
				return nil, err
			}
		}
		return req.URLs, nil
	}
}

func (a *App) outputDir(requested string) (string, error) {
	dir := requested
	if dir == "" {
		dir = a.Config.OutputDir
	}
	if dir == "" {
		if a.Interactive {
			return console.AskSavePath(a.Console, ".")
		}
		dir = "."
	}
	path, err := console.ResolvePath(dir)
	if err != nil {
		return "", &downloader.DirectoryCreationError{Path: dir, Err: err}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", &downloader.DirectoryCreationError{Path: path, Err: err}
	}
	return path, nil
}

func exitCode(ctx context.Context, err error) int {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	return downloader.ExitCode(err)
}

func (a *App) printer() *downloader.Printer {
	if a.Printer == nil {
		a.Printer = downloader.NewPrinter(nil)
	}
	return a.Printer
}
