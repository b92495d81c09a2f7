package app

import (
	"context"

	"github.com/lvcoi/ytdl-menu/internal/config"
	"github.com/lvcoi/ytdl-menu/internal/console"
	"github.com/lvcoi/ytdl-menu/internal/downloader"
	"github.com/sirupsen/logrus"
)

// Batcher downloads a list of URLs as one batch.
type Batcher interface {
	DownloadMultiple(ctx context.Context, urls []string, opts downloader.Options) (downloader.Report, error)
}

// Expander turns a playlist or channel URL into video URLs.
type Expander interface {
	Playlist(ctx context.Context, url string) ([]string, error)
	Channel(ctx context.Context, url string) ([]string, error)
}

// App wires the console, the orchestrator and the configuration together.
// It backs both the interactive menu and the one-shot commands.
type App struct {
	Console  console.Console
	Batcher  Batcher
	Expander Expander
	Printer  *downloader.Printer
	Log      logrus.FieldLogger
	Config   config.Config

	// Interactive allows prompting; without it every missing answer takes
	// its default.
	Interactive bool
	// Progress receives the transfer events, nil for none.
	Progress downloader.ProgressHandler
	// Choose overrides the quality prompt, typically with the TUI picker.
	Choose downloader.ChoiceFunc
}

func (a *App) options(saveDir string, audioOnly bool) downloader.Options {
	return downloader.Options{
		SavePath:   saveDir,
		AudioOnly:  audioOnly,
		Choose:     a.chooser(),
		Progress:   a.Progress,
		MaxWorkers: a.Config.MaxWorkers,
		Transcode:  a.Config.Transcode,
		TagAudio:   a.Config.TagAudio,
	}
}

func (a *App) chooser() downloader.ChoiceFunc {
	if a.Choose != nil {
		return a.Choose
	}
	return console.QualityChooser(a.Console)
}

func (a *App) logger() logrus.FieldLogger {
	if a.Log == nil {
		return logrus.StandardLogger()
	}
	return a.Log
}

// FixedQuality always picks index n, clamped to the streams of the first video.
func FixedQuality(n int) downloader.ChoiceFunc {
	return func(_ bool, streams []downloader.Stream) (int, error) {
		if n < 1 {
			return 1, nil
		}
		if n > len(streams) {
			return len(streams), nil
		}
		return n, nil
	}
}
