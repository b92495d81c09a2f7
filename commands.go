package main

import (
	"context"
	"os"
	"time"

	"github.com/lvcoi/ytdl-menu/internal/app"
	"github.com/lvcoi/ytdl-menu/internal/config"
	"github.com/lvcoi/ytdl-menu/internal/console"
	"github.com/lvcoi/ytdl-menu/internal/downloader"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const pauseSeconds = 3

type globalFlags struct {
	logLevel  string
	outputDir string
	workers   int
	transcode bool
	tag       bool
	picker    string
	progress  string
	timeout   time.Duration
}

type downloadFlags struct {
	audio   bool
	quality int
}

func newRootCmd(logger *logrus.Logger, cfg config.Config, exitCode *int) *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:          "ytdl-menu",
		Short:        "Program Youtube Downloader",
		Long:         "Télécharge des vidéos Youtube (mp4) ou leur piste audio (mp3), depuis un menu ou en ligne de commande.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.SetLevel(logger, g.logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			*exitCode = runMenu(cmd.Context(), logger, g.apply(cfg))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.logLevel, "log-level", cfg.LogLevel, "log level: DEBUG, INFO, WARNING, ERROR, CRITICAL")
	pf.StringVarP(&g.outputDir, "output-dir", "o", cfg.OutputDir, "destination directory")
	pf.IntVarP(&g.workers, "workers", "w", cfg.MaxWorkers, "parallel downloads")
	pf.BoolVar(&g.transcode, "transcode", cfg.Transcode, "re-encode audio to real MP3 with ffmpeg when available")
	pf.BoolVar(&g.tag, "tag", cfg.TagAudio, "write title and artist ID3 tags into transcoded MP3 files")
	pf.StringVar(&g.picker, "picker", cfg.Picker, "quality picker: prompt or tui")
	pf.StringVar(&g.progress, "progress", cfg.Progress, "progress display: bar or plain")
	pf.DurationVar(&g.timeout, "timeout", cfg.Timeout, "per-request timeout")

	root.AddCommand(
		&cobra.Command{
			Use:   "menu",
			Short: "Run the interactive menu",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				*exitCode = runMenu(cmd.Context(), logger, g.apply(cfg))
				return nil
			},
		},
		newDownloadCmd(logger, cfg, g, exitCode, app.SourceVideo, "video URL [URL...]", "Download one or more videos", cobra.MinimumNArgs(1)),
		newDownloadCmd(logger, cfg, g, exitCode, app.SourcePlaylist, "playlist URL", "Download a playlist", cobra.ExactArgs(1)),
		newDownloadCmd(logger, cfg, g, exitCode, app.SourceChannel, "channel URL", "Download the uploads of a channel", cobra.ExactArgs(1)),
	)
	return root
}

func newDownloadCmd(logger *logrus.Logger, cfg config.Config, g *globalFlags, exitCode *int, source app.Source, use, short string, args cobra.PositionalArgs) *cobra.Command {
	d := &downloadFlags{}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _ := buildApp(logger, g.apply(cfg))
			_, code := a.Run(cmd.Context(), app.Request{
				Source:    source,
				URLs:      args,
				AudioOnly: d.audio,
				OutputDir: g.outputDir,
				Quality:   d.quality,
			})
			*exitCode = code
			return nil
		},
	}
	cmd.Flags().BoolVar(&d.audio, "audio", cfg.AudioOnly, "download the audio track only (mp3)")
	cmd.Flags().IntVarP(&d.quality, "quality", "q", 0, "1-based stream index (0 asks on a terminal, else the best)")
	return cmd
}

// apply overlays the flag values on cfg.
func (g *globalFlags) apply(cfg config.Config) config.Config {
	cfg.LogLevel = g.logLevel
	cfg.OutputDir = g.outputDir
	if g.workers >= 1 {
		cfg.MaxWorkers = g.workers
	}
	cfg.Transcode = g.transcode
	cfg.TagAudio = g.tag
	cfg.Picker = g.picker
	cfg.Progress = g.progress
	if g.timeout > 0 {
		cfg.Timeout = g.timeout
	}
	return cfg
}

func buildApp(logger *logrus.Logger, cfg config.Config) (*app.App, *downloader.Downloader) {
	client := downloader.NewClient(cfg.Timeout)
	printer := downloader.NewPrinter(os.Stdout)
	d := downloader.New(downloader.NewVideoFactory(client, logger), logger, printer)
	term := console.NewTerminal(os.Stdin, os.Stdout)

	a := &app.App{
		Console:     term,
		Batcher:     d,
		Expander:    downloader.NewExpander(client, client.HTTPClient, logger),
		Printer:     printer,
		Log:         logger,
		Config:      cfg,
		Interactive: term.Interactive(),
		Progress:    downloader.NewRenderer(cfg.Progress, os.Stdout),
	}
	if cfg.Picker == config.PickerTUI && a.Interactive {
		a.Choose = console.TUIQualityPicker{}.Chooser()
	}
	return a, d
}

func runMenu(ctx context.Context, logger *logrus.Logger, cfg config.Config) int {
	a, d := buildApp(logger, cfg)
	d.Pause = func() {
		console.PauseReturnToMenu(a.Console, pauseSeconds, nil)
	}
	if err := a.Menu(ctx); err != nil {
		logger.WithError(err).Warn("menu interrompu")
		return app.ExitInterrupted
	}
	return 0
}
