package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/lvcoi/ytdl-menu/internal/console"
	"github.com/lvcoi/ytdl-menu/internal/downloader"
)

// MenuOption is a line of the home menu.
type MenuOption int

const (
	OptionVideo MenuOption = iota + 1
	OptionVideos
	OptionPlaylist
	OptionChannel
	OptionVideoAudio
	OptionVideosAudio
	OptionPlaylistAudio
	OptionChannelAudio
	OptionQuit
)

const (
	programTitle = "Program Youtube Downloader"
	menuQuestion = "Que voulez-vous télécharger sur Youtube ?"
)

var menuLabels = map[MenuOption]string{
	OptionVideo:         "une vidéo (mp4)",
	OptionVideos:        "des vidéos",
	OptionPlaylist:      "une playlist vidéo",
	OptionChannel:       "des vidéos d'une chaîne Youtube",
	OptionVideoAudio:    "la piste audio d'une vidéo (mp3)",
	OptionVideosAudio:   "les pistes audios de plusieurs vidéos",
	OptionPlaylistAudio: "les pistes audios d'une playlist",
	OptionChannelAudio:  "les pistes audios d'une chaîne",
	OptionQuit:          "Quitter le programme",
}

func (o MenuOption) String() string {
	if label, ok := menuLabels[o]; ok {
		return label
	}
	return fmt.Sprintf("option %d", int(o))
}

// AudioOnly reports whether the option downloads audio tracks.
func (o MenuOption) AudioOnly() bool {
	return o >= OptionVideoAudio && o <= OptionChannelAudio
}

// source strips the audio flag: every audio option mirrors a video one.
func (o MenuOption) source() MenuOption {
	if o.AudioOnly() {
		return o - (OptionVideoAudio - OptionVideo)
	}
	return o
}

// ShowMenu prints the home menu and returns the number of choices.
func (a *App) ShowMenu() int {
	c := a.Console
	c.Print()
	c.Print()
	console.Separator(c)
	c.Printf("*            %-47s*\n", programTitle)
	console.Separator(c)
	c.Print(menuQuestion)
	c.Print()
	for o := OptionVideo; o <= OptionQuit; o++ {
		c.Printf("    %d - %s\n", int(o), o)
	}
	c.Print()
	console.Separator(c)
	return int(OptionQuit)
}

// Menu runs the home menu until the user quits, input ends or ctx is done.
// A failing choice is reported and the menu comes back.
func (a *App) Menu(ctx context.Context) error {
	log := a.logger()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		max := a.ShowMenu()
		n, err := console.AskNumeric(a.Console, 1, max)
		if err != nil {
			if errors.Is(err, io.EOF) {
				a.quit()
				return nil
			}
			a.printer().Error(err)
			continue
		}
		option := MenuOption(n)
		if option == OptionQuit {
			a.quit()
			return nil
		}

		log.WithField("option", option.String()).Debug("choix du menu")
		if err := a.Handle(ctx, option); err != nil {
			switch {
			case errors.Is(err, io.EOF):
				a.quit()
				return nil
			case ctx.Err() != nil:
				return ctx.Err()
			}
			log.WithError(err).WithField("option", option.String()).Error("échec du choix")
			a.printer().Error(err)
		}
	}
}

// Handle runs one menu option other than quit.
func (a *App) Handle(ctx context.Context, option MenuOption) error {
	urls, err := a.collect(ctx, option.source())
	if err != nil {
		return err
	}
	dir, err := console.AskSavePath(a.Console, a.Config.OutputDir)
	if err != nil {
		return err
	}
	_, err = a.Batcher.DownloadMultiple(ctx, urls, a.options(dir, option.AudioOnly()))
	return err
}

func (a *App) collect(ctx context.Context, source MenuOption) ([]string, error) {
	switch source {
	case OptionVideo:
		url, err := console.AskVideoURL(a.Console)
		if err != nil {
			return nil, err
		}
		return []string{url}, nil
	case OptionVideos:
		return console.AskLinkFile(a.Console)
	case OptionPlaylist:
		url, err := console.AskCollectionURL(a.Console, downloader.KindPlaylist)
		if err != nil {
			return nil, err
		}
		return a.Expander.Playlist(ctx, url)
	case OptionChannel:
		url, err := console.AskCollectionURL(a.Console, downloader.KindChannel)
		if err != nil {
			return nil, err
		}
		return a.Expander.Channel(ctx, url)
	}
	return nil, fmt.Errorf("choix de menu inconnu: %d", int(source))
}

func (a *App) quit() {
	c := a.Console
	c.Print()
	c.Print()
	console.Separator(c)
	c.Printf("*%59s*\n", "")
	c.Printf("*                    %-39s*\n", "Fin du programme")
	c.Printf("*%59s*\n", "")
	console.Separator(c)
}
