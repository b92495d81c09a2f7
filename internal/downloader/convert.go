package downloader

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	id3v2 "github.com/bogem/id3v2/v2"
	"github.com/sirupsen/logrus"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// AudioTags are the ID3 frames written when tagging is enabled.
type AudioTags struct {
	Title  string
	Artist string
}

// AudioConverter turns a downloaded file into its .mp3 counterpart.
type AudioConverter struct {
	Transcode bool
	Tag       bool
	Log       logrus.FieldLogger

	// lookPath and transcode are replaced in tests.
	lookPath  func(string) (string, error)
	transcode func(in, out string) error
}

// ConvertToMP3 renames path to the same name with an .mp3 extension. It
// does not re-encode anything.
func ConvertToMP3(log logrus.FieldLogger, path string) (string, error) {
	return AudioConverter{Log: log}.Convert(path, AudioTags{})
}

// Convert produces the .mp3 for path and removes the original. When the
// .mp3 name is taken the result gets a _1, _2… suffix. If neither
// transcoding nor renaming works the original is deleted anyway and a
// ConversionError is returned.
func (c AudioConverter) Convert(path string, tags AudioTags) (string, error) {
	log := c.logger().WithField("file", filepath.Base(path))
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		return path, nil
	}

	target, err := nextAvailablePath(strings.TrimSuffix(path, filepath.Ext(path)) + ".mp3")
	if err != nil {
		_ = os.Remove(path)
		return "", &ConversionError{Path: path, Err: err}
	}

	transcoded := false
	if c.Transcode {
		if c.ffmpegAvailable() {
			if terr := c.runTranscode(path, target); terr != nil {
				log.WithError(terr).Warn("échec de l'encodage ffmpeg, simple renommage du fichier")
				_ = os.Remove(target)
			} else {
				transcoded = true
				_ = os.Remove(path)
			}
		} else {
			log.Warn("ffmpeg introuvable, simple renommage du fichier")
		}
	}

	if !transcoded {
		if rerr := os.Rename(path, target); rerr != nil {
			log.WithError(rerr).Error("impossible de renommer le fichier en mp3")
			_ = os.Remove(path)
			return "", &ConversionError{Path: path, Err: rerr}
		}
	}

	if c.Tag {
		if transcoded {
			if terr := embedID3Tags(target, tags); terr != nil {
				log.WithError(terr).Warn("impossible d'écrire les tags ID3")
			}
		} else {
			log.Debug("tags ID3 ignorés: le fichier n'a pas été réencodé")
		}
	}
	log.WithField("output", filepath.Base(target)).Debug("fichier audio prêt")
	return target, nil
}

func (c AudioConverter) logger() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}

func (c AudioConverter) ffmpegAvailable() bool {
	look := c.lookPath
	if look == nil {
		look = exec.LookPath
	}
	_, err := look("ffmpeg")
	return err == nil
}

func (c AudioConverter) runTranscode(in, out string) error {
	if c.transcode != nil {
		return c.transcode(in, out)
	}
	return ffmpeg.Input(in).
		Output(out, ffmpeg.KwArgs{"vn": "", "acodec": "libmp3lame", "q:a": "2"}).
		OverWriteOutput().
		Silent(true).
		Run()
}

func embedID3Tags(path string, tags AudioTags) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	if tags.Title != "" {
		tag.SetTitle(tags.Title)
	}
	if tags.Artist != "" {
		tag.SetArtist(tags.Artist)
	}
	return tag.Save()
}

// nextAvailablePath returns path if it is free, otherwise the first free
// "name_N.ext" next to it.
func nextAvailablePath(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	} else if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	name := strings.TrimSuffix(filepath.Base(path), ext)

	for i := 1; i < 10000; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", name, i, ext))
		if _, err := os.Stat(candidate); err != nil {
			if os.IsNotExist(err) {
				return candidate, nil
			}
			return "", err
		}
	}
	return "", fmt.Errorf("aucun nom libre pour %s", path)
}
