package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	EnvOutputDir  = "PYDL_OUTPUT_DIR"
	EnvAudioOnly  = "PYDL_AUDIO_ONLY"
	EnvMaxWorkers = "PYDL_MAX_WORKERS"
	EnvLogLevel   = "PYDL_LOG_LEVEL"
	EnvProgress   = "PYDL_PROGRESS"
	EnvPicker     = "PYDL_PICKER"
	EnvTranscode  = "PYDL_TRANSCODE"
	EnvTagAudio   = "PYDL_TAG_AUDIO"
	EnvTimeout    = "PYDL_TIMEOUT"
)

// Picker values.
const (
	PickerPrompt = "prompt"
	PickerTUI    = "tui"
)

// Config holds the defaults taken from the environment. Command-line flags
// override them.
type Config struct {
	// OutputDir is absolute, or empty when the user must be asked.
	OutputDir  string
	AudioOnly  bool
	MaxWorkers int
	LogLevel   string
	Progress   string
	Picker     string
	Transcode  bool
	TagAudio   bool
	Timeout    time.Duration
}

// Default is the configuration used when nothing is set.
func Default() Config {
	return Config{
		MaxWorkers: 1,
		LogLevel:   "INFO",
		Progress:   "bar",
		Picker:     PickerPrompt,
		Timeout:    5 * time.Minute,
	}
}

// Load reads the given .env files (".env" when none), then the environment.
// Variables already set in the environment win over the files. Values that
// do not parse are replaced by their default and reported on log.
func Load(log logrus.FieldLogger, files ...string) Config {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.WithError(err).WithField("file", f).Warn("fichier .env illisible")
		}
	}
	return FromEnv(log)
}

// FromEnv builds a Config from the process environment only.
func FromEnv(log logrus.FieldLogger) Config {
	if log == nil {
		log = logrus.StandardLogger()
	}
	cfg := Default()

	if dir := strings.TrimSpace(os.Getenv(EnvOutputDir)); dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			cfg.OutputDir = abs
		} else {
			log.WithError(err).WithField("env", EnvOutputDir).Warn("dossier de sortie ignoré")
		}
	}

	cfg.AudioOnly = getEnvBool(log, EnvAudioOnly, false)
	cfg.Transcode = getEnvBool(log, EnvTranscode, false)
	cfg.TagAudio = getEnvBool(log, EnvTagAudio, false)

	if n := getEnvInt(log, EnvMaxWorkers, 1); n >= 1 {
		cfg.MaxWorkers = n
	} else {
		log.WithField("env", EnvMaxWorkers).Warn("nombre de workers invalide, 1 utilisé")
	}

	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		cfg.LogLevel = strings.ToUpper(level)
	}

	switch p := strings.ToLower(strings.TrimSpace(os.Getenv(EnvProgress))); p {
	case "":
	case "bar", "plain":
		cfg.Progress = p
	default:
		log.WithField("env", EnvProgress).Warnf("rendu de progression %q inconnu, bar utilisé", p)
	}

	switch p := strings.ToLower(strings.TrimSpace(os.Getenv(EnvPicker))); p {
	case "":
	case PickerPrompt, PickerTUI:
		cfg.Picker = p
	default:
		log.WithField("env", EnvPicker).Warnf("sélecteur %q inconnu, prompt utilisé", p)
	}

	if value := strings.TrimSpace(os.Getenv(EnvTimeout)); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			log.WithField("env", EnvTimeout).Warnf("délai %q invalide, %s utilisé", value, cfg.Timeout)
		} else {
			cfg.Timeout = d
		}
	}
	return cfg
}

func getEnvInt(log logrus.FieldLogger, key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.WithField("env", key).Warnf("valeur %q non numérique ignorée", value)
		return defaultValue
	}
	return n
}

func getEnvBool(log logrus.FieldLogger, key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.WithField("env", key).Warnf("valeur %q non booléenne ignorée", value)
		return defaultValue
	}
	return b
}
