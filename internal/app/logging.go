package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogLevels lists the names accepted by --log-level.
var LogLevels = []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}

// ParseLevel maps a level name to logrus. CRITICAL is logrus' fatal level.
func ParseLevel(name string) (logrus.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return logrus.DebugLevel, nil
	case "INFO":
		return logrus.InfoLevel, nil
	case "WARNING", "WARN":
		return logrus.WarnLevel, nil
	case "ERROR":
		return logrus.ErrorLevel, nil
	case "CRITICAL", "FATAL":
		return logrus.FatalLevel, nil
	}
	return logrus.InfoLevel, fmt.Errorf("niveau de log inconnu %q (attendu: %s)", name, strings.Join(LogLevels, ", "))
}

// NewLogger returns a text logger writing to out, stderr when nil.
func NewLogger(out io.Writer, level string) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	SetLevel(logger, level)
	return logger
}

// SetLevel applies level to logger. An unknown name selects INFO and logs a warning.
func SetLevel(logger *logrus.Logger, level string) {
	lvl, err := ParseLevel(level)
	logger.SetLevel(lvl)
	if err != nil {
		logger.WithError(err).Warn("niveau INFO utilisé")
	}
}
