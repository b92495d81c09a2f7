package downloader

import (
	"errors"
	"fmt"
	"strings"
)

// Category groups failures by what went wrong, independent of the concrete error type.
type Category string

const (
	CategoryUnknown      Category = "unknown"
	CategoryInvalidURL   Category = "invalid_url"
	CategoryValidation   Category = "validation"
	CategoryDirectory    Category = "directory"
	CategoryConnection   Category = "connection"
	CategoryStreamAccess Category = "stream_access"
	CategoryDownload     Category = "download"
	CategoryPostProcess  Category = "post_process"
)

// categorized is implemented by every error of the taxonomy.
type categorized interface {
	Category() Category
}

// CategorizedError attaches a category to an arbitrary error.
type CategorizedError struct {
	Category Category
	Err      error
}

func (e CategorizedError) Error() string {
	if e.Err == nil {
		return string(e.Category)
	}
	return e.Err.Error()
}

func (e CategorizedError) Unwrap() error {
	return e.Err
}

func wrapCategory(category Category, err error) error {
	if err == nil {
		return nil
	}
	return CategorizedError{Category: category, Err: err}
}

// CategoryOf returns the category of the outermost categorized error in the chain.
func CategoryOf(err error) Category {
	if err == nil {
		return ""
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch c := e.(type) {
		case CategorizedError:
			return c.Category
		case categorized:
			return c.Category()
		}
	}
	return CategoryUnknown
}

// ExitCode maps an error to a process exit status. It doubles as the number
// shown in "[ERREUR n]" messages.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch CategoryOf(err) {
	case CategoryInvalidURL:
		return 2
	case CategoryValidation:
		return 3
	case CategoryDirectory:
		return 4
	case CategoryConnection:
		return 5
	case CategoryStreamAccess:
		return 6
	case CategoryDownload:
		return 7
	case CategoryPostProcess:
		return 8
	default:
		return 1
	}
}

// InvalidURLError reports a string that is not an acceptable YouTube URL.
type InvalidURLError struct {
	URL    string
	Reason string
}

func (e *InvalidURLError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("URL invalide: %q", e.URL)
	}
	return fmt.Sprintf("URL invalide (%s): %q", e.Reason, e.URL)
}

func (e *InvalidURLError) Category() Category { return CategoryInvalidURL }

// ValidationError is returned when interactive input keeps failing validation.
type ValidationError struct {
	Field    string
	Attempts int
	Err      error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("trop de saisies invalides pour %s (%d tentatives)", e.Field, e.Attempts)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error      { return e.Err }
func (e *ValidationError) Category() Category { return CategoryValidation }

// DirectoryCreationError is returned when the destination directory cannot be made.
type DirectoryCreationError struct {
	Path string
	Err  error
}

func (e *DirectoryCreationError) Error() string {
	return fmt.Sprintf("impossible de créer le dossier %s: %v", e.Path, e.Err)
}

func (e *DirectoryCreationError) Unwrap() error      { return e.Err }
func (e *DirectoryCreationError) Category() Category { return CategoryDirectory }

// ConnectionError is returned when a video, playlist or channel cannot be reached.
type ConnectionError struct {
	Target string // "video", "playlist" or "channel"
	URL    string
	Err    error
}

func (e *ConnectionError) Error() string {
	var label string
	switch e.Target {
	case "playlist":
		label = "Connexion à la Playlist impossible"
	case "channel":
		label = "Connexion à la chaîne Youtube impossible"
	default:
		label = "Connexion à la vidéo impossible"
	}
	if e.Err == nil {
		return fmt.Sprintf("%s (%s)", label, e.URL)
	}
	return fmt.Sprintf("%s (%s): %v", label, e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error      { return e.Err }
func (e *ConnectionError) Category() Category { return CategoryConnection }

// StreamAccessError is returned when the candidate streams of a video cannot be listed.
type StreamAccessError struct {
	URL        string
	StatusCode int // 0 when the failure was not an HTTP status
	Err        error
}

func (e *StreamAccessError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("impossible d'accéder aux flux de %s (code HTTP %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("impossible d'accéder aux flux de %s: %v", e.URL, e.Err)
}

func (e *StreamAccessError) Unwrap() error      { return e.Err }
func (e *StreamAccessError) Category() Category { return CategoryStreamAccess }

// DownloadError is returned when a transfer still fails after every retry.
type DownloadError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("le téléchargement de %s a échoué après %d tentatives: %v", e.URL, e.Attempts, e.Err)
}

func (e *DownloadError) Unwrap() error      { return e.Err }
func (e *DownloadError) Category() Category { return CategoryDownload }

// ConversionError is returned when the audio post-processing step cannot complete.
type ConversionError struct {
	Path string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion audio de %s impossible: %v", e.Path, e.Err)
}

func (e *ConversionError) Unwrap() error      { return e.Err }
func (e *ConversionError) Category() Category { return CategoryPostProcess }

// FailureList renders failed URLs one per line for the end-of-batch report.
func FailureList(urls []string) string {
	var b strings.Builder
	for i, u := range urls {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, u)
	}
	return b.String()
}
