package downloader

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestExitCodeByCategory(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain", err: errors.New("x"), want: 1},
		{name: "invalid url", err: &InvalidURLError{URL: "u"}, want: 2},
		{name: "validation", err: &ValidationError{Field: "choix", Attempts: 3}, want: 3},
		{name: "directory", err: &DirectoryCreationError{Path: "/x", Err: os.ErrPermission}, want: 4},
		{name: "connection", err: &ConnectionError{Target: "playlist", URL: "u"}, want: 5},
		{name: "stream access", err: &StreamAccessError{URL: "u", StatusCode: 404, Err: errors.New("nf")}, want: 6},
		{name: "download", err: &DownloadError{URL: "u", Attempts: 3, Err: errors.New("eof")}, want: 7},
		{name: "conversion", err: &ConversionError{Path: "a.mp4", Err: errors.New("busy")}, want: 8},
		{name: "wrapped", err: fmt.Errorf("menu: %w", &DownloadError{URL: "u"}), want: 7},
		{name: "categorized", err: wrapCategory(CategoryConnection, errors.New("dial")), want: 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.want {
				t.Fatalf("ExitCode = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestErrorsUnwrapCause(t *testing.T) {
	err := &DirectoryCreationError{Path: "/root/x", Err: os.ErrPermission}
	if !errors.Is(err, os.ErrPermission) {
		t.Fatal("expected cause to be reachable with errors.Is")
	}
	var target *DirectoryCreationError
	if !errors.As(fmt.Errorf("wrap: %w", err), &target) || target.Path != "/root/x" {
		t.Fatal("expected errors.As to find DirectoryCreationError")
	}
}

func TestConnectionErrorMessage(t *testing.T) {
	cases := map[string]string{
		"playlist": "Connexion à la Playlist impossible",
		"channel":  "Connexion à la chaîne Youtube impossible",
		"video":    "Connexion à la vidéo impossible",
	}
	for target, want := range cases {
		msg := (&ConnectionError{Target: target, URL: "u"}).Error()
		if !strings.HasPrefix(msg, want) {
			t.Fatalf("target %s: got %q", target, msg)
		}
	}
}

func TestStreamAccessErrorKeepsStatus(t *testing.T) {
	err := &StreamAccessError{URL: "u", StatusCode: 404, Err: errors.New("not found")}
	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status in message, got %q", err.Error())
	}
}

func TestFailureList(t *testing.T) {
	got := FailureList([]string{"a", "b"})
	if got != "  1. a\n  2. b\n" {
		t.Fatalf("unexpected list %q", got)
	}
}
