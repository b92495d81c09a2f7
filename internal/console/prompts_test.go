package console

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lvcoi/ytdl-menu/internal/downloader"
)

func TestAskNumeric(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		want    int
		wantErr bool
	}{
		{"first answer", []string{"3"}, 3, false},
		{"spaces trimmed", []string{"  2 "}, 2, false},
		{"retry after text", []string{"abc", "1"}, 1, false},
		{"retry after out of range", []string{"0", "10", "5"}, 5, false},
		{"three failures", []string{"x", "0", "42"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScript(tt.answers...)
			got, err := AskNumeric(s, 1, 5)
			if tt.wantErr {
				var verr *downloader.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if verr.Attempts != Attempts {
					t.Fatalf("expected %d attempts, got %d", Attempts, verr.Attempts)
				}
				return
			}
			if err != nil {
				t.Fatalf("AskNumeric: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAskNumericMessages(t *testing.T) {
	s := NewScript("abc", "9", "2")
	if _, err := AskNumeric(s, 1, 3); err != nil {
		t.Fatalf("AskNumeric: %v", err)
	}
	out := s.Output()
	if !strings.Contains(out, "Donnez une valeur entre 1 et 3 : \n --> ") {
		t.Fatalf("prompt missing: %q", out)
	}
	if !strings.Contains(out, "FAIL : Vous devez rentrer une valeur numérique.") {
		t.Fatalf("numeric warning missing: %q", out)
	}
	if !strings.Contains(out, "FAIL : Vous devez rentrer un nombre (entre 1 et 3 ).") {
		t.Fatalf("range warning missing: %q", out)
	}
}

func TestAskNumericEOF(t *testing.T) {
	if _, err := AskNumeric(NewScript(), 1, 2); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestAskVideoURL(t *testing.T) {
	s := NewScript("https://example.com/watch?v=dQw4w9WgXcQ", " https://youtu.be/dQw4w9WgXcQ ")
	got, err := AskVideoURL(s)
	if err != nil {
		t.Fatalf("AskVideoURL: %v", err)
	}
	if got != "https://youtu.be/dQw4w9WgXcQ" {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(s.Output(), "le prefixe attendu est : https://www.youtube.com/") {
		t.Fatalf("expected prefix hint, got %q", s.Output())
	}
}

func TestAskVideoURLGivesUp(t *testing.T) {
	s := NewScript("a", "b", "c", "https://youtu.be/dQw4w9WgXcQ")
	_, err := AskVideoURL(s)
	if downloader.ExitCode(err) != 3 {
		t.Fatalf("expected validation exit code, got %v", err)
	}
	var invalid *downloader.InvalidURLError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected last InvalidURLError in chain, got %v", err)
	}
	if s.Remaining() != 1 {
		t.Fatalf("expected the fourth answer untouched, %d left", s.Remaining())
	}
}

func TestAskCollectionURL(t *testing.T) {
	s := NewScript("https://www.youtube.com/watch?v=dQw4w9WgXcQ", "https://www.youtube.com/@SomeCreator")
	got, err := AskCollectionURL(s, downloader.KindChannel)
	if err != nil {
		t.Fatalf("AskCollectionURL: %v", err)
	}
	if got != "https://www.youtube.com/@SomeCreator" {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(s.Output(), "Indiquez l'url de la chaîne Youtube") {
		t.Fatalf("unexpected prompt %q", s.Output())
	}
}

func TestAskSavePathExistingDir(t *testing.T) {
	dir := t.TempDir()
	got, err := AskSavePath(NewScript(dir), "")
	if err != nil {
		t.Fatalf("AskSavePath: %v", err)
	}
	if got != dir {
		t.Fatalf("got %s, want %s", got, dir)
	}
}

func TestAskSavePathFileSelectsParent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := AskSavePath(NewScript(file), "")
	if err != nil {
		t.Fatalf("AskSavePath: %v", err)
	}
	if got != dir {
		t.Fatalf("got %s, want %s", got, dir)
	}
}

func TestAskSavePathEmptyUsesFallback(t *testing.T) {
	dir := t.TempDir()
	got, err := AskSavePath(NewScript(""), dir)
	if err != nil {
		t.Fatalf("AskSavePath: %v", err)
	}
	if got != dir {
		t.Fatalf("got %s, want %s", got, dir)
	}
}

func TestAskSavePathCreatesDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b")
	s := NewScript(target, "oui")
	got, err := AskSavePath(s, "")
	if err != nil {
		t.Fatalf("AskSavePath: %v", err)
	}
	if info, err := os.Stat(got); err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}
	if !strings.Contains(s.Output(), "Le dossier n'existe pas. Voulez-vous le créer ? [y/N] : ") {
		t.Fatalf("creation question missing: %q", s.Output())
	}
}

func TestAskSavePathDeclinedThenExisting(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing")
	got, err := AskSavePath(NewScript(missing, "n", dir), "")
	if err != nil {
		t.Fatalf("AskSavePath: %v", err)
	}
	if got != dir {
		t.Fatalf("got %s, want %s", got, dir)
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Fatal("declined directory was created")
	}
}

func TestAskSavePathCreationFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	// a directory below a regular file can never be created
	target := filepath.Join(blocker, "sub", "dir")
	s := NewScript(target, "y", target, "y", target, "y")
	_, err := AskSavePath(s, "")
	var derr *downloader.DirectoryCreationError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DirectoryCreationError, got %v", err)
	}
	if downloader.ExitCode(err) != 4 {
		t.Fatalf("expected exit code 4, got %d", downloader.ExitCode(err))
	}
}

func TestResolvePathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ResolvePath("~/videos")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if got != filepath.Join(home, "videos") {
		t.Fatalf("got %s", got)
	}
}

func TestReadLinkFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.txt")
	content := strings.Join([]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"",
		"https://example.com/video",
		"https://youtu.be/9bZkp7q19f0  ",
		"not a url",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	urls, rejected, err := ReadLinkFile(path)
	if err != nil {
		t.Fatalf("ReadLinkFile: %v", err)
	}
	if len(urls) != 2 || urls[1] != "https://youtu.be/9bZkp7q19f0" {
		t.Fatalf("unexpected urls %v", urls)
	}
	if len(rejected) != 2 || rejected[0] != 3 || rejected[1] != 5 {
		t.Fatalf("unexpected rejected lines %v", rejected)
	}
}

func TestReadLinkFileErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	invalid := filepath.Join(dir, "invalid.txt")
	os.WriteFile(empty, nil, 0o644)
	os.WriteFile(invalid, []byte("nope\nhttps://example.com\n"), 0o644)

	for _, path := range []string{empty, invalid, filepath.Join(dir, "absent.txt")} {
		if _, _, err := ReadLinkFile(path); err == nil {
			t.Fatalf("expected error for %s", filepath.Base(path))
		}
	}
}

func TestAskLinkFileReprompts(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.txt")
	good := filepath.Join(dir, "good.txt")
	os.WriteFile(bad, []byte("nope\n"), 0o644)
	os.WriteFile(good, []byte("nope\nhttps://www.youtube.com/watch?v=dQw4w9WgXcQ\n"), 0o644)

	s := NewScript(bad, good)
	urls, err := AskLinkFile(s)
	if err != nil {
		t.Fatalf("AskLinkFile: %v", err)
	}
	if len(urls) != 1 {
		t.Fatalf("unexpected urls %v", urls)
	}
	if !strings.Contains(s.Output(), "le lien sur la ligne n° 1 ne sera pas téléchargé") {
		t.Fatalf("line warning missing: %q", s.Output())
	}
}

func TestAskQuality(t *testing.T) {
	streams := []downloader.Stream{
		{Itag: 22, Resolution: "720p", ABR: "192kbps"},
		{Itag: 18, Resolution: "360p", ABR: "96kbps"},
	}
	tests := []struct {
		name      string
		audioOnly bool
		heading   string
		label     string
	}{
		{"video", false, "Choississez la résolution vidéo", "      2 - 360p \n"},
		{"audio", true, "Choississez la qualité audio", "      1 - 192kbps \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScript("2")
			got, err := QualityChooser(s)(tt.audioOnly, streams)
			if err != nil {
				t.Fatalf("AskQuality: %v", err)
			}
			if got != 2 {
				t.Fatalf("got %d", got)
			}
			if !strings.Contains(s.Output(), tt.heading) || !strings.Contains(s.Output(), tt.label) {
				t.Fatalf("unexpected listing %q", s.Output())
			}
		})
	}
}

func TestAskQualityNoStreams(t *testing.T) {
	if _, err := AskQuality(NewScript("1"), false, nil); err == nil {
		t.Fatal("expected error for empty stream list")
	}
}

func TestPauseReturnToMenu(t *testing.T) {
	var slept []time.Duration
	s := NewScript("")
	PauseReturnToMenu(s, 3, func(d time.Duration) { slept = append(slept, d) })
	if len(slept) != 3 {
		t.Fatalf("expected 3 sleeps, got %d", len(slept))
	}
	out := s.Output()
	if !strings.Contains(out, "Appuyer sur ENTREE pour revenir au menu d'accueil") {
		t.Fatalf("ENTER prompt missing: %q", out)
	}
	if !strings.Contains(out, "Le menu d'accueil va revenir dans 3 secondes ...") {
		t.Fatalf("countdown missing: %q", out)
	}
}
