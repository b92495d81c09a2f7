package downloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	id3v2 "github.com/bogem/id3v2/v2"
	"github.com/sirupsen/logrus/hooks/test"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestConvertToMP3_RenamesWithSameBytes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "sample.mp4")
	writeFile(t, src, "media-bytes")

	log, _ := test.NewNullLogger()
	out, err := ConvertToMP3(log, src)
	if err != nil {
		t.Fatalf("ConvertToMP3: %v", err)
	}
	if out != filepath.Join(dir, "sample.mp3") {
		t.Fatalf("unexpected output %s", out)
	}
	if got := readFile(t, out); got != "media-bytes" {
		t.Fatalf("content changed: %q", got)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected original to be gone, stat err=%v", err)
	}
}

func TestConvertToMP3_SuffixesOnCollision(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "sample.mp3")
	writeFile(t, existing, "old")
	writeFile(t, filepath.Join(dir, "sample.mp4"), "new")

	out, err := ConvertToMP3(nil, filepath.Join(dir, "sample.mp4"))
	if err != nil {
		t.Fatalf("ConvertToMP3: %v", err)
	}
	if out != filepath.Join(dir, "sample_1.mp3") {
		t.Fatalf("expected sample_1.mp3, got %s", out)
	}
	if readFile(t, existing) != "old" {
		t.Fatal("pre-existing mp3 was modified")
	}
	if readFile(t, out) != "new" {
		t.Fatal("new file has wrong content")
	}

	writeFile(t, filepath.Join(dir, "sample.mp4"), "newer")
	out, err = ConvertToMP3(nil, filepath.Join(dir, "sample.mp4"))
	if err != nil {
		t.Fatalf("ConvertToMP3: %v", err)
	}
	if filepath.Base(out) != "sample_2.mp3" {
		t.Fatalf("expected sample_2.mp3, got %s", out)
	}
}

func TestConvertToMP3_RenameFailureRemovesOriginal(t *testing.T) {
	dir := t.TempDir()
	log, hook := test.NewNullLogger()

	_, err := ConvertToMP3(log, filepath.Join(dir, "missing.mp4"))
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected ConversionError, got %v", err)
	}
	if ExitCode(err) != 8 {
		t.Fatalf("expected exit code 8, got %d", ExitCode(err))
	}
	if len(hook.Entries) == 0 {
		t.Fatal("expected the failure to be logged")
	}
}

func TestConvertToMP3_AlreadyMP3(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "song.mp3")
	writeFile(t, src, "x")
	out, err := ConvertToMP3(nil, src)
	if err != nil || out != src {
		t.Fatalf("expected no-op, got %s, %v", out, err)
	}
}

func TestAudioConverter_TranscodeAndTag(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "clip.mp4")
	writeFile(t, src, "video")

	var gotIn, gotOut string
	c := AudioConverter{
		Transcode: true,
		Tag:       true,
		lookPath:  func(string) (string, error) { return "/usr/bin/ffmpeg", nil },
		transcode: func(in, out string) error {
			gotIn, gotOut = in, out
			return os.WriteFile(out, []byte("encoded-audio"), 0o644)
		},
	}
	out, err := c.Convert(src, AudioTags{Title: "Clip", Artist: "Someone"})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if gotIn != src || gotOut != out {
		t.Fatalf("transcode called with %s -> %s, output %s", gotIn, gotOut, out)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("expected source removed after transcode")
	}

	tag, err := id3v2.Open(out, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open tags: %v", err)
	}
	defer tag.Close()
	if tag.Title() != "Clip" || tag.Artist() != "Someone" {
		t.Fatalf("unexpected tags title=%q artist=%q", tag.Title(), tag.Artist())
	}
}

func TestAudioConverter_FallsBackToRename(t *testing.T) {
	cases := []struct {
		name      string
		lookPath  func(string) (string, error)
		transcode func(in, out string) error
	}{
		{
			name:     "ffmpeg missing",
			lookPath: func(string) (string, error) { return "", errors.New("not found") },
		},
		{
			name:      "ffmpeg fails",
			lookPath:  func(string) (string, error) { return "/usr/bin/ffmpeg", nil },
			transcode: func(in, out string) error { return errors.New("exit status 1") },
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "a.mp4")
			writeFile(t, src, "raw")
			log, hook := test.NewNullLogger()

			c := AudioConverter{Transcode: true, Log: log, lookPath: tc.lookPath, transcode: tc.transcode}
			out, err := c.Convert(src, AudioTags{})
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			if readFile(t, out) != "raw" {
				t.Fatal("expected renamed bytes")
			}
			if len(hook.Entries) == 0 {
				t.Fatal("expected a warning")
			}
		})
	}
}
