package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kkdai/youtube/v2"
	"github.com/sirupsen/logrus"
)

// chunkSize keeps progress responsive without issuing thousands of range requests.
const chunkSize int64 = 1024 * 1024

// NewClient returns a kkdai client wired to the shared retrying transport.
// The client is shared by concurrent downloads and is never modified afterwards.
func NewClient(timeout time.Duration) *youtube.Client {
	return &youtube.Client{HTTPClient: newHTTPClient(timeout), ChunkSize: chunkSize}
}

// NewVideoFactory returns a factory building lazily loaded videos on client.
// Construction only validates the URL; metadata is fetched by Streams.
func NewVideoFactory(client YouTubeClient, log logrus.FieldLogger) VideoFactory {
	return func(ctx context.Context, url string) (Video, error) {
		id, err := VideoID(url)
		if err != nil {
			return nil, err
		}
		return &youtubeVideo{client: client, url: url, id: id, log: log}, nil
	}
}

// youtubeVideo implements Video on top of kkdai/youtube.
type youtubeVideo struct {
	client YouTubeClient
	url    string
	id     string
	log    logrus.FieldLogger

	mu       sync.Mutex
	video    *youtube.Video
	formats  map[int]*youtube.Format
	streams  []Stream
	progress RawProgressFunc
}

func (v *youtubeVideo) load(ctx context.Context) (*youtube.Video, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.video != nil {
		return v.video, nil
	}
	video, err := v.client.GetVideoContext(ctx, watchURLForID(v.id))
	if err != nil {
		return nil, streamAccessError(v.url, err)
	}
	v.video = video
	return video, nil
}

func streamAccessError(url string, err error) error {
	var status youtube.ErrUnexpectedStatusCode
	if errors.As(err, &status) {
		return &StreamAccessError{URL: url, StatusCode: int(status), Err: err}
	}
	return &StreamAccessError{URL: url, Err: err}
}

func (v *youtubeVideo) Title() (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.video == nil {
		return "", fmt.Errorf("métadonnées de %s non chargées", v.url)
	}
	if strings.TrimSpace(v.video.Title) == "" {
		return "", fmt.Errorf("titre absent pour %s", v.url)
	}
	return v.video.Title, nil
}

func (v *youtubeVideo) Author() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.video == nil {
		return ""
	}
	return v.video.Author
}

// Streams lists the progressive MP4 renditions, highest resolution first.
func (v *youtubeVideo) Streams(ctx context.Context) ([]Stream, error) {
	video, err := v.load(ctx)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.streams != nil {
		return v.streams, nil
	}

	candidates := make([]*youtube.Format, 0, len(video.Formats))
	for i := range video.Formats {
		f := &video.Formats[i]
		if isProgressiveMP4(f) {
			candidates = append(candidates, f)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return formatHeight(candidates[i]) > formatHeight(candidates[j])
	})

	filename := sanitize(video.Title) + ".mp4"
	v.formats = make(map[int]*youtube.Format, len(candidates))
	v.streams = make([]Stream, 0, len(candidates))
	for _, f := range candidates {
		v.formats[f.ItagNo] = f
		v.streams = append(v.streams, Stream{
			Itag:            f.ItagNo,
			Resolution:      f.QualityLabel,
			ABR:             abrLabel(f),
			DefaultFilename: filename,
			FileSize:        f.ContentLength,
			MimeType:        f.MimeType,
		})
	}
	return v.streams, nil
}

func (v *youtubeVideo) StreamByItag(itag int) (Stream, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, s := range v.streams {
		if s.Itag == itag {
			return s, true
		}
	}
	return Stream{}, false
}

func (v *youtubeVideo) OnProgress(fn RawProgressFunc) {
	v.mu.Lock()
	v.progress = fn
	v.mu.Unlock()
}

// Download writes stream into dir under its default filename, overwriting
// any previous file. A partial file is removed on failure.
func (v *youtubeVideo) Download(ctx context.Context, stream Stream, dir string) (string, error) {
	v.mu.Lock()
	video, format, report := v.video, v.formats[stream.Itag], v.progress
	v.mu.Unlock()
	if video == nil || format == nil {
		return "", fmt.Errorf("flux itag %d inconnu pour %s", stream.Itag, v.url)
	}

	path := filepath.Join(dir, stream.DefaultFilename)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("création de %s: %w", path, err)
	}

	rc, size, err := v.client.GetStreamContext(ctx, video, format)
	if err != nil {
		file.Close()
		os.Remove(path)
		return "", fmt.Errorf("ouverture du flux: %w", err)
	}
	defer rc.Close()
	if size <= 0 {
		size = format.ContentLength
	}

	var writer io.Writer = file
	if report != nil {
		writer = io.MultiWriter(file, newProgressWriter(size, report))
	}
	_, err = copyWithContext(ctx, writer, rc)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("écriture de %s: %w", path, err)
	}
	return path, nil
}

func isProgressiveMP4(f *youtube.Format) bool {
	if !strings.HasPrefix(f.MimeType, "video/mp4") {
		return false
	}
	return f.AudioChannels > 0 && (f.Height > 0 || f.QualityLabel != "")
}

var qualityLabelRx = regexp.MustCompile(`^(\d+)p`)

func formatHeight(f *youtube.Format) int {
	if f.Height > 0 {
		return f.Height
	}
	if m := qualityLabelRx.FindStringSubmatch(f.QualityLabel); m != nil {
		h, _ := strconv.Atoi(m[1])
		return h
	}
	return 0
}

func abrLabel(f *youtube.Format) string {
	rate := f.AverageBitrate
	if rate <= 0 {
		rate = f.Bitrate
	}
	if rate <= 0 {
		return ""
	}
	return fmt.Sprintf("%dkbps", rate/1000)
}

var invalidFilenameRx = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)

func sanitize(name string) string {
	clean := strings.TrimSpace(invalidFilenameRx.ReplaceAllString(name, "-"))
	if clean == "" {
		return "video"
	}
	return clean
}
