package downloader

import (
	"context"
	"io"

	"github.com/kkdai/youtube/v2"
)

// Stream describes one downloadable rendition of a video.
type Stream struct {
	Itag            int
	Resolution      string // e.g. "720p", empty for audio-only renditions
	ABR             string // average audio bitrate label, e.g. "128kbps"
	DefaultFilename string
	FileSize        int64
	MimeType        string
}

// Label is what a quality prompt shows for the stream.
func (s Stream) Label(audioOnly bool) string {
	if audioOnly {
		if s.ABR != "" {
			return s.ABR
		}
	} else if s.Resolution != "" {
		return s.Resolution
	}
	return s.MimeType
}

// RawProgressFunc receives the stream size and the number of bytes not yet written.
type RawProgressFunc func(total, remaining int64)

// Video is the capability the orchestrator needs from one resolved URL.
type Video interface {
	Title() (string, error)
	Author() string
	Streams(ctx context.Context) ([]Stream, error)
	StreamByItag(itag int) (Stream, bool)
	OnProgress(fn RawProgressFunc)
	Download(ctx context.Context, stream Stream, dir string) (string, error)
}

// VideoFactory builds a Video for a URL. Swapped out in tests.
type VideoFactory func(ctx context.Context, url string) (Video, error)

// YouTubeClient is the subset of *youtube.Client used here.
type YouTubeClient interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetPlaylistContext(ctx context.Context, url string) (*youtube.Playlist, error)
	GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error)
}

var _ YouTubeClient = (*youtube.Client)(nil)
