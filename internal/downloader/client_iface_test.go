package downloader

import (
	"context"
	"io"
	"strings"

	"github.com/kkdai/youtube/v2"
)

// mockYouTubeClient is a test double that satisfies YouTubeClient.
type mockYouTubeClient struct {
	getVideoFn    func(ctx context.Context, url string) (*youtube.Video, error)
	getPlaylistFn func(ctx context.Context, url string) (*youtube.Playlist, error)
	getStreamFn   func(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error)
}

func (m *mockYouTubeClient) GetVideoContext(ctx context.Context, url string) (*youtube.Video, error) {
	if m.getVideoFn != nil {
		return m.getVideoFn(ctx, url)
	}
	return &youtube.Video{}, nil
}

func (m *mockYouTubeClient) GetPlaylistContext(ctx context.Context, url string) (*youtube.Playlist, error) {
	if m.getPlaylistFn != nil {
		return m.getPlaylistFn(ctx, url)
	}
	return &youtube.Playlist{}, nil
}

func (m *mockYouTubeClient) GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error) {
	if m.getStreamFn != nil {
		return m.getStreamFn(ctx, video, format)
	}
	return io.NopCloser(strings.NewReader("")), 0, nil
}

var _ YouTubeClient = (*mockYouTubeClient)(nil)
