package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

const youtubeBaseURL = "https://www.youtube.com"

// HTTPDoer executes raw HTTP requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Expander turns playlist and channel URLs into lists of watch URLs.
type Expander struct {
	Client YouTubeClient
	HTTP   HTTPDoer
	Log    logrus.FieldLogger

	// BaseURL is where channel pages are fetched from.
	BaseURL string
}

// NewExpander uses client for playlists and httpClient for channel pages.
func NewExpander(client YouTubeClient, httpClient HTTPDoer, log logrus.FieldLogger) *Expander {
	return &Expander{Client: client, HTTP: httpClient, Log: log, BaseURL: youtubeBaseURL}
}

// Playlist returns the watch URL of every entry of the playlist at rawURL.
func (e *Expander) Playlist(ctx context.Context, rawURL string) ([]string, error) {
	if err := ValidateCollectionURL(rawURL, KindPlaylist); err != nil {
		return nil, err
	}
	urls, err := e.expand(ctx, rawURL)
	if err != nil {
		return nil, &ConnectionError{Target: "playlist", URL: rawURL, Err: err}
	}
	return urls, nil
}

// Channel returns the watch URLs of the channel's uploads playlist.
func (e *Expander) Channel(ctx context.Context, rawURL string) ([]string, error) {
	if err := ValidateCollectionURL(rawURL, KindChannel); err != nil {
		return nil, err
	}
	channelID, err := e.channelID(ctx, rawURL)
	if err != nil {
		return nil, &ConnectionError{Target: "channel", URL: rawURL, Err: err}
	}
	uploads := youtubeBaseURL + "/playlist?list=" + UploadsPlaylistID(channelID)
	urls, err := e.expand(ctx, uploads)
	if err != nil {
		return nil, &ConnectionError{Target: "channel", URL: rawURL, Err: err}
	}
	return urls, nil
}

// UploadsPlaylistID maps a UC… channel id to its UU… uploads playlist.
func UploadsPlaylistID(channelID string) string {
	return "UU" + strings.TrimPrefix(channelID, "UC")
}

func (e *Expander) expand(ctx context.Context, playlistURL string) ([]string, error) {
	playlist, err := e.Client.GetPlaylistContext(ctx, playlistURL)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(playlist.Videos))
	for _, entry := range playlist.Videos {
		if entry == nil || entry.ID == "" {
			continue
		}
		urls = append(urls, watchURLForID(entry.ID))
	}
	e.logger().WithFields(logrus.Fields{
		"playlist": playlist.Title,
		"videos":   len(urls),
	}).Info("playlist chargée")
	return urls, nil
}

var channelIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"externalId"\s*:\s*"(UC[A-Za-z0-9_-]{22})"`),
	regexp.MustCompile(`"channelId"\s*:\s*"(UC[A-Za-z0-9_-]{22})"`),
	regexp.MustCompile(`<meta[^>]+itemprop=["']channelId["'][^>]+content=["'](UC[A-Za-z0-9_-]{22})["']`),
}

func (e *Expander) channelID(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	kind, value, ok := channelRef(parsed)
	if !ok {
		return "", errors.New("lien de chaîne non reconnu")
	}
	if kind == "id" {
		return value, nil
	}

	var path string
	switch kind {
	case "handle":
		path = "/" + value
	case "custom":
		path = "/c/" + value
	default:
		path = "/user/" + value
	}
	base := e.BaseURL
	if base == "" {
		base = youtubeBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
	if err != nil {
		return "", err
	}
	resp, err := e.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("code HTTP inattendu %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return "", err
	}
	for _, re := range channelIDPatterns {
		if m := re.FindSubmatch(body); m != nil {
			return string(m[1]), nil
		}
	}
	return "", errors.New("identifiant de chaîne introuvable dans la page")
}

func (e *Expander) logger() logrus.FieldLogger {
	if e.Log == nil {
		return logrus.StandardLogger()
	}
	return e.Log
}
