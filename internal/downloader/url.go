package downloader

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	videoIDRegex    = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	playlistIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{13,42}$`)
	channelIDRegex  = regexp.MustCompile(`^UC[A-Za-z0-9_-]{22}$`)
	channelNameRx   = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,100}$`)
)

// CollectionKind selects which shape ValidateCollectionURL accepts.
type CollectionKind string

const (
	KindPlaylist CollectionKind = "playlist"
	KindChannel  CollectionKind = "channel"
)

var allowedQueryKeys = map[string]bool{"v": true, "list": true, "t": true}

// ValidateURL checks that raw is a YouTube video URL with a well-formed id.
func ValidateURL(raw string) error {
	_, err := VideoID(raw)
	return err
}

// VideoID validates raw like ValidateURL and returns the 11-character id.
func VideoID(raw string) (string, error) {
	parsed, host, err := parseYouTubeURL(raw)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	for key := range query {
		if !allowedQueryKeys[key] {
			return "", &InvalidURLError{URL: raw, Reason: "paramètre non autorisé " + key}
		}
	}

	segments := pathSegments(parsed.Path)
	var id string
	if host == "youtu.be" {
		if len(segments) > 0 {
			id = segments[0]
		}
	} else if len(segments) >= 2 && segments[0] == "shorts" {
		id = segments[1]
	} else {
		id = query.Get("v")
	}

	if id == "" {
		if len(segments) > 0 && (segments[0] == "playlist" || segments[0] == "channel") {
			return "", &InvalidURLError{URL: raw, Reason: "lien /" + segments[0] + " sans identifiant de vidéo"}
		}
		return "", &InvalidURLError{URL: raw, Reason: "identifiant de vidéo absent"}
	}
	if !videoIDRegex.MatchString(id) {
		return "", &InvalidURLError{URL: raw, Reason: "identifiant de vidéo mal formé"}
	}
	return id, nil
}

// ValidateCollectionURL checks a playlist or channel URL. Playlists need a
// list parameter; channels are accepted as /channel/UC…, /@handle, /c/name
// or /user/name, optionally followed by a tab such as /videos.
func ValidateCollectionURL(raw string, kind CollectionKind) error {
	parsed, host, err := parseYouTubeURL(raw)
	if err != nil {
		return err
	}
	if host == "youtu.be" {
		return &InvalidURLError{URL: raw, Reason: "youtu.be ne désigne que des vidéos"}
	}
	switch kind {
	case KindPlaylist:
		list := parsed.Query().Get("list")
		if list == "" {
			return &InvalidURLError{URL: raw, Reason: "paramètre list absent"}
		}
		if !playlistIDRegex.MatchString(list) {
			return &InvalidURLError{URL: raw, Reason: "identifiant de playlist mal formé"}
		}
		return nil
	case KindChannel:
		if _, _, ok := channelRef(parsed); !ok {
			return &InvalidURLError{URL: raw, Reason: "lien de chaîne non reconnu"}
		}
		return nil
	default:
		return &InvalidURLError{URL: raw, Reason: "type de collection inconnu"}
	}
}

// parseYouTubeURL applies the checks shared by every URL kind and returns the
// lowercased host.
func parseYouTubeURL(raw string) (*url.URL, string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, "", &InvalidURLError{URL: raw, Reason: "URL vide"}
	}
	if strings.ContainsAny(trimmed, " \t\n\r") {
		return nil, "", &InvalidURLError{URL: raw, Reason: "espace dans l'URL"}
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, "", &InvalidURLError{URL: raw, Reason: err.Error()}
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return nil, "", &InvalidURLError{URL: raw, Reason: "schéma non supporté"}
	}
	if parsed.User != nil {
		return nil, "", &InvalidURLError{URL: raw, Reason: "identifiants dans l'URL"}
	}
	host := strings.ToLower(parsed.Host)
	switch host {
	case "youtube.com", "www.youtube.com", "youtu.be":
	default:
		return nil, "", &InvalidURLError{URL: raw, Reason: "hôte non supporté " + parsed.Host}
	}
	return parsed, host, nil
}

// channelRef returns how a channel URL names its channel: ("id", "UC…"),
// ("handle", "@name"), ("custom", name) or ("user", name).
func channelRef(parsed *url.URL) (kind, value string, ok bool) {
	segments := pathSegments(parsed.Path)
	if len(segments) == 0 {
		return "", "", false
	}
	switch {
	case segments[0] == "channel" && len(segments) >= 2 && channelIDRegex.MatchString(segments[1]):
		return "id", segments[1], true
	case strings.HasPrefix(segments[0], "@") && channelNameRx.MatchString(segments[0][1:]):
		return "handle", segments[0], true
	case (segments[0] == "c" || segments[0] == "user") && len(segments) >= 2 && channelNameRx.MatchString(segments[1]):
		if segments[0] == "c" {
			return "custom", segments[1], true
		}
		return "user", segments[1], true
	}
	return "", "", false
}

func pathSegments(p string) []string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func watchURLForID(id string) string {
	if id == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + id
}
