// Package normalizer turns an arbitrary submitted video URL into a
// canonical (provider, external ID) pair. The pair is what the catalog
// dedups on, so normalization has to be deterministic and side-effect free.
package normalizer

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"

	"closetube/internal/model"
)

// ErrInvalidURL is returned when the input is not a syntactically valid
// http(s) URL. It is the only hard failure here: URLs we simply do not
// recognize degrade to the generic provider instead, so ingestion stays
// permissive.
var ErrInvalidURL = errors.New("invalid video url")

// Result is the canonical identity of a submitted URL.
type Result struct {
	Provider   model.Provider
	ExternalID string
}

// Normalize parses rawURL and extracts the provider's canonical video
// identifier. Unrecognized but well-formed URLs fall back to
// model.ProviderGeneric with a stable hash of the canonicalized URL as the
// external ID.
func Normalize(rawURL string) (Result, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Result{}, ErrInvalidURL
	}

	host := strings.ToLower(u.Hostname())

	if id, ok := youtubeID(host, u); ok {
		return Result{Provider: model.ProviderYouTube, ExternalID: id}, nil
	}
	if id, ok := vimeoID(host, u); ok {
		return Result{Provider: model.ProviderVimeo, ExternalID: id}, nil
	}

	return Result{Provider: model.ProviderGeneric, ExternalID: genericID(u)}, nil
}

// youtubeID handles the watch-page, short-link, shorts and embed shapes.
func youtubeID(host string, u *url.URL) (string, bool) {
	switch host {
	case "youtu.be":
		if id := firstSegment(u.Path); id != "" {
			return id, true
		}
	case "youtube.com", "www.youtube.com", "m.youtube.com":
		if strings.HasPrefix(u.Path, "/watch") {
			if id := u.Query().Get("v"); id != "" {
				return id, true
			}
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				if id := firstSegment(strings.TrimPrefix(u.Path, prefix)); id != "" {
					return id, true
				}
			}
		}
	}
	return "", false
}

// vimeoID matches vimeo.com/<digits> and player.vimeo.com/video/<digits>.
func vimeoID(host string, u *url.URL) (string, bool) {
	var candidate string
	switch host {
	case "vimeo.com", "www.vimeo.com":
		candidate = firstSegment(u.Path)
	case "player.vimeo.com":
		if strings.HasPrefix(u.Path, "/video/") {
			candidate = firstSegment(strings.TrimPrefix(u.Path, "/video/"))
		}
	}
	if candidate == "" || !isDigits(candidate) {
		return "", false
	}
	return candidate, true
}

// genericID derives a stable identifier from the canonical form of the URL
// (lowercased scheme and host, fragment dropped) so the same link always
// dedups to the same record.
func genericID(u *url.URL) string {
	canonical := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + u.Path
	if u.RawQuery != "" {
		canonical += "?" + u.RawQuery
	}
	sum := sha1.Sum([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

func firstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
