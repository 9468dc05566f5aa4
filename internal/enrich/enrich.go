// Package enrich fetches best-effort display metadata (title, thumbnail)
// for an ingested video via the providers' public oEmbed endpoints. Every
// failure here is soft: callers log it and leave the optional fields empty.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Metadata is what enrichment could recover; either field may be empty.
type Metadata struct {
	Title        string
	ThumbnailURL string
}

type oembedResponse struct {
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Enricher resolves metadata over HTTP with a short, hard timeout.
type Enricher struct {
	client *http.Client
}

func NewEnricher(timeout time.Duration) *Enricher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Enricher{client: &http.Client{Timeout: timeout}}
}

// Fetch asks the matching oEmbed endpoint about sourceURL. Both YouTube and
// Vimeo answer for any URL shape they recognize, so we just try them in
// order and take the first answer.
func (e *Enricher) Fetch(ctx context.Context, sourceURL string) (Metadata, error) {
	endpoints := []string{
		"https://www.youtube.com/oembed?format=json&url=" + url.QueryEscape(sourceURL),
		"https://vimeo.com/api/oembed.json?url=" + url.QueryEscape(sourceURL),
	}

	var lastErr error
	for _, endpoint := range endpoints {
		meta, err := e.fetchOne(ctx, endpoint)
		if err == nil {
			return meta, nil
		}
		lastErr = err
	}
	return Metadata{}, lastErr
}

func (e *Enricher) fetchOne(ctx context.Context, endpoint string) (Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Metadata{}, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return Metadata{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Metadata{}, fmt.Errorf("oembed status %d", resp.StatusCode)
	}

	var body oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Metadata{}, err
	}
	return Metadata{Title: body.Title, ThumbnailURL: body.ThumbnailURL}, nil
}
