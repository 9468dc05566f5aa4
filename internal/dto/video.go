package dto

import (
	"time"

	"closetube/internal/model"
)

// VideoResponse is the API shape of a catalog entry, decoupled from the
// storage model.
type VideoResponse struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	GroupID      string    `json:"group_id"`
	SourceURL    string    `json:"source_url"`
	Provider     string    `json:"provider"`
	ExternalID   string    `json:"external_id"`
	Title        string    `json:"title,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	LikeCount    uint64    `json:"like_count"`
	UploaderID   string    `json:"uploader_id,omitempty"`
}

func ToVideoResponse(video *model.Video) VideoResponse {
	return VideoResponse{
		ID:           video.ID,
		CreatedAt:    video.CreatedAt,
		GroupID:      video.GroupID,
		SourceURL:    video.SourceURL,
		Provider:     string(video.Provider),
		ExternalID:   video.ExternalID,
		Title:        video.Title,
		ThumbnailURL: video.ThumbnailURL,
		LikeCount:    video.LikeCount,
		UploaderID:   video.UploaderID,
	}
}
