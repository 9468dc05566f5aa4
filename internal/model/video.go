package model

import "time"

// Provider is the originating video platform, derived from the submitted URL.
type Provider string

const (
	ProviderYouTube Provider = "youtube"
	ProviderVimeo   Provider = "vimeo"
	// ProviderGeneric is the fallback for any well-formed URL we do not
	// recognize; ExternalID is then a hash of the canonical URL so dedup
	// still applies.
	ProviderGeneric Provider = "generic"
)

// Video is one catalog entry. IDs are opaque UUID strings assigned at
// ingestion and never reused. The composite unique index makes ingestion
// idempotent per group: the store itself rejects a second record for the
// same external video inside one group.
type Video struct {
	ID        string    `gorm:"primaryKey;size:36"`
	CreatedAt time.Time `gorm:"index"`

	GroupID    string   `gorm:"not null;size:36;uniqueIndex:idx_group_source"`
	Provider   Provider `gorm:"not null;size:16;uniqueIndex:idx_group_source"`
	ExternalID string   `gorm:"not null;size:191;uniqueIndex:idx_group_source"`

	SourceURL    string `gorm:"not null;type:text"`
	Title        string
	ThumbnailURL string
	LikeCount    uint64 `gorm:"default:0"`
	UploaderID   string `gorm:"size:36"`
}

func (Video) TableName() string {
	return "videos"
}
