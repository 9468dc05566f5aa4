package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"closetube/internal/model"
	"closetube/internal/normalizer"
	"closetube/internal/repository"
	"closetube/pkg/logger"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	// Queue naming follows project.domain.entity.
	QueueEnrich = "closetube.enrich.queue"

	defaultPageSize = 20
	maxPageSize     = 100
)

// EnrichMessage asks the background worker to fetch title/thumbnail for a
// freshly ingested video. Enrichment is best-effort end to end: a lost
// message only leaves the optional fields empty.
type EnrichMessage struct {
	VideoID   string `json:"video_id"`
	SourceURL string `json:"source_url"`
}

// CatalogService owns the video record lifecycle: ingestion (with per-group
// dedup), lookup, listing, deletion and like counting. It is stateless and
// reentrant; all cross-call coordination lives in the store.
type CatalogService interface {
	CreateVideo(ctx context.Context, groupID, rawURL, uploaderID string) (*model.Video, error)
	GetVideo(ctx context.Context, id string) (*model.Video, error)
	ListVideos(ctx context.Context, groupID string, limit, offset int) ([]model.Video, error)
	DeleteVideo(ctx context.Context, id string) (bool, error)
	LikeVideo(ctx context.Context, id string) (bool, error)
	ListGroups(ctx context.Context) ([]model.Group, error)
}

type catalogService struct {
	sf singleflight.Group

	videoRepo    repository.VideoRepository
	groupRepo    repository.GroupRepository
	rabbitMQConn *amqp.Connection
}

// NewCatalogService builds the service with its collaborators injected.
// rabbitMQConn may be nil; ingestion then simply skips enrichment.
func NewCatalogService(videoRepo repository.VideoRepository, groupRepo repository.GroupRepository, rabbitMQConn *amqp.Connection) CatalogService {
	if rabbitMQConn != nil {
		if err := declareEnrichQueue(rabbitMQConn); err != nil {
			// Enrichment is optional, so a broker hiccup at startup must
			// not take the catalog down with it.
			logger.Log.WithError(err).Warn("enrich queue declare failed, metadata enrichment disabled")
			rabbitMQConn = nil
		}
	}
	return &catalogService{
		videoRepo:    videoRepo,
		groupRepo:    groupRepo,
		rabbitMQConn: rabbitMQConn,
	}
}

func declareEnrichQueue(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	_, err = ch.QueueDeclare(
		QueueEnrich,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	return err
}

// CreateVideo ingests a submitted URL into the group's catalog. Submitting
// the same external video twice in one group returns the existing record
// unchanged, so at-least-once client retries are safe.
func (s *catalogService) CreateVideo(ctx context.Context, groupID, rawURL, uploaderID string) (*model.Video, error) {
	exists, err := s.groupRepo.Exists(ctx, groupID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}

	res, err := normalizer.Normalize(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// Fast path: already ingested.
	existing, err := s.videoRepo.FindBySource(ctx, groupID, res.Provider, res.ExternalID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrapStoreErr(err)
	}

	video := &model.Video{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		GroupID:    groupID,
		Provider:   res.Provider,
		ExternalID: res.ExternalID,
		SourceURL:  rawURL,
		LikeCount:  0,
		UploaderID: uploaderID,
	}

	err = s.videoRepo.Create(ctx, video)
	if errors.Is(err, repository.ErrDuplicateSource) {
		// Lost the race against a concurrent identical submission; the
		// unique index made exactly one row win, so hand that one back.
		winner, findErr := s.videoRepo.FindBySource(ctx, groupID, res.Provider, res.ExternalID)
		if findErr != nil {
			return nil, wrapStoreErr(findErr)
		}
		return winner, nil
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	s.publishEnrichMessage(video)
	return video, nil
}

// GetVideo serves reads through the cache; concurrent misses for the same
// id collapse into one store read via singleflight.
func (s *catalogService) GetVideo(ctx context.Context, id string) (*model.Video, error) {
	video, err := s.videoRepo.GetVideoCache(ctx, id)
	if err == nil && video != nil {
		return video, nil
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	key := fmt.Sprintf("get_video_%s", id)
	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.videoRepo.FindByID(ctx, id)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: video %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return result.(*model.Video), nil
}

// ListVideos returns a window ordered newest first. Limits are clamped so a
// caller can neither dump the whole catalog nor request a degenerate page;
// a window past the end is an empty slice, never an error.
func (s *catalogService) ListVideos(ctx context.Context, groupID string, limit, offset int) ([]model.Video, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	videos, err := s.videoRepo.List(ctx, groupID, limit, offset)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if videos == nil {
		videos = []model.Video{}
	}
	return videos, nil
}

// DeleteVideo is idempotent from the caller's perspective: deleting an
// absent record reports false rather than failing. Deletion is terminal; an
// id is never resurrected.
func (s *catalogService) DeleteVideo(ctx context.Context, id string) (bool, error) {
	deleted, err := s.videoRepo.Delete(ctx, id)
	if err != nil {
		return false, wrapStoreErr(err)
	}
	return deleted, nil
}

// LikeVideo bumps the counter through the store's atomic increment, never
// read-modify-write, so concurrent likes cannot lose updates.
func (s *catalogService) LikeVideo(ctx context.Context, id string) (bool, error) {
	liked, err := s.videoRepo.IncrementLikeCount(ctx, id)
	if err != nil {
		return false, wrapStoreErr(err)
	}
	return liked, nil
}

func (s *catalogService) ListGroups(ctx context.Context) ([]model.Group, error) {
	groups, err := s.groupRepo.List(ctx)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if groups == nil {
		groups = []model.Group{}
	}
	return groups, nil
}

// publishEnrichMessage hands the new record to the background enricher. A
// dedicated channel per publish keeps messages independent; any failure is
// logged and swallowed because enrichment must never fail ingestion.
func (s *catalogService) publishEnrichMessage(video *model.Video) {
	if s.rabbitMQConn == nil {
		return
	}
	ch, err := s.rabbitMQConn.Channel()
	if err != nil {
		logger.Log.WithError(err).WithField("video_id", video.ID).Warn("enrich publish skipped: channel open failed")
		return
	}
	defer ch.Close()

	body, err := json.Marshal(EnrichMessage{VideoID: video.ID, SourceURL: video.SourceURL})
	if err != nil {
		logger.Log.WithError(err).WithField("video_id", video.ID).Warn("enrich publish skipped: marshal failed")
		return
	}

	err = ch.Publish(
		"",          // default exchange
		QueueEnrich, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
	if err != nil {
		logger.Log.WithError(err).WithField("video_id", video.ID).Warn("enrich publish failed")
	}
}

func wrapStoreErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
