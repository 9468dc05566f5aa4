package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"closetube/internal/model"

	gosqlmysql "github.com/go-sql-driver/mysql"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// ErrDuplicateSource reports that an insert hit the (group_id, provider,
// external_id) unique index: the same external video was already ingested
// into the group, either earlier or by a concurrent request. Callers treat
// it as "already exists", not as a failure.
var ErrDuplicateSource = errors.New("video source already ingested in group")

// VideoRepository is the catalog's store adapter. The underlying store is
// MySQL via gorm with a Redis record cache in front of reads; the like
// counter is only ever touched through the store's atomic increment.
type VideoRepository interface {
	Create(ctx context.Context, video *model.Video) error
	FindByID(ctx context.Context, id string) (*model.Video, error)
	FindBySource(ctx context.Context, groupID string, provider model.Provider, externalID string) (*model.Video, error)
	List(ctx context.Context, groupID string, limit, offset int) ([]model.Video, error)
	// Delete reports whether a row was actually removed.
	Delete(ctx context.Context, id string) (bool, error)
	// IncrementLikeCount atomically bumps like_count and reports whether
	// the row exists.
	IncrementLikeCount(ctx context.Context, id string) (bool, error)
	UpdateMetadata(ctx context.Context, id, title, thumbnailURL string) error

	GetVideoCache(ctx context.Context, id string) (*model.Video, error)
	SetVideoCache(ctx context.Context, video *model.Video) error
	InvalidateVideoCache(ctx context.Context, id string) error
}

type videoRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewVideoRepository wires the adapter. rdb may be nil for processes that
// do not need the cache (the enrichment consumer passes nil).
func NewVideoRepository(db *gorm.DB, rdb *redis.Client) VideoRepository {
	return &videoRepository{db: db, rdb: rdb}
}

func (r *videoRepository) Create(ctx context.Context, video *model.Video) error {
	err := r.db.WithContext(ctx).Create(video).Error
	var mysqlErr *gosqlmysql.MySQLError
	// 1062 is "Duplicate entry": the unique index is our create-if-absent
	// primitive, so surface the collision as a typed condition.
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrDuplicateSource
	}
	return err
}

func (r *videoRepository) FindByID(ctx context.Context, id string) (*model.Video, error) {
	video, err := r.GetVideoCache(ctx, id)
	if err == nil && video != nil {
		return video, nil
	}

	var dbVideo model.Video
	err = r.db.WithContext(ctx).First(&dbVideo, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	_ = r.SetVideoCache(ctx, &dbVideo)
	return &dbVideo, nil
}

func (r *videoRepository) FindBySource(ctx context.Context, groupID string, provider model.Provider, externalID string) (*model.Video, error) {
	var video model.Video
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND provider = ? AND external_id = ?", groupID, provider, externalID).
		First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// List returns a window of records ordered newest first; created_at ties
// break on id so paging stays deterministic.
func (r *videoRepository) List(ctx context.Context, groupID string, limit, offset int) ([]model.Video, error) {
	var videos []model.Video
	q := r.db.WithContext(ctx).Model(&model.Video{})
	if groupID != "" {
		q = q.Where("group_id = ?", groupID)
	}
	err := q.Order("created_at DESC, id ASC").Limit(limit).Offset(offset).Find(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&model.Video{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	_ = r.InvalidateVideoCache(ctx, id)
	return result.RowsAffected > 0, nil
}

// IncrementLikeCount issues a single atomic UPDATE; concurrent likes never
// lose updates because the store applies the expression, not a value we
// read earlier.
func (r *videoRepository) IncrementLikeCount(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Video{}).
		Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	// The cached copy now carries a stale counter.
	_ = r.InvalidateVideoCache(ctx, id)
	return result.RowsAffected > 0, nil
}

func (r *videoRepository) UpdateMetadata(ctx context.Context, id, title, thumbnailURL string) error {
	updates := map[string]interface{}{}
	if title != "" {
		updates["title"] = title
	}
	if thumbnailURL != "" {
		updates["thumbnail_url"] = thumbnailURL
	}
	if len(updates) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return err
	}
	return r.InvalidateVideoCache(ctx, id)
}

func (r *videoRepository) keyVideoInfo(id string) string {
	return fmt.Sprintf("video:info:%s", id)
}

func (r *videoRepository) GetVideoCache(ctx context.Context, id string) (*model.Video, error) {
	if r.rdb == nil {
		return nil, nil
	}
	videoJSON, err := r.rdb.Get(ctx, r.keyVideoInfo(id)).Result()
	if err == redis.Nil {
		return nil, nil // cache miss, Redis itself is fine
	} else if err != nil {
		return nil, err
	}
	var video model.Video
	if err := json.Unmarshal([]byte(videoJSON), &video); err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepository) SetVideoCache(ctx context.Context, video *model.Video) error {
	if r.rdb == nil {
		return nil
	}
	videoJSON, err := json.Marshal(video)
	if err != nil {
		return err
	}
	// Jitter the TTL so a burst of entries does not expire in one stampede.
	expiration := time.Minute*5 + time.Duration(rand.Intn(60))*time.Second
	return r.rdb.Set(ctx, r.keyVideoInfo(video.ID), videoJSON, expiration).Err()
}

func (r *videoRepository) InvalidateVideoCache(ctx context.Context, id string) error {
	if r.rdb == nil {
		return nil
	}
	return r.rdb.Del(ctx, r.keyVideoInfo(id)).Err()
}
