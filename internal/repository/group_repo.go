package repository

import (
	"context"
	"errors"

	"closetube/internal/model"

	"gorm.io/gorm"
)

// GroupRepository is the group registry. The catalog only ever asks two
// questions of it: "does this group exist" and "what groups are there".
// Create exists for the seeder.
type GroupRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]model.Group, error)
	Create(ctx context.Context, group *model.Group) error
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Exists(ctx context.Context, id string) (bool, error) {
	var group model.Group
	err := r.db.WithContext(ctx).Select("id").First(&group, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *groupRepository) List(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).Order("name ASC").Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) Create(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}
