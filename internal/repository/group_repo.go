package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/KamineHiro/shift-maker/internal/model"
)

// GroupRepository 小组数据访问接口
type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	GetByID(ctx context.Context, id string) (*model.Group, error)
	GetByAccessKey(ctx context.Context, key string) (*model.Group, error)
	GetByAdminKey(ctx context.Context, key string) (*model.Group, error)
	UpdateDateRange(ctx context.Context, id string, startDate model.Date, days int) error
}

type groupRepo struct {
	db *gorm.DB
}

func NewGroupRepo(db *gorm.DB) GroupRepository {
	return &groupRepo{db: db}
}

func (r *groupRepo) Create(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepo) GetByID(ctx context.Context, id string) (*model.Group, error) {
	return r.first(ctx, "group_id = ?", id)
}

func (r *groupRepo) GetByAccessKey(ctx context.Context, key string) (*model.Group, error) {
	return r.first(ctx, "access_key = ?", key)
}

func (r *groupRepo) GetByAdminKey(ctx context.Context, key string) (*model.Group, error) {
	return r.first(ctx, "admin_key = ?", key)
}

func (r *groupRepo) first(ctx context.Context, query string, arg interface{}) (*model.Group, error) {
	var group model.Group
	if err := r.db.WithContext(ctx).Where(query, arg).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepo) UpdateDateRange(ctx context.Context, id string, startDate model.Date, days int) error {
	result := r.db.WithContext(ctx).
		Model(&model.Group{}).
		Where("group_id = ?", id).
		Updates(map[string]interface{}{
			"shift_start_date": startDate,
			"shift_days":       days,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
