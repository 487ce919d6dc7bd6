package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/KamineHiro/shift-maker/internal/model"
)

// ShiftPeriodRepository 归档期间数据访问接口
type ShiftPeriodRepository interface {
	Create(ctx context.Context, period *model.ShiftPeriod) error
	ListByGroup(ctx context.Context, groupID string) ([]model.ShiftPeriod, error)
	GetByStartDate(ctx context.Context, groupID string, startDate model.Date) (*model.ShiftPeriod, error)
	Delete(ctx context.Context, periodID string) error
}

type shiftPeriodRepo struct {
	db *gorm.DB
}

func NewShiftPeriodRepo(db *gorm.DB) ShiftPeriodRepository {
	return &shiftPeriodRepo{db: db}
}

func (r *shiftPeriodRepo) Create(ctx context.Context, period *model.ShiftPeriod) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *shiftPeriodRepo) ListByGroup(ctx context.Context, groupID string) ([]model.ShiftPeriod, error) {
	var list []model.ShiftPeriod
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("start_date DESC").
		Find(&list).Error
	return list, err
}

func (r *shiftPeriodRepo) GetByStartDate(ctx context.Context, groupID string, startDate model.Date) (*model.ShiftPeriod, error) {
	var period model.ShiftPeriod
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND start_date = ?", groupID, startDate).
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *shiftPeriodRepo) Delete(ctx context.Context, periodID string) error {
	return r.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Delete(&model.ShiftPeriod{}).Error
}
