package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KamineHiro/shift-maker/internal/model"
)

// ShiftRepository 排班数据访问接口
type ShiftRepository interface {
	Get(ctx context.Context, staffID string, date model.Date) (*model.Shift, error)
	ListByStaff(ctx context.Context, staffID string) ([]model.Shift, error)
	ListByStaffIDs(ctx context.Context, staffIDs []string, from, to model.Date) ([]model.Shift, error)
	Upsert(ctx context.Context, shift *model.Shift) error
	Delete(ctx context.Context, staffID string, date model.Date) error
	DeleteBefore(ctx context.Context, cutoff model.Date) (int64, error)
	DeleteByStaffIDsAndDates(ctx context.Context, staffIDs []string, from, to model.Date) (int64, error)
}

type shiftRepo struct {
	db *gorm.DB
}

func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) Get(ctx context.Context, staffID string, date model.Date) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Where("staff_id = ? AND date = ?", staffID, date).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) ListByStaff(ctx context.Context, staffID string) ([]model.Shift, error) {
	var list []model.Shift
	err := r.db.WithContext(ctx).
		Where("staff_id = ?", staffID).
		Order("date ASC").
		Find(&list).Error
	return list, err
}

func (r *shiftRepo) ListByStaffIDs(ctx context.Context, staffIDs []string, from, to model.Date) ([]model.Shift, error) {
	var list []model.Shift
	if len(staffIDs) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).
		Where("staff_id IN ? AND date BETWEEN ? AND ?", staffIDs, from, to).
		Order("date ASC").
		Find(&list).Error
	return list, err
}

// Upsert 单条 INSERT ... ON CONFLICT (staff_id, date) DO UPDATE，后写入者生效
func (r *shiftRepo) Upsert(ctx context.Context, shift *model.Shift) error {
	shift.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "staff_id"}, {Name: "date"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"start_time", "end_time", "is_working", "is_all_day", "note", "updated_at",
				}),
			},
			clause.Returning{},
		).
		Create(shift).Error
}

// Delete 记录不存在时视为成功
func (r *shiftRepo) Delete(ctx context.Context, staffID string, date model.Date) error {
	return r.db.WithContext(ctx).
		Where("staff_id = ? AND date = ?", staffID, date).
		Delete(&model.Shift{}).Error
}

// DeleteBefore 删除 date < cutoff 的全部排班，返回删除行数
func (r *shiftRepo) DeleteBefore(ctx context.Context, cutoff model.Date) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("date < ?", cutoff).
		Delete(&model.Shift{})
	return result.RowsAffected, result.Error
}

func (r *shiftRepo) DeleteByStaffIDsAndDates(ctx context.Context, staffIDs []string, from, to model.Date) (int64, error) {
	if len(staffIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("staff_id IN ? AND date BETWEEN ? AND ?", staffIDs, from, to).
		Delete(&model.Shift{})
	return result.RowsAffected, result.Error
}
