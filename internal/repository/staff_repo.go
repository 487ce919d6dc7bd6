package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/KamineHiro/shift-maker/internal/model"
)

// StaffRepository 员工数据访问接口
// 所有查询都以 group_id 作为范围条件
type StaffRepository interface {
	Create(ctx context.Context, staff *model.Staff) error
	BatchCreate(ctx context.Context, staff []model.Staff) error
	GetByID(ctx context.Context, groupID, staffID string) (*model.Staff, error)
	ListByGroup(ctx context.Context, groupID string) ([]model.Staff, error)
	Rename(ctx context.Context, groupID, staffID, name string) error
	SetConfirmed(ctx context.Context, groupID, staffID string, confirmed bool) error
	Delete(ctx context.Context, groupID, staffID string) error
}

type staffRepo struct {
	db *gorm.DB
}

func NewStaffRepo(db *gorm.DB) StaffRepository {
	return &staffRepo{db: db}
}

func (r *staffRepo) Create(ctx context.Context, staff *model.Staff) error {
	return r.db.WithContext(ctx).Create(staff).Error
}

func (r *staffRepo) BatchCreate(ctx context.Context, staff []model.Staff) error {
	if len(staff) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&staff).Error
}

func (r *staffRepo) GetByID(ctx context.Context, groupID, staffID string) (*model.Staff, error) {
	var staff model.Staff
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND staff_id = ?", groupID, staffID).
		First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepo) ListByGroup(ctx context.Context, groupID string) ([]model.Staff, error) {
	var list []model.Staff
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at ASC, name ASC").
		Find(&list).Error
	return list, err
}

func (r *staffRepo) Rename(ctx context.Context, groupID, staffID, name string) error {
	return r.update(ctx, groupID, staffID, map[string]interface{}{"name": name})
}

func (r *staffRepo) SetConfirmed(ctx context.Context, groupID, staffID string, confirmed bool) error {
	var confirmedAt *time.Time
	if confirmed {
		now := time.Now()
		confirmedAt = &now
	}
	return r.update(ctx, groupID, staffID, map[string]interface{}{
		"is_shift_confirmed": confirmed,
		"confirmed_at":       confirmedAt,
	})
}

func (r *staffRepo) update(ctx context.Context, groupID, staffID string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Staff{}).
		Where("group_id = ? AND staff_id = ?", groupID, staffID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 删除员工，shifts 通过外键级联删除
func (r *staffRepo) Delete(ctx context.Context, groupID, staffID string) error {
	result := r.db.WithContext(ctx).
		Where("group_id = ? AND staff_id = ?", groupID, staffID).
		Delete(&model.Staff{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
