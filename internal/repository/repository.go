package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Group       GroupRepository
	Staff       StaffRepository
	Shift       ShiftRepository
	ShiftPeriod ShiftPeriodRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Group:       NewGroupRepo(db),
		Staff:       NewStaffRepo(db),
		Shift:       NewShiftRepo(db),
		ShiftPeriod: NewShiftPeriodRepo(db),
		db:          db,
	}
}

// DB 底层连接（健康检查使用）
func (r *Repository) DB() *gorm.DB {
	return r.db
}
