package model

import "time"

// 员工角色
const (
	StaffRoleStaff   = "staff"
	StaffRoleManager = "manager"
)

// Staff 员工，对应 staff，隶属唯一小组
type Staff struct {
	StaffID          string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"staff_id"`
	GroupID          string     `gorm:"type:uuid;not null;index"                       json:"group_id"`
	Name             string     `gorm:"type:varchar(100);not null"                     json:"name"`
	UserID           *string    `gorm:"type:varchar(64)"                               json:"user_id,omitempty"`
	Role             string     `gorm:"type:varchar(20);not null;default:'staff'"      json:"role"`
	IsShiftConfirmed bool       `gorm:"not null;default:false"                         json:"is_shift_confirmed"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
	BaseModel

	// 关联
	Group *Group `gorm:"foreignKey:GroupID;references:GroupID" json:"group,omitempty"`
}

func (Staff) TableName() string { return "staff" }
