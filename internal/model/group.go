package model

// Group 小组（店铺），对应 groups
// AccessKey 授予员工级访问，AdminKey 授予管理级访问
type Group struct {
	GroupID           string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_id"`
	Name              string `gorm:"type:varchar(100);not null"                     json:"name"`
	AccessKey         string `gorm:"type:varchar(16);not null;uniqueIndex"          json:"-"`
	AdminKey          string `gorm:"type:varchar(16);not null;uniqueIndex"          json:"-"`
	AdminPasswordHash string `gorm:"type:varchar(100);not null"                     json:"-"`
	ShiftStartDate    *Date  `gorm:"type:date"                                      json:"shift_start_date,omitempty"`
	ShiftDays         *int   `gorm:"column:shift_days"                              json:"shift_days,omitempty"`
	BaseModel
}

func (Group) TableName() string { return "groups" }
