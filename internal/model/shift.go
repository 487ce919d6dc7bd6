package model

// Shift 排班，对应 shifts，(staff_id, date) 唯一
// IsWorking 是唯一的出勤语义；全天标记使用独立列，备注不承载结构化状态
type Shift struct {
	ShiftID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	StaffID   string `gorm:"type:uuid;not null;uniqueIndex:uq_shifts_staff_date" json:"staff_id"`
	Date      Date   `gorm:"type:date;not null;uniqueIndex:uq_shifts_staff_date" json:"date"`
	StartTime *Clock `gorm:"type:time"                                      json:"start_time,omitempty"`
	EndTime   *Clock `gorm:"type:time"                                      json:"end_time,omitempty"`
	IsWorking bool   `gorm:"not null;default:false"                         json:"is_working"`
	IsAllDay  bool   `gorm:"not null;default:false"                         json:"is_all_day"`
	Note      string `gorm:"type:text;not null;default:''"                  json:"note"`
	BaseModel

	// 关联
	Staff *Staff `gorm:"foreignKey:StaffID;references:StaffID" json:"staff,omitempty"`
}

func (Shift) TableName() string { return "shifts" }
