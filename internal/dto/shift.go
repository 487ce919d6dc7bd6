package dto

// ── 排班模块 DTO ──

// ShiftInfo 单日排班（规范化后的唯一形态）
type ShiftInfo struct {
	Date      string  `json:"date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	IsWorking bool    `json:"is_working"`
	IsAllDay  bool    `json:"is_all_day"`
	Note      string  `json:"note"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// UpdateShiftRequest 更新单日排班
type UpdateShiftRequest struct {
	StartTime *string `json:"start_time" binding:"omitempty,clock"`
	EndTime   *string `json:"end_time"   binding:"omitempty,clock"`
	IsWorking *bool   `json:"is_working" binding:"required"`
	IsAllDay  bool    `json:"is_all_day"`
	Note      string  `json:"note"       binding:"max=500"`
}

// DateRangeResponse 排班窗口
type DateRangeResponse struct {
	StartDate string   `json:"start_date"`
	Days      int      `json:"days"`
	Dates     []string `json:"dates"`
}

// SaveDateRangeRequest 保存排班窗口
type SaveDateRangeRequest struct {
	StartDate string `json:"start_date" binding:"required,shift_date"`
	Days      int    `json:"days"       binding:"required,min=1"`
}

// BulkSetRequest 批量设置出勤/休息
// Confirm 表示用户已确认批量操作
type BulkSetRequest struct {
	Dates     []string `json:"dates"      binding:"required,min=1,dive,shift_date"`
	IsWorking *bool    `json:"is_working" binding:"required"`
	Confirm   bool     `json:"confirm"`
}

// BulkSetResponse 批量设置结果
type BulkSetResponse struct {
	Total       int      `json:"total"`
	Succeeded   int      `json:"succeeded"`
	Failed      int      `json:"failed"`
	FailedDates []string `json:"failed_dates,omitempty"`
	Verified    bool     `json:"verified"`
	Attempts    int      `json:"attempts"`
	Message     string   `json:"message"`
}

// ConfirmationResponse 员工排班确认状态
type ConfirmationResponse struct {
	StaffID     string  `json:"staff_id"`
	IsConfirmed bool    `json:"is_confirmed"`
	ConfirmedAt *string `json:"confirmed_at,omitempty"`
}

// CleanupResponse 旧排班清理结果
type CleanupResponse struct {
	Deleted int64  `json:"deleted"`
	Cutoff  string `json:"cutoff"`
}

// ShiftPeriodResponse 已归档期间
type ShiftPeriodResponse struct {
	ID          string `json:"id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Days        int    `json:"days"`
	HasSnapshot bool   `json:"has_snapshot"`
	CreatedAt   string `json:"created_at"`
}

// DeletePeriodResponse 删除归档期间结果
type DeletePeriodResponse struct {
	StartDate     string `json:"start_date"`
	DeletedShifts int64  `json:"deleted_shifts"`
}

// DayCoverage 单日午市/晚市出勤人数
type DayCoverage struct {
	Date   string `json:"date"`
	Lunch  int    `json:"lunch"`
	Dinner int    `json:"dinner"`
}

// ShiftTableRow 管理端排班表中的一名员工
type ShiftTableRow struct {
	StaffID          string               `json:"staff_id"`
	Name             string               `json:"name"`
	Role             string               `json:"role"`
	IsShiftConfirmed bool                 `json:"is_shift_confirmed"`
	Shifts           map[string]ShiftInfo `json:"shifts"`
}

// ShiftTableResponse 管理端排班表
type ShiftTableResponse struct {
	Dates    []string        `json:"dates"`
	Rows     []ShiftTableRow `json:"rows"`
	Coverage []DayCoverage   `json:"coverage"`
}
