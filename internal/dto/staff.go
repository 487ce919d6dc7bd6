package dto

// ── 员工模块 DTO ──

// StaffListRequest 员工列表查询参数
type StaffListRequest struct {
	GroupID string `form:"group_id" binding:"omitempty,uuid"`
}

// CreateStaffRequest 添加员工
// GroupID 可省略，省略时使用会话所属小组
type CreateStaffRequest struct {
	Name    string `json:"name"     binding:"required,min=1,max=100"`
	GroupID string `json:"group_id" binding:"omitempty,uuid"`
	Role    string `json:"role"     binding:"omitempty,oneof=staff manager"`
}

// UpdateStaffRequest 员工改名
type UpdateStaffRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// StaffResponse 员工信息
type StaffResponse struct {
	ID               string  `json:"id"`
	GroupID          string  `json:"group_id"`
	Name             string  `json:"name"`
	Role             string  `json:"role"`
	IsShiftConfirmed bool    `json:"is_shift_confirmed"`
	ConfirmedAt      *string `json:"confirmed_at,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

// ImportStaffResponse 批量导入员工响应
type ImportStaffResponse struct {
	Total   int           `json:"total"`
	Success int           `json:"success"`
	Failed  int           `json:"failed"`
	Errors  []ImportError `json:"errors,omitempty"`
}
