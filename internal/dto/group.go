package dto

// ── 小组 / 会话模块 DTO ──

// CreateGroupRequest 创建小组
type CreateGroupRequest struct {
	Name          string `json:"name"           binding:"required,min=1,max=100"`
	AdminPassword string `json:"admin_password" binding:"required,min=4,max=72"`
}

// AccessKeyRequest 访问密钥 / 管理密钥换取会话
type AccessKeyRequest struct {
	Key string `json:"key" binding:"required,access_key"`
}

// VerifyPasswordRequest 管理密码校验
type VerifyPasswordRequest struct {
	Password string `json:"password" binding:"required,max=72"`
}

// VerifyPasswordResponse 管理密码校验结果
type VerifyPasswordResponse struct {
	Valid bool `json:"valid"`
}

// GroupResponse 小组信息（不含密钥）
type GroupResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ShiftStartDate string `json:"shift_start_date,omitempty"`
	ShiftDays      int    `json:"shift_days,omitempty"`
}

// SessionResponse 会话信息
type SessionResponse struct {
	Token     string        `json:"token,omitempty"`
	Role      string        `json:"role"`
	ExpiresAt string        `json:"expires_at"`
	Group     GroupResponse `json:"group"`
}

// CreateGroupResponse 创建小组响应，密钥只在创建时返回一次
type CreateGroupResponse struct {
	Group     GroupResponse   `json:"group"`
	AccessKey string          `json:"access_key"`
	AdminKey  string          `json:"admin_key"`
	Session   SessionResponse `json:"session"`
}
