package service

import (
	apperrors "github.com/KamineHiro/shift-maker/pkg/errors"
)

// ── 业务错误 ──
// 校验类错误在边界处返回，不进入存储层

var (
	ErrInvalidStaffID   = apperrors.Validation("员工 ID 格式无效")
	ErrInvalidGroupID   = apperrors.Validation("小组 ID 格式无效")
	ErrInvalidDate      = apperrors.Validation("日期格式无效，需要 YYYY-MM-DD")
	ErrInvalidClock     = apperrors.Validation("时间格式无效，需要 HH:MM")
	ErrInvalidTimeRange = apperrors.Validation("开始时间必须早于结束时间")
	ErrAllDayNotWorking = apperrors.Validation("全天可出勤时必须为出勤状态")
	ErrInvalidDays      = apperrors.Validation("天数超出允许范围")
	ErrEmptyName        = apperrors.Validation("名称不能为空")

	ErrGroupNotFound  = apperrors.NotFound("小组不存在")
	ErrStaffNotFound  = apperrors.NotFound("员工不存在")
	ErrPeriodNotFound = apperrors.NotFound("归档期间不存在")
	ErrInvalidKey     = apperrors.NotFound("密钥无效")

	ErrPeriodExists = apperrors.Conflict("该期间已归档")
)
