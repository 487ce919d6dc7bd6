package handler

import "github.com/KamineHiro/shift-maker/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Group  *GroupHandler
	Staff  *StaffHandler
	Shift  *ShiftHandler
	Export *ExportHandler
	Health *HealthHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, health *HealthHandler) *Handler {
	return &Handler{
		Group:  NewGroupHandler(svc.Group),
		Staff:  NewStaffHandler(svc.Staff),
		Shift:  NewShiftHandler(svc.Shift, svc.Bulk, svc.Confirmation, svc.Period),
		Export: NewExportHandler(svc.Export, svc.Period),
		Health: health,
	}
}
