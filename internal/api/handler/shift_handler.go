package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/KamineHiro/shift-maker/internal/dto"
	"github.com/KamineHiro/shift-maker/internal/service"
	"github.com/KamineHiro/shift-maker/pkg/dates"
	"github.com/KamineHiro/shift-maker/pkg/response"
)

// ShiftHandler 排班模块 HTTP 处理器
type ShiftHandler struct {
	shiftSvc   service.ShiftService
	bulkSvc    service.BulkService
	confirmSvc service.ConfirmationService
	periodSvc  service.PeriodService
}

// NewShiftHandler 创建 ShiftHandler
func NewShiftHandler(
	shiftSvc service.ShiftService,
	bulkSvc service.BulkService,
	confirmSvc service.ConfirmationService,
	periodSvc service.PeriodService,
) *ShiftHandler {
	return &ShiftHandler{
		shiftSvc:   shiftSvc,
		bulkSvc:    bulkSvc,
		confirmSvc: confirmSvc,
		periodSvc:  periodSvc,
	}
}

// ────────────────────── 排班窗口 ──────────────────────

// GetDates 当前窗口的日期列表
// @Summary  窗口日期
// @Tags     shift
// @Security BearerAuth
// @Success  200 {object} response.Response{data=[]string}
// @Router   /shifts [get]
func (h *ShiftHandler) GetDates(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	days, err := h.shiftSvc.GetDates(c.Request.Context(), groupID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, days)
}

// GetDateRange 读取窗口
// @Summary  读取窗口
// @Tags     shift
// @Security BearerAuth
// @Success  200 {object} response.Response{data=dto.DateRangeResponse}
// @Router   /shifts/range [get]
func (h *ShiftHandler) GetDateRange(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	window, err := h.shiftSvc.GetDateRange(c.Request.Context(), groupID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, window)
}

// SaveDateRange 保存窗口（管理员）
// @Summary  保存窗口
// @Tags     shift
// @Security BearerAuth
// @Param    body body dto.SaveDateRangeRequest true "开始日期与天数"
// @Success  200 {object} response.Response{data=dto.DateRangeResponse}
// @Router   /shifts/range [put]
func (h *ShiftHandler) SaveDateRange(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	var req dto.SaveDateRangeRequest
	if !bindJSON(c, &req) {
		return
	}
	window, err := h.shiftSvc.SaveDateRange(c.Request.Context(), groupID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, window)
}

// GetShiftTable 管理端排班表，附午市/晚市人数
// @Summary  管理端排班表
// @Tags     shift
// @Security BearerAuth
// @Success  200 {object} response.Response{data=dto.ShiftTableResponse}
// @Router   /shifts/table [get]
func (h *ShiftHandler) GetShiftTable(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	table, err := h.shiftSvc.GetShiftTable(c.Request.Context(), groupID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, table)
}

// Cleanup 手动清理过期排班
// @Summary  清理过期排班
// @Tags     shift
// @Security BearerAuth
// @Success  200 {object} response.Response{data=dto.CleanupResponse}
// @Router   /shifts/cleanup [post]
func (h *ShiftHandler) Cleanup(c *gin.Context) {
	result, err := h.shiftSvc.CleanupOldShifts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, result)
}

// ────────────────────── 单人排班 ──────────────────────

// GetStaffShifts 员工在窗口内的全部排班
// @Summary  员工窗口内排班
// @Tags     shift
// @Security BearerAuth
// @Param    staffId path string true "员工 ID"
// @Success  200 {object} response.Response{data=map[string]dto.ShiftInfo}
// @Router   /shifts/{staffId} [get]
func (h *ShiftHandler) GetStaffShifts(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	staffID, ok := staffIDParam(c, "staffId")
	if !ok {
		return
	}
	shifts, err := h.shiftSvc.GetStaffShifts(c.Request.Context(), groupID, staffID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, shifts)
}

// GetShift 单日排班，不存在时 data 为 null
// @Summary  单日排班
// @Tags     shift
// @Security BearerAuth
// @Param    staffId path string true "员工 ID"
// @Param    date    path string true "YYYY-MM-DD"
// @Success  200 {object} response.Response{data=dto.ShiftInfo}
// @Router   /shifts/{staffId}/{date} [get]
func (h *ShiftHandler) GetShift(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	staffID, ok := staffIDParam(c, "staffId")
	if !ok {
		return
	}
	info, err := h.shiftSvc.GetShift(c.Request.Context(), groupID, staffID, c.Param("date"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, info)
}

// UpdateShift 写入单日排班
// @Summary  写入单日排班
// @Tags     shift
// @Security BearerAuth
// @Param    staffId path string                 true "员工 ID"
// @Param    date    path string                 true "YYYY-MM-DD"
// @Param    body    body dto.UpdateShiftRequest true "排班内容"
// @Success  200 {object} response.Response{data=dto.ShiftInfo}
// @Router   /shifts/{staffId}/{date} [put]
func (h *ShiftHandler) UpdateShift(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	staffID, ok := staffIDParam(c, "staffId")
	if !ok {
		return
	}
	var req dto.UpdateShiftRequest
	if !bindJSON(c, &req) {
		return
	}
	info, err := h.shiftSvc.UpdateShift(c.Request.Context(), groupID, staffID, c.Param("date"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, info)
}

// DeleteShift 删除单日排班，不存在时同样成功
// @Summary  删除单日排班
// @Tags     shift
// @Security BearerAuth
// @Param    staffId path string true "员工 ID"
// @Param    date    path string true "YYYY-MM-DD"
// @Success  200 {object} response.Response
// @Router   /shifts/{staffId}/{date} [delete]
func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	staffID, ok := staffIDParam(c, "staffId")
	if !ok {
		return
	}
	if err := h.shiftSvc.DeleteShift(c.Request.Context(), groupID, staffID, c.Param("date")); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, nil)
}

// BulkSet 批量设置出勤/休息
// 部分日期失败时返回 207，data 中带失败日期
// @Summary  批量设置出勤
// @Tags     shift
// @Security BearerAuth
// @Param    staffId path string             true "员工 ID"
// @Param    body    body dto.BulkSetRequest true "日期与出勤"
// @Failure  207 {object} response.Response{data=dto.BulkSetResponse}
// @Success  200 {object} response.Response{data=dto.BulkSetResponse}
// @Router   /shifts/{staffId}/bulk [post]
func (h *ShiftHandler) BulkSet(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	staffID, ok := staffIDParam(c, "staffId")
	if !ok {
		return
	}
	var req dto.BulkSetRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.bulkSvc.BulkSet(c.Request.Context(), groupID, staffID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	if result.Failed > 0 {
		response.MultiStatus(c, result, result.Message)
		return
	}
	response.OK(c, result)
}

// ────────────────────── 确认状态 ──────────────────────

// Confirm 员工确认排班
// @Summary  确认排班
// @Tags     confirmation
// @Security BearerAuth
// @Param    staffId path string true "员工 ID"
// @Success  200 {object} response.Response{data=dto.ConfirmationResponse}
// @Router   /shifts/staff/{staffId}/confirm [post]
func (h *ShiftHandler) Confirm(c *gin.Context) {
	h.confirmation(c, func(svc service.ConfirmationService) confirmationFunc { return svc.Confirm })
}

// Unconfirm 取消确认
// @Summary  取消确认
// @Tags     confirmation
// @Security BearerAuth
// @Param    staffId path string true "员工 ID"
// @Success  200 {object} response.Response{data=dto.ConfirmationResponse}
// @Router   /shifts/staff/{staffId}/unconfirm [post]
func (h *ShiftHandler) Unconfirm(c *gin.Context) {
	h.confirmation(c, func(svc service.ConfirmationService) confirmationFunc { return svc.Unconfirm })
}

// GetConfirmation 读取确认状态
// @Summary  确认状态
// @Tags     confirmation
// @Security BearerAuth
// @Param    staffId path string true "员工 ID"
// @Success  200 {object} response.Response{data=dto.ConfirmationResponse}
// @Router   /shifts/staff/{staffId}/confirmation [get]
func (h *ShiftHandler) GetConfirmation(c *gin.Context) {
	h.confirmation(c, func(svc service.ConfirmationService) confirmationFunc { return svc.Get })
}

type confirmationFunc func(ctx context.Context, groupID, staffID string) (*dto.ConfirmationResponse, error)

// confirmation 参数校验通过后才取服务方法
func (h *ShiftHandler) confirmation(c *gin.Context, pick func(service.ConfirmationService) confirmationFunc) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	staffID, ok := staffIDParam(c, "staffId")
	if !ok {
		return
	}
	resp, err := pick(h.confirmSvc)(c.Request.Context(), groupID, staffID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, resp)
}

// ────────────────────── 归档期间 ──────────────────────

// ListPeriods 已归档期间
// @Summary  已归档期间
// @Tags     period
// @Security BearerAuth
// @Success  200 {object} response.Response{data=[]dto.ShiftPeriodResponse}
// @Router   /shifts/periods [get]
func (h *ShiftHandler) ListPeriods(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	list, err := h.periodSvc.ListPastPeriods(c.Request.Context(), groupID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, list)
}

// ArchivePeriod 归档当前窗口
// @Summary  归档当前窗口
// @Tags     period
// @Security BearerAuth
// @Success  201 {object} response.Response{data=dto.ShiftPeriodResponse}
// @Router   /shifts/periods [post]
func (h *ShiftHandler) ArchivePeriod(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	period, err := h.periodSvc.ArchiveCurrentPeriod(c.Request.Context(), groupID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, period)
}

// DeletePeriod 删除归档期间及其排班
// @Summary  删除归档期间
// @Tags     period
// @Security BearerAuth
// @Param    startDate path string true "YYYY-MM-DD"
// @Success  200 {object} response.Response{data=dto.DeletePeriodResponse}
// @Router   /shifts/periods/{startDate} [delete]
func (h *ShiftHandler) DeletePeriod(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	startDate, ok := dateParam(c, "startDate")
	if !ok {
		return
	}
	result, err := h.periodSvc.DeletePastPeriod(c.Request.Context(), groupID, startDate)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, result)
}

func dateParam(c *gin.Context, name string) (string, bool) {
	d := c.Param(name)
	if !dates.IsDate(d) {
		response.BadRequest(c, 40003, service.ErrInvalidDate.Message)
		return "", false
	}
	return d, true
}
