package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KamineHiro/shift-maker/internal/dto"
	"github.com/KamineHiro/shift-maker/internal/service"
	"github.com/KamineHiro/shift-maker/pkg/response"
	"github.com/KamineHiro/shift-maker/pkg/validator"
)

// StaffHandler 员工模块 HTTP 处理器
type StaffHandler struct {
	staffSvc service.StaffService
}

// NewStaffHandler 创建 StaffHandler
func NewStaffHandler(staffSvc service.StaffService) *StaffHandler {
	return &StaffHandler{staffSvc: staffSvc}
}

// ListStaff 员工列表
// @Summary  员工列表
// @Tags     staff
// @Security BearerAuth
// @Param    group_id query string true "小组 ID"
// @Success  200 {object} response.Response{data=[]dto.StaffResponse}
// @Router   /staff [get]
func (h *StaffHandler) ListStaff(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	var q dto.StaffListRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 40000, validator.Message(err))
		return
	}
	if !sameGroup(c, groupID, q.GroupID) {
		return
	}

	list, err := h.staffSvc.List(c.Request.Context(), groupID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, list)
}

// CreateStaff 添加员工
// @Summary  添加员工
// @Tags     staff
// @Security BearerAuth
// @Param    body body dto.CreateStaffRequest true "员工姓名"
// @Success  201 {object} response.Response{data=dto.StaffResponse}
// @Router   /staff [post]
func (h *StaffHandler) CreateStaff(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	var req dto.CreateStaffRequest
	if !bindJSON(c, &req) {
		return
	}
	if !sameGroup(c, groupID, req.GroupID) {
		return
	}

	staff, err := h.staffSvc.Create(c.Request.Context(), groupID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, staff)
}

// GetStaff 员工详情
// @Summary  员工详情
// @Tags     staff
// @Security BearerAuth
// @Param    id path string true "员工 ID"
// @Success  200 {object} response.Response{data=dto.StaffResponse}
// @Router   /staff/{id} [get]
func (h *StaffHandler) GetStaff(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	staffID, ok := staffIDParam(c, "id")
	if !ok {
		return
	}

	staff, err := h.staffSvc.Get(c.Request.Context(), groupID, staffID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, staff)
}

// RenameStaff 员工改名
// @Summary  员工改名
// @Tags     staff
// @Security BearerAuth
// @Param    id   path string                 true "员工 ID"
// @Param    body body dto.UpdateStaffRequest true "新姓名"
// @Success  200 {object} response.Response{data=dto.StaffResponse}
// @Router   /staff/{id} [put]
func (h *StaffHandler) RenameStaff(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	staffID, ok := staffIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateStaffRequest
	if !bindJSON(c, &req) {
		return
	}

	staff, err := h.staffSvc.Rename(c.Request.Context(), groupID, staffID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, staff)
}

// DeleteStaff 删除员工（排班级联删除）
// @Summary  删除员工
// @Tags     staff
// @Security BearerAuth
// @Param    id path string true "员工 ID"
// @Success  200 {object} response.Response
// @Router   /staff/{id} [delete]
func (h *StaffHandler) DeleteStaff(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	staffID, ok := staffIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.staffSvc.Delete(c.Request.Context(), groupID, staffID); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, nil)
}

// ImportStaff 通过 .xlsx / .xls 批量导入员工
// @Summary  导入员工
// @Tags     staff
// @Security BearerAuth
// @Param    file formData file true ".xlsx 或 .xls"
// @Accept   multipart/form-data
// @Success  200 {object} response.Response{data=dto.ImportStaffResponse}
// @Router   /staff/import [post]
func (h *StaffHandler) ImportStaff(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(err)
			return
		}
		response.BadRequest(c, 40002, "请上传表格文件（字段 file）")
		return
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		response.BadRequest(c, 40002, "仅支持 .xlsx 或 .xls 文件")
		return
	}

	file, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 40002, "无法读取上传文件")
		return
	}
	defer file.Close()

	rows, err := h.staffSvc.ParseImportFile(file, fh.Filename)
	if err != nil {
		fail(c, err)
		return
	}

	result, err := h.staffSvc.Import(c.Request.Context(), groupID, rows)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, result)
}
