package handler

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/KamineHiro/shift-maker/internal/service"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
	periodSvc service.PeriodService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, periodSvc service.PeriodService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, periodSvc: periodSvc}
}

// ExportShifts 导出当前窗口排班表
// @Summary  导出排班表
// @Tags     export
// @Security BearerAuth
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success  200 {file} file
// @Router   /export/shifts [get]
func (h *ExportHandler) ExportShifts(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportShiftTable(c.Request.Context(), groupID)
	if err != nil {
		fail(c, err)
		return
	}
	attachment(c, filename, xlsxContentType, buf)
}

// ExportStaffCalendar 导出员工出勤日历
// @Summary  导出员工日历
// @Tags     export
// @Security BearerAuth
// @Param    staffId path string true "员工 ID"
// @Produce  text/calendar
// @Success  200 {file} file
// @Router   /export/staff/{staffId}/calendar [get]
func (h *ExportHandler) ExportStaffCalendar(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	staffID, ok := staffIDParam(c, "staffId")
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportStaffCalendar(c.Request.Context(), groupID, staffID)
	if err != nil {
		fail(c, err)
		return
	}
	attachment(c, filename, icsContentType, buf)
}

// DownloadSnapshot 下载归档期间的排班表快照
// @Summary  下载期间快照
// @Tags     period
// @Security BearerAuth
// @Param    startDate path string true "YYYY-MM-DD"
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success  200 {file} file
// @Router   /shifts/periods/{startDate}/snapshot [get]
func (h *ExportHandler) DownloadSnapshot(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	startDate, ok := dateParam(c, "startDate")
	if !ok {
		return
	}

	rc, filename, err := h.periodSvc.OpenSnapshot(c.Request.Context(), groupID, startDate)
	if err != nil {
		fail(c, err)
		return
	}
	defer rc.Close()

	setDownloadHeaders(c, filename)
	c.DataFromReader(http.StatusOK, -1, xlsxContentType, rc, nil)
}

func attachment(c *gin.Context, filename, contentType string, buf *bytes.Buffer) {
	setDownloadHeaders(c, filename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func setDownloadHeaders(c *gin.Context, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
}

