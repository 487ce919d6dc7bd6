package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/KamineHiro/shift-maker/internal/dto"
	"github.com/KamineHiro/shift-maker/internal/model"
	"github.com/KamineHiro/shift-maker/internal/repository"
	"github.com/KamineHiro/shift-maker/pkg/dates"
	apperrors "github.com/KamineHiro/shift-maker/pkg/errors"
)

// ── 导出模块业务错误 ──

var (
	ErrExportEmptyWindow = apperrors.Validation("排班窗口为空，无法导出")
	ErrExportGenerate    = apperrors.Store(fmt.Errorf("生成导出文件失败"))
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
//   - Excel：行为员工，列为日期，末尾两行为午市/晚市出勤人数
//   - ICS：员工每个出勤日一个 VEVENT，全天可出勤时为全天事件
type ExportService interface {
	// ExportShiftTable 导出当前排班窗口
	ExportShiftTable(ctx context.Context, groupID string) (*bytes.Buffer, string, error)
	// ExportTable 导出指定日期列表，用于期间归档
	ExportTable(ctx context.Context, groupID string, days []string) (*bytes.Buffer, string, error)
	ExportStaffCalendar(ctx context.Context, groupID, staffID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	shift  ShiftService
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, shift ShiftService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, shift: shift, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportShiftTable 排班表导出为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行标题，第 2 行表头：姓名 | 角色 | 已确认 | 日期...
//   - 单元格：全天 / HH:MM-HH:MM / 出勤 / 休
//   - 末尾：午市、晚市人数

func (s *exportService) ExportShiftTable(ctx context.Context, groupID string) (*bytes.Buffer, string, error) {
	window, err := s.shift.GetDateRange(ctx, groupID)
	if err != nil {
		return nil, "", err
	}
	return s.ExportTable(ctx, groupID, window.Dates)
}

func (s *exportService) ExportTable(ctx context.Context, groupID string, days []string) (*bytes.Buffer, string, error) {
	if len(days) == 0 {
		return nil, "", ErrExportEmptyWindow
	}
	table, err := s.shift.GetShiftTableFor(ctx, groupID, days)
	if err != nil {
		return nil, "", err
	}

	buf, err := renderTable(table)
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, "", ErrExportGenerate
	}

	filename := fmt.Sprintf("shifts_%s_%s.xlsx", days[0], days[len(days)-1])
	return buf, filename, nil
}

var weekdayNames = [...]string{"日", "一", "二", "三", "四", "五", "六"}

func renderTable(table *dto.ShiftTableResponse) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "排班表"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	const fixedCols = 3
	lastCol := colName(fixedCols + len(table.Dates) - 1)

	f.SetColWidth(sheet, "A", "A", 16)
	f.SetColWidth(sheet, "B", "C", 8)
	f.SetColWidth(sheet, colName(fixedCols), lastCol, 13)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	offStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: "#999999"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	// 标题行
	first, last := table.Dates[0], table.Dates[len(table.Dates)-1]
	f.SetCellValue(sheet, "A1", fmt.Sprintf("排班表 %s ~ %s", first, last))
	f.MergeCell(sheet, "A1", cell(lastCol, 1))

	// 表头
	row := 2
	f.SetCellValue(sheet, cell("A", row), "姓名")
	f.SetCellValue(sheet, cell("B", row), "角色")
	f.SetCellValue(sheet, cell("C", row), "已确认")
	for i, d := range table.Dates {
		f.SetCellValue(sheet, cell(colName(fixedCols+i), row), dateHeader(d))
	}
	f.SetCellStyle(sheet, cell("A", row), cell(lastCol, row), headerStyle)

	// 数据行
	row = 3
	for _, r := range table.Rows {
		f.SetCellValue(sheet, cell("A", row), r.Name)
		f.SetCellValue(sheet, cell("B", row), r.Role)
		if r.IsShiftConfirmed {
			f.SetCellValue(sheet, cell("C", row), "✓")
		}
		for i, d := range table.Dates {
			info, ok := r.Shifts[d]
			if !ok {
				continue
			}
			c := cell(colName(fixedCols+i), row)
			f.SetCellValue(sheet, c, shiftCellText(info))
			if !info.IsWorking {
				f.SetCellStyle(sheet, c, c, offStyle)
			}
		}
		row++
	}

	// 合计行
	f.SetCellValue(sheet, cell("A", row), "午市人数")
	f.SetCellValue(sheet, cell("A", row+1), "晚市人数")
	for i, cov := range table.Coverage {
		col := colName(fixedCols + i)
		f.SetCellValue(sheet, cell(col, row), cov.Lunch)
		f.SetCellValue(sheet, cell(col, row+1), cov.Dinner)
	}
	f.SetCellStyle(sheet, cell("A", row), cell(lastCol, row+1), headerStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func dateHeader(d string) string {
	t, err := dates.Parse(d)
	if err != nil {
		return d
	}
	return fmt.Sprintf("%d/%d(%s)", t.Month(), t.Day(), weekdayNames[t.Weekday()])
}

func shiftCellText(info dto.ShiftInfo) string {
	switch {
	case !info.IsWorking:
		return "休"
	case info.IsAllDay:
		return "全天"
	case info.StartTime != nil && info.EndTime != nil:
		return *info.StartTime + "-" + *info.EndTime
	default:
		return "出勤"
	}
}

// ═══════════════════════════════════════════════════════════
// ExportStaffCalendar 员工出勤日导出为 ICS
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportStaffCalendar(ctx context.Context, groupID, staffID string) (*bytes.Buffer, string, error) {
	staff, err := lookupStaff(ctx, s.repo, s.logger, groupID, staffID)
	if err != nil {
		return nil, "", err
	}
	shifts, err := s.shift.GetStaffShifts(ctx, groupID, staffID)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//shift-maker//shift calendar//JA")
	cal.SetXWRCalName(staff.Name + " シフト")

	days := make([]string, 0, len(shifts))
	for d := range shifts {
		days = append(days, d)
	}
	sort.Strings(days)

	stamp := time.Now().UTC()
	for _, date := range days {
		info := shifts[date]
		if !info.IsWorking {
			continue
		}
		day, err := dates.Parse(date)
		if err != nil {
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("%s-%s@shift-maker", staffID, date))
		event.SetDtStampTime(stamp)
		event.SetSummary(staff.Name + " 出勤")
		if info.Note != "" {
			event.SetDescription(info.Note)
		}

		start, end, timed := eventBounds(day, info)
		if timed {
			event.SetStartAt(start)
			event.SetEndAt(end)
		} else {
			event.SetAllDayStartAt(day)
			event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("shifts_%s.ics", staffID)
	return buf, filename, nil
}

// eventBounds 计算定时事件起止；全天或时间缺失时 timed 为 false
func eventBounds(day time.Time, info dto.ShiftInfo) (start, end time.Time, timed bool) {
	if info.IsAllDay || info.StartTime == nil || info.EndTime == nil {
		return time.Time{}, time.Time{}, false
	}
	sm, em := model.Clock(*info.StartTime).Minutes(), model.Clock(*info.EndTime).Minutes()
	if sm < 0 || em < 0 || sm >= em {
		return time.Time{}, time.Time{}, false
	}
	start = day.Add(time.Duration(sm) * time.Minute)
	end = day.Add(time.Duration(em) * time.Minute)
	return start, end, true
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
