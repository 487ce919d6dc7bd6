package service

import (
	"github.com/KamineHiro/shift-maker/internal/dto"
	"github.com/KamineHiro/shift-maker/internal/model"
)

// 午市 10:00-16:00，晚市 16:00-22:00（分钟）
const (
	lunchStart  = 10 * 60
	lunchEnd    = 16 * 60
	dinnerStart = 16 * 60
	dinnerEnd   = 22 * 60
)

// Classify 判断一条排班计入午市 / 晚市哪一档
// 全天可出勤两档都计；否则时间段与窗口有交集即计入
func Classify(info dto.ShiftInfo) (lunch, dinner bool) {
	if !info.IsWorking {
		return false, false
	}
	if info.IsAllDay {
		return true, true
	}
	if info.StartTime == nil || info.EndTime == nil {
		return false, false
	}
	start := model.Clock(*info.StartTime).Minutes()
	end := model.Clock(*info.EndTime).Minutes()
	if start < 0 || end < 0 || start >= end {
		return false, false
	}
	return overlaps(start, end, lunchStart, lunchEnd), overlaps(start, end, dinnerStart, dinnerEnd)
}

func overlaps(start, end, winStart, winEnd int) bool {
	return !(end <= winStart || start >= winEnd)
}

// CountCoverage 统计每个日期的午市 / 晚市出勤人数
// staffShifts: staffID → date → ShiftInfo
func CountCoverage(dates []string, staffShifts map[string]map[string]dto.ShiftInfo) []dto.DayCoverage {
	out := make([]dto.DayCoverage, 0, len(dates))
	for _, d := range dates {
		day := dto.DayCoverage{Date: d}
		for _, shifts := range staffShifts {
			info, ok := shifts[d]
			if !ok {
				continue
			}
			lunch, dinner := Classify(info)
			if lunch {
				day.Lunch++
			}
			if dinner {
				day.Dinner++
			}
		}
		out = append(out, day)
	}
	return out
}
