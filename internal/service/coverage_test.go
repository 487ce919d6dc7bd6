package service

import (
	"context"
	"testing"

	"github.com/KamineHiro/shift-maker/internal/dto"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		info   dto.ShiftInfo
		lunch  bool
		dinner bool
	}{
		{"休息", dto.ShiftInfo{IsWorking: false, IsAllDay: false}, false, false},
		{"全天", dto.ShiftInfo{IsWorking: true, IsAllDay: true}, true, true},
		{"午市整段", dto.ShiftInfo{IsWorking: true, StartTime: strPtr("10:00"), EndTime: strPtr("16:00")}, true, false},
		{"晚市整段", dto.ShiftInfo{IsWorking: true, StartTime: strPtr("16:00"), EndTime: strPtr("22:00")}, false, true},
		{"跨两档", dto.ShiftInfo{IsWorking: true, StartTime: strPtr("15:00"), EndTime: strPtr("17:00")}, true, true},
		{"早于午市", dto.ShiftInfo{IsWorking: true, StartTime: strPtr("07:00"), EndTime: strPtr("10:00")}, false, false},
		{"晚于晚市", dto.ShiftInfo{IsWorking: true, StartTime: strPtr("22:00"), EndTime: strPtr("24:00")}, false, false},
		{"缺少时间", dto.ShiftInfo{IsWorking: true}, false, false},
		{"时间倒置", dto.ShiftInfo{IsWorking: true, StartTime: strPtr("18:00"), EndTime: strPtr("11:00")}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lunch, dinner := Classify(tt.info)
			if lunch != tt.lunch || dinner != tt.dinner {
				t.Errorf("期望 lunch=%v dinner=%v，实际 lunch=%v dinner=%v", tt.lunch, tt.dinner, lunch, dinner)
			}
		})
	}
}

func TestCountCoverage_EmptyDates(t *testing.T) {
	got := CountCoverage(nil, map[string]map[string]dto.ShiftInfo{})
	if got == nil || len(got) != 0 {
		t.Errorf("无日期时应返回空切片，实际 %v", got)
	}
}

// 创建小组 → 添加员工 → 设置窗口 → 填写排班 → 管理端统计 → 确认 → 确认后仍可编辑
func TestScenario_CafeA(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	groups := NewGroupService(env.repo, env.jwtManager(), nil, env.logger)
	confirmation := NewConfirmationService(env.repo, env.logger)
	staffSvc := NewStaffService(env.repo, confirmation, env.logger)
	shifts := env.shiftService(fixedNow)

	created, err := groups.Create(ctx, &dto.CreateGroupRequest{Name: "Cafe A", AdminPassword: "secret"})
	if err != nil {
		t.Fatalf("创建小组失败: %v", err)
	}
	groupID := created.Group.ID

	yamada, err := staffSvc.Create(ctx, groupID, &dto.CreateStaffRequest{Name: "Yamada"})
	if err != nil {
		t.Fatalf("添加员工失败: %v", err)
	}

	window, err := shifts.SaveDateRange(ctx, groupID, &dto.SaveDateRangeRequest{StartDate: "2024-06-01", Days: 7})
	if err != nil {
		t.Fatalf("保存窗口失败: %v", err)
	}
	if len(window.Dates) != 7 || window.Dates[6] != "2024-06-07" {
		t.Fatalf("窗口日期不符: %v", window.Dates)
	}

	req := &dto.UpdateShiftRequest{IsWorking: boolPtr(true), StartTime: strPtr("10:00"), EndTime: strPtr("16:00")}
	if _, err := shifts.UpdateShift(ctx, groupID, yamada.ID, "2024-06-03", req); err != nil {
		t.Fatalf("写入排班失败: %v", err)
	}

	table, err := shifts.GetShiftTable(ctx, groupID)
	if err != nil {
		t.Fatalf("读取排班表失败: %v", err)
	}
	var lunch int
	for _, c := range table.Coverage {
		if c.Date == "2024-06-03" {
			lunch = c.Lunch
		}
	}
	if lunch != 1 {
		t.Errorf("2024-06-03 午市人数应为 1，实际 %d", lunch)
	}

	if _, err := confirmation.Confirm(ctx, groupID, yamada.ID); err != nil {
		t.Fatalf("确认失败: %v", err)
	}
	table, _ = shifts.GetShiftTable(ctx, groupID)
	if !table.Rows[0].IsShiftConfirmed {
		t.Error("管理端应看到已确认标记")
	}

	req.EndTime = strPtr("18:00")
	if _, err := shifts.UpdateShift(ctx, groupID, yamada.ID, "2024-06-03", req); err != nil {
		t.Errorf("确认后修改应成功: %v", err)
	}
}
