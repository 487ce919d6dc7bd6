package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/KamineHiro/shift-maker/internal/dto"
	"github.com/KamineHiro/shift-maker/internal/model"
)

func setupStaffService() (*testEnv, StaffService, ConfirmationService) {
	env := newTestEnv()
	confirmation := NewConfirmationService(env.repo, env.logger)
	return env, NewStaffService(env.repo, confirmation, env.logger), confirmation
}

// ── Create / Rename ──

func TestStaffService_Create(t *testing.T) {
	env, svc, _ := setupStaffService()
	groupID, _ := env.seedGroup("Cafe A")

	got, err := svc.Create(context.Background(), groupID, &dto.CreateStaffRequest{Name: "  Yamada "})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if got.Name != "Yamada" || got.Role != model.StaffRoleStaff || got.GroupID != groupID {
		t.Errorf("创建结果不符: %+v", got)
	}

	if _, err := svc.Create(context.Background(), groupID, &dto.CreateStaffRequest{Name: "   "}); !errors.Is(err, ErrEmptyName) {
		t.Errorf("期望 ErrEmptyName，实际 %v", err)
	}
}

func TestStaffService_Rename(t *testing.T) {
	env, svc, _ := setupStaffService()
	groupID, ids := env.seedGroup("Cafe A", "Yamada")
	ctx := context.Background()

	got, err := svc.Rename(ctx, groupID, ids[0], &dto.UpdateStaffRequest{Name: "Yamada Taro"})
	if err != nil {
		t.Fatalf("Rename 应成功: %v", err)
	}
	if got.Name != "Yamada Taro" {
		t.Errorf("改名结果不符: %s", got.Name)
	}

	otherGroup, _ := env.seedGroup("Cafe B")
	if _, err := svc.Rename(ctx, otherGroup, ids[0], &dto.UpdateStaffRequest{Name: "x"}); !errors.Is(err, ErrStaffNotFound) {
		t.Errorf("跨小组改名应为 ErrStaffNotFound，实际 %v", err)
	}
}

// ── Delete ──

func TestStaffService_Delete_CascadesShifts(t *testing.T) {
	env, svc, confirmation := setupStaffService()
	groupID, ids := env.seedGroup("Cafe A", "Yamada", "Suzuki")
	ctx := context.Background()

	_ = env.shifts.Upsert(ctx, &model.Shift{StaffID: ids[0], Date: "2024-06-03", IsWorking: true})
	_ = env.shifts.Upsert(ctx, &model.Shift{StaffID: ids[1], Date: "2024-06-03", IsWorking: true})
	_, _ = confirmation.Confirm(ctx, groupID, ids[0])

	if err := svc.Delete(ctx, groupID, ids[0]); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if n := env.shifts.count(); n != 1 {
		t.Errorf("被删员工的排班应级联删除，剩余 %d", n)
	}
	if _, err := confirmation.Get(ctx, groupID, ids[0]); !errors.Is(err, ErrStaffNotFound) {
		t.Errorf("删除后确认缓存应失效，实际 %v", err)
	}
	if err := svc.Delete(ctx, groupID, ids[0]); !errors.Is(err, ErrStaffNotFound) {
		t.Errorf("重复删除应为 ErrStaffNotFound，实际 %v", err)
	}
}

// ── ParseImportFile / Import ──

func buildXLSX(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		for c, v := range row {
			cellName, _ := excelize.CoordinatesToCellName(c+1, r+1)
			f.SetCellValue("Sheet1", cellName, v)
		}
	}
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		t.Fatalf("生成测试表格失败: %v", err)
	}
	return buf
}

func TestStaffService_ParseImportFile_XLSX(t *testing.T) {
	_, svc, _ := setupStaffService()

	buf := buildXLSX(t, [][]string{
		{"役割", "名前"},
		{"staff", "Yamada"},
		{"", ""},
		{"MANAGER", " Suzuki "},
		{"", "Tanaka"},
	})

	rows, err := svc.ParseImportFile(buf, "staff.xlsx")
	if err != nil {
		t.Fatalf("ParseImportFile 应成功: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("应跳过空行后得到 3 行，实际 %d", len(rows))
	}
	if rows[1].Name != "Suzuki" || rows[1].Role != "manager" || rows[1].Row != 4 {
		t.Errorf("第二行解析不符: %+v", rows[1])
	}
	if rows[2].Role != "" {
		t.Errorf("空角色应保留为空: %+v", rows[2])
	}
}

func TestStaffService_ParseImportFile_Errors(t *testing.T) {
	_, svc, _ := setupStaffService()

	noName := buildXLSX(t, [][]string{{"email"}, {"a@example.com"}})
	if _, err := svc.ParseImportFile(noName, "staff.xlsx"); !errors.Is(err, ErrImportBadHeader) {
		t.Errorf("期望 ErrImportBadHeader，实际 %v", err)
	}

	headerOnly := buildXLSX(t, [][]string{{"name"}})
	if _, err := svc.ParseImportFile(headerOnly, "staff.xlsx"); !errors.Is(err, ErrImportNoData) {
		t.Errorf("期望 ErrImportNoData，实际 %v", err)
	}

	if _, err := svc.ParseImportFile(strings.NewReader("name\nYamada\n"), "staff.xlsx"); !errors.Is(err, ErrImportBadFile) {
		t.Errorf("期望 ErrImportBadFile，实际 %v", err)
	}
}

func TestStaffService_Import_SkipsDuplicates(t *testing.T) {
	env, svc, _ := setupStaffService()
	groupID, _ := env.seedGroup("Cafe A", "Yamada")
	ctx := context.Background()

	resp, err := svc.Import(ctx, groupID, []ImportStaffRow{
		{Row: 2, Name: "Yamada"},
		{Row: 3, Name: "Suzuki", Role: "manager"},
		{Row: 4, Name: "Suzuki"},
		{Row: 5, Name: "Tanaka", Role: "owner"},
		{Row: 6, Name: "Sato"},
	})
	if err != nil {
		t.Fatalf("Import 应成功: %v", err)
	}
	if resp.Total != 5 || resp.Success != 2 || resp.Failed != 3 {
		t.Errorf("导入计数不符: %+v", resp)
	}

	list, _ := svc.List(ctx, groupID)
	if len(list) != 3 {
		t.Fatalf("导入后应有 3 名员工，实际 %d", len(list))
	}
	if list[1].Name != "Suzuki" || list[1].Role != model.StaffRoleManager {
		t.Errorf("导入的员工不符: %+v", list[1])
	}
}
