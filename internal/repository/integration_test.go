//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/KamineHiro/shift-maker/internal/model"
	"github.com/KamineHiro/shift-maker/internal/repository"
	"github.com/KamineHiro/shift-maker/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=postgres password=postgres dbname=shift_maker_test sslmode=disable TimeZone=Asia/Tokyo"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// setupTestData 创建小组与一名员工，返回清理函数
func setupTestData(t *testing.T) (group *model.Group, staff *model.Staff, cleanup func()) {
	t.Helper()
	ctx := context.Background()
	suffix := time.Now().UnixNano() % 100000000

	group = &model.Group{
		Name:              "Cafe A",
		AccessKey:         fmt.Sprintf("a%07d", suffix),
		AdminKey:          fmt.Sprintf("m%07d", suffix),
		AdminPasswordHash: "$2a$10$placeholder",
	}
	if err := testDB.WithContext(ctx).Create(group).Error; err != nil {
		t.Fatalf("创建小组失败: %v", err)
	}

	staff = &model.Staff{GroupID: group.GroupID, Name: "Yamada", Role: model.StaffRoleStaff}
	if err := testDB.WithContext(ctx).Create(staff).Error; err != nil {
		t.Fatalf("创建员工失败: %v", err)
	}

	cleanup = func() {
		testDB.Where("group_id = ?", group.GroupID).Delete(&model.Group{})
	}
	return
}

func clock(s string) *model.Clock {
	c := model.Clock(s)
	return &c
}

// ═══════════════════════════════════════════════════════════
// Shift Upsert
// ═══════════════════════════════════════════════════════════

func TestShiftUpsert_RoundTrip(t *testing.T) {
	_, staff, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewShiftRepo(testDB)
	ctx := context.Background()

	shift := &model.Shift{
		StaffID:   staff.StaffID,
		Date:      "2024-06-03",
		StartTime: clock("10:00"),
		EndTime:   clock("16:00"),
		IsWorking: true,
		Note:      "遅刻するかも",
	}
	if err := repo.Upsert(ctx, shift); err != nil {
		t.Fatalf("Upsert 失败: %v", err)
	}

	got, err := repo.Get(ctx, staff.StaffID, "2024-06-03")
	if err != nil {
		t.Fatalf("Get 失败: %v", err)
	}
	if got.Date != "2024-06-03" || *got.StartTime != "10:00" || *got.EndTime != "16:00" {
		t.Errorf("读取结果不符: date=%s start=%v end=%v", got.Date, got.StartTime, got.EndTime)
	}
	if !got.IsWorking || got.Note != "遅刻するかも" {
		t.Errorf("读取结果不符: %+v", got)
	}
}

func TestShiftUpsert_ConcurrentSingleRow(t *testing.T) {
	_, staff, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewShiftRepo(testDB)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.Upsert(ctx, &model.Shift{
				StaffID:   staff.StaffID,
				Date:      "2024-06-04",
				IsWorking: i%2 == 0,
				Note:      fmt.Sprintf("write-%d", i),
			})
		}(i)
	}
	wg.Wait()

	var count int64
	testDB.Model(&model.Shift{}).Where("staff_id = ? AND date = ?", staff.StaffID, "2024-06-04").Count(&count)
	if count != 1 {
		t.Errorf("并发 Upsert 后应只有 1 行，实际 %d", count)
	}
}

func TestShiftDelete_Missing(t *testing.T) {
	_, staff, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewShiftRepo(testDB)
	if err := repo.Delete(context.Background(), staff.StaffID, "2030-01-01"); err != nil {
		t.Errorf("删除不存在的排班不应报错: %v", err)
	}
}

func TestShiftDeleteBefore(t *testing.T) {
	_, staff, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewShiftRepo(testDB)
	ctx := context.Background()

	for _, d := range []model.Date{"2000-01-01", "2000-01-10", "2000-01-20"} {
		if err := repo.Upsert(ctx, &model.Shift{StaffID: staff.StaffID, Date: d}); err != nil {
			t.Fatalf("Upsert 失败: %v", err)
		}
	}

	n, err := repo.DeleteBefore(ctx, "2000-01-10")
	if err != nil {
		t.Fatalf("DeleteBefore 失败: %v", err)
	}
	if n < 1 {
		t.Errorf("至少应删除 1 行，实际 %d", n)
	}
	if _, err := repo.Get(ctx, staff.StaffID, "2000-01-10"); err != nil {
		t.Errorf("截止日当天的排班应保留: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Staff
// ═══════════════════════════════════════════════════════════

func TestStaffDelete_CascadesShifts(t *testing.T) {
	group, staff, cleanup := setupTestData(t)
	defer cleanup()

	ctx := context.Background()
	shifts := repository.NewShiftRepo(testDB)
	staffRepo := repository.NewStaffRepo(testDB)

	if err := shifts.Upsert(ctx, &model.Shift{StaffID: staff.StaffID, Date: "2024-06-05"}); err != nil {
		t.Fatalf("Upsert 失败: %v", err)
	}
	if err := staffRepo.Delete(ctx, group.GroupID, staff.StaffID); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}

	list, err := shifts.ListByStaff(ctx, staff.StaffID)
	if err != nil {
		t.Fatalf("ListByStaff 失败: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("删除员工后排班应级联删除，剩余 %d", len(list))
	}
}

func TestStaffGetByID_OtherGroup(t *testing.T) {
	_, staff, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewStaffRepo(testDB)
	_, err := repo.GetByID(context.Background(), "00000000-0000-0000-0000-000000000000", staff.StaffID)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("其他小组查询应返回 ErrRecordNotFound，实际 %v", err)
	}
}

func TestStaffSetConfirmed(t *testing.T) {
	group, staff, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewStaffRepo(testDB)
	ctx := context.Background()

	if err := repo.SetConfirmed(ctx, group.GroupID, staff.StaffID, true); err != nil {
		t.Fatalf("SetConfirmed 失败: %v", err)
	}
	got, _ := repo.GetByID(ctx, group.GroupID, staff.StaffID)
	if !got.IsShiftConfirmed || got.ConfirmedAt == nil {
		t.Errorf("确认状态未写入: %+v", got)
	}
}

// ═══════════════════════════════════════════════════════════
// Group / Period
// ═══════════════════════════════════════════════════════════

func TestGroupUpdateDateRange(t *testing.T) {
	group, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewGroupRepo(testDB)
	ctx := context.Background()

	if err := repo.UpdateDateRange(ctx, group.GroupID, "2024-06-01", 7); err != nil {
		t.Fatalf("UpdateDateRange 失败: %v", err)
	}
	got, err := repo.GetByAccessKey(ctx, group.AccessKey)
	if err != nil {
		t.Fatalf("GetByAccessKey 失败: %v", err)
	}
	if got.ShiftStartDate == nil || *got.ShiftStartDate != "2024-06-01" || got.ShiftDays == nil || *got.ShiftDays != 7 {
		t.Errorf("排班窗口未写入: %+v", got)
	}
}

func TestShiftPeriod_DuplicateStart(t *testing.T) {
	group, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewShiftPeriodRepo(testDB)
	ctx := context.Background()

	if err := repo.Create(ctx, &model.ShiftPeriod{GroupID: group.GroupID, StartDate: "2024-05-01", Days: 14}); err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	err := repo.Create(ctx, &model.ShiftPeriod{GroupID: group.GroupID, StartDate: "2024-05-01", Days: 14})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("重复归档应返回 ErrDuplicatedKey，实际 %v", err)
	}
}
