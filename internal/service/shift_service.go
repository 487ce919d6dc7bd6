package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/KamineHiro/shift-maker/config"
	"github.com/KamineHiro/shift-maker/internal/dto"
	"github.com/KamineHiro/shift-maker/internal/model"
	"github.com/KamineHiro/shift-maker/internal/repository"
	"github.com/KamineHiro/shift-maker/pkg/dates"
	apperrors "github.com/KamineHiro/shift-maker/pkg/errors"
	"github.com/KamineHiro/shift-maker/pkg/redis"
)

const dateRangeCacheTTL = 10 * time.Minute

// ShiftService 排班业务接口
// 所有操作都以会话所属小组为范围，跨组的员工视为不存在
type ShiftService interface {
	GetDates(ctx context.Context, groupID string) ([]string, error)
	// GetShift 未找到排班时返回 (nil, nil)
	GetShift(ctx context.Context, groupID, staffID, date string) (*dto.ShiftInfo, error)
	GetStaffShifts(ctx context.Context, groupID, staffID string) (map[string]dto.ShiftInfo, error)
	UpdateShift(ctx context.Context, groupID, staffID, date string, req *dto.UpdateShiftRequest) (*dto.ShiftInfo, error)
	// DeleteShift 排班不存在时同样返回成功
	DeleteShift(ctx context.Context, groupID, staffID, date string) error
	GetDateRange(ctx context.Context, groupID string) (*dto.DateRangeResponse, error)
	SaveDateRange(ctx context.Context, groupID string, req *dto.SaveDateRangeRequest) (*dto.DateRangeResponse, error)
	// CleanupOldShifts 删除早于 today-retention 的全部排班，与确认状态无关
	CleanupOldShifts(ctx context.Context) (*dto.CleanupResponse, error)
	GetShiftTable(ctx context.Context, groupID string) (*dto.ShiftTableResponse, error)
	// GetShiftTableFor 指定日期列表的排班表，用于归档与导出
	GetShiftTableFor(ctx context.Context, groupID string, days []string) (*dto.ShiftTableResponse, error)
}

type shiftService struct {
	cfg    *config.ShiftConfig
	repo   *repository.Repository
	cache  Cache
	logger *zap.Logger
	now    func() time.Time
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(cfg *config.ShiftConfig, repo *repository.Repository, cache Cache, logger *zap.Logger) ShiftService {
	return &shiftService{
		cfg:    cfg,
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// requireStaff 校验 ID 并确认员工属于该小组
func (s *shiftService) requireStaff(ctx context.Context, groupID, staffID string) (*model.Staff, error) {
	return lookupStaff(ctx, s.repo, s.logger, groupID, staffID)
}

func lookupStaff(ctx context.Context, repo *repository.Repository, logger *zap.Logger, groupID, staffID string) (*model.Staff, error) {
	if err := validStaffID(staffID); err != nil {
		return nil, err
	}
	staff, err := repo.Staff.GetByID(ctx, groupID, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		logger.Error("查询员工失败",
			zap.String("group_id", groupID), zap.String("staff_id", staffID), zap.Error(err))
		return nil, apperrors.Store(err)
	}
	return staff, nil
}

// ────────────────────── GetShift ──────────────────────

func (s *shiftService) GetShift(ctx context.Context, groupID, staffID, date string) (*dto.ShiftInfo, error) {
	if err := validStaffID(staffID); err != nil {
		return nil, err
	}
	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireStaff(ctx, groupID, staffID); err != nil {
		return nil, err
	}

	shift, err := s.repo.Shift.Get(ctx, staffID, d)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("查询排班失败",
			zap.String("staff_id", staffID), zap.String("date", date), zap.Error(err))
		return nil, apperrors.Store(err)
	}

	info := toShiftInfo(shift)
	return &info, nil
}

// ────────────────────── GetStaffShifts ──────────────────────

func (s *shiftService) GetStaffShifts(ctx context.Context, groupID, staffID string) (map[string]dto.ShiftInfo, error) {
	if _, err := s.requireStaff(ctx, groupID, staffID); err != nil {
		return nil, err
	}

	list, err := s.repo.Shift.ListByStaff(ctx, staffID)
	if err != nil {
		s.logger.Error("查询员工排班失败", zap.String("staff_id", staffID), zap.Error(err))
		return nil, apperrors.Store(err)
	}

	result := make(map[string]dto.ShiftInfo, len(list))
	for i := range list {
		result[list[i].Date.String()] = toShiftInfo(&list[i])
	}
	return result, nil
}

// ────────────────────── UpdateShift ──────────────────────

func (s *shiftService) UpdateShift(ctx context.Context, groupID, staffID, date string, req *dto.UpdateShiftRequest) (*dto.ShiftInfo, error) {
	// 1. 边界校验，全部通过后才访问存储
	if err := validStaffID(staffID); err != nil {
		return nil, err
	}
	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	if req.IsWorking == nil {
		return nil, apperrors.Validation("is_working 为必填项")
	}
	start, err := optionalClock(req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := optionalClock(req.EndTime)
	if err != nil {
		return nil, err
	}
	working := *req.IsWorking
	if req.IsAllDay && !working {
		return nil, ErrAllDayNotWorking
	}
	if working && !req.IsAllDay && start != nil && end != nil && start.Minutes() >= end.Minutes() {
		return nil, ErrInvalidTimeRange
	}

	// 2. 员工必须属于当前小组
	if _, err := s.requireStaff(ctx, groupID, staffID); err != nil {
		return nil, err
	}

	// 3. 原子 upsert
	shift := &model.Shift{
		StaffID:   staffID,
		Date:      d,
		StartTime: start,
		EndTime:   end,
		IsWorking: working,
		IsAllDay:  req.IsAllDay,
		Note:      req.Note,
	}
	if err := s.repo.Shift.Upsert(ctx, shift); err != nil {
		s.logger.Error("保存排班失败",
			zap.String("staff_id", staffID), zap.String("date", date), zap.Error(err))
		return nil, apperrors.Store(err)
	}

	info := toShiftInfo(shift)
	return &info, nil
}

// ────────────────────── DeleteShift ──────────────────────

func (s *shiftService) DeleteShift(ctx context.Context, groupID, staffID, date string) error {
	if err := validStaffID(staffID); err != nil {
		return err
	}
	d, err := parseDate(date)
	if err != nil {
		return err
	}
	if _, err := s.requireStaff(ctx, groupID, staffID); err != nil {
		return err
	}

	if err := s.repo.Shift.Delete(ctx, staffID, d); err != nil {
		s.logger.Error("删除排班失败",
			zap.String("staff_id", staffID), zap.String("date", date), zap.Error(err))
		return apperrors.Store(err)
	}
	return nil
}

// ────────────────────── DateRange ──────────────────────

func dateRangeCacheKey(groupID string) string {
	return "shift:daterange:" + groupID
}

func (s *shiftService) GetDateRange(ctx context.Context, groupID string) (*dto.DateRangeResponse, error) {
	key := dateRangeCacheKey(groupID)
	if s.cache != nil {
		var cached dto.DateRangeResponse
		err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("读取排班窗口缓存失败", zap.String("group_id", groupID), zap.Error(err))
		}
	}

	group, err := s.repo.Group.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询小组失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, apperrors.Store(err)
	}

	// 未设置时默认从今天开始
	start := dates.Today(s.now())
	days := s.defaultDays()
	if group.ShiftStartDate != nil && *group.ShiftStartDate != "" {
		if t, err := dates.Parse(group.ShiftStartDate.String()); err == nil {
			start = t
		}
	}
	if group.ShiftDays != nil && *group.ShiftDays > 0 {
		days = *group.ShiftDays
	}

	resp := &dto.DateRangeResponse{
		StartDate: dates.Format(start),
		Days:      days,
		Dates:     dates.Range(start, days),
	}

	// 未保存的默认窗口随日期变化，只缓存已保存的窗口
	if s.cache != nil && group.ShiftStartDate != nil {
		if err := s.cache.SetJSON(ctx, key, resp, dateRangeCacheTTL); err != nil {
			s.logger.Warn("写入排班窗口缓存失败", zap.String("group_id", groupID), zap.Error(err))
		}
	}
	return resp, nil
}

func (s *shiftService) SaveDateRange(ctx context.Context, groupID string, req *dto.SaveDateRangeRequest) (*dto.DateRangeResponse, error) {
	start, err := dates.Parse(req.StartDate)
	if err != nil || !dates.IsDate(req.StartDate) {
		return nil, ErrInvalidDate
	}
	if req.Days < 1 || req.Days > s.maxDays() {
		return nil, ErrInvalidDays
	}

	if err := s.repo.Group.UpdateDateRange(ctx, groupID, model.Date(req.StartDate), req.Days); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("保存排班窗口失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, apperrors.Store(err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, dateRangeCacheKey(groupID)); err != nil {
			s.logger.Warn("清除排班窗口缓存失败", zap.String("group_id", groupID), zap.Error(err))
		}
	}

	return &dto.DateRangeResponse{
		StartDate: req.StartDate,
		Days:      req.Days,
		Dates:     dates.Range(start, req.Days),
	}, nil
}

func (s *shiftService) GetDates(ctx context.Context, groupID string) ([]string, error) {
	r, err := s.GetDateRange(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return r.Dates, nil
}

func (s *shiftService) defaultDays() int {
	if s.cfg != nil && s.cfg.DefaultDays > 0 {
		return s.cfg.DefaultDays
	}
	return dates.DefaultDays
}

func (s *shiftService) maxDays() int {
	if s.cfg != nil && s.cfg.MaxDays > 0 {
		return s.cfg.MaxDays
	}
	return 62
}

// ────────────────────── CleanupOldShifts ──────────────────────

func (s *shiftService) CleanupOldShifts(ctx context.Context) (*dto.CleanupResponse, error) {
	retention := 42
	if s.cfg != nil && s.cfg.RetentionDays > 0 {
		retention = s.cfg.RetentionDays
	}
	cutoff := dates.Format(dates.Today(s.now()).AddDate(0, 0, -retention))

	deleted, err := s.repo.Shift.DeleteBefore(ctx, model.Date(cutoff))
	if err != nil {
		s.logger.Error("清理旧排班失败", zap.String("cutoff", cutoff), zap.Error(err))
		return nil, apperrors.Store(err)
	}

	s.logger.Info("旧排班清理完成", zap.String("cutoff", cutoff), zap.Int64("deleted", deleted))
	return &dto.CleanupResponse{Deleted: deleted, Cutoff: cutoff}, nil
}

// ────────────────────── GetShiftTable ──────────────────────

func (s *shiftService) GetShiftTable(ctx context.Context, groupID string) (*dto.ShiftTableResponse, error) {
	window, err := s.GetDateRange(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.buildTable(ctx, groupID, window.Dates)
}

func (s *shiftService) GetShiftTableFor(ctx context.Context, groupID string, days []string) (*dto.ShiftTableResponse, error) {
	for _, d := range days {
		if !dates.IsDate(d) {
			return nil, ErrInvalidDate
		}
	}
	return s.buildTable(ctx, groupID, days)
}

// buildTable 组装指定日期范围的管理端排班表
func (s *shiftService) buildTable(ctx context.Context, groupID string, days []string) (*dto.ShiftTableResponse, error) {
	staffList, err := s.repo.Staff.ListByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("查询员工列表失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, apperrors.Store(err)
	}

	table := &dto.ShiftTableResponse{
		Dates: days,
		Rows:  make([]dto.ShiftTableRow, 0, len(staffList)),
	}
	byStaff := make(map[string]map[string]dto.ShiftInfo, len(staffList))

	if len(days) > 0 && len(staffList) > 0 {
		ids := make([]string, 0, len(staffList))
		for _, st := range staffList {
			ids = append(ids, st.StaffID)
		}
		shifts, err := s.repo.Shift.ListByStaffIDs(ctx, ids, model.Date(days[0]), model.Date(days[len(days)-1]))
		if err != nil {
			s.logger.Error("查询排班失败", zap.String("group_id", groupID), zap.Error(err))
			return nil, apperrors.Store(err)
		}
		for i := range shifts {
			m, ok := byStaff[shifts[i].StaffID]
			if !ok {
				m = make(map[string]dto.ShiftInfo)
				byStaff[shifts[i].StaffID] = m
			}
			m[shifts[i].Date.String()] = toShiftInfo(&shifts[i])
		}
	}

	for _, st := range staffList {
		shifts := byStaff[st.StaffID]
		if shifts == nil {
			shifts = map[string]dto.ShiftInfo{}
		}
		table.Rows = append(table.Rows, dto.ShiftTableRow{
			StaffID:          st.StaffID,
			Name:             st.Name,
			Role:             st.Role,
			IsShiftConfirmed: st.IsShiftConfirmed,
			Shifts:           shifts,
		})
	}
	table.Coverage = CountCoverage(days, byStaff)
	return table, nil
}
