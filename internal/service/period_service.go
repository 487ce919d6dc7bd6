package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/KamineHiro/shift-maker/internal/dto"
	"github.com/KamineHiro/shift-maker/internal/model"
	"github.com/KamineHiro/shift-maker/internal/repository"
	"github.com/KamineHiro/shift-maker/pkg/dates"
	apperrors "github.com/KamineHiro/shift-maker/pkg/errors"
	"github.com/KamineHiro/shift-maker/pkg/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PeriodService 过去排班期间的归档与删除
//
// 归档时记录当前窗口并把排班表快照写入对象存储；
// 快照写入失败不影响归档记录本身，has_snapshot 为 false。
type PeriodService interface {
	ArchiveCurrentPeriod(ctx context.Context, groupID string) (*dto.ShiftPeriodResponse, error)
	ListPastPeriods(ctx context.Context, groupID string) ([]dto.ShiftPeriodResponse, error)
	// DeletePastPeriod 删除期间记录、快照以及小组员工在该期间内的全部排班
	DeletePastPeriod(ctx context.Context, groupID, startDate string) (*dto.DeletePeriodResponse, error)
	// OpenSnapshot 读取归档快照，调用方负责关闭
	OpenSnapshot(ctx context.Context, groupID, startDate string) (io.ReadCloser, string, error)
}

var ErrSnapshotMissing = apperrors.NotFound("该期间没有快照")

type periodService struct {
	repo    *repository.Repository
	shift   ShiftService
	export  ExportService
	storage storage.Storage
	logger  *zap.Logger
}

// NewPeriodService 创建 PeriodService 实例，storage 可为 nil
func NewPeriodService(
	repo *repository.Repository,
	shift ShiftService,
	export ExportService,
	store storage.Storage,
	logger *zap.Logger,
) PeriodService {
	return &periodService{repo: repo, shift: shift, export: export, storage: store, logger: logger}
}

// ────────────────────── Archive ──────────────────────

func (s *periodService) ArchiveCurrentPeriod(ctx context.Context, groupID string) (*dto.ShiftPeriodResponse, error) {
	window, err := s.shift.GetDateRange(ctx, groupID)
	if err != nil {
		return nil, err
	}

	// 快照键由开始日期决定，已归档时不能覆盖原快照
	_, err = s.repo.ShiftPeriod.GetByStartDate(ctx, groupID, model.Date(window.StartDate))
	switch {
	case err == nil:
		return nil, ErrPeriodExists
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("查询归档期间失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, apperrors.Store(err)
	}

	period := &model.ShiftPeriod{
		GroupID:   groupID,
		StartDate: model.Date(window.StartDate),
		Days:      window.Days,
	}

	if s.storage != nil && len(window.Dates) > 0 {
		key := storage.SnapshotKey(groupID, window.StartDate)
		if err := s.snapshot(ctx, groupID, window.Dates, key); err != nil {
			s.logger.Warn("写入期间快照失败",
				zap.String("group_id", groupID), zap.String("key", key), zap.Error(err))
		} else {
			period.SnapshotKey = key
		}
	}

	if err := s.repo.ShiftPeriod.Create(ctx, period); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPeriodExists
		}
		s.logger.Error("创建归档期间失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, apperrors.Store(err)
	}

	s.logger.Info("排班期间已归档",
		zap.String("group_id", groupID),
		zap.String("start_date", window.StartDate),
		zap.Int("days", window.Days),
	)
	resp := toPeriodResponse(period)
	return &resp, nil
}

func (s *periodService) snapshot(ctx context.Context, groupID string, days []string, key string) error {
	buf, _, err := s.export.ExportTable(ctx, groupID, days)
	if err != nil {
		return err
	}
	return s.storage.Put(ctx, key, buf, xlsxContentType)
}

// ────────────────────── List ──────────────────────

func (s *periodService) ListPastPeriods(ctx context.Context, groupID string) ([]dto.ShiftPeriodResponse, error) {
	list, err := s.repo.ShiftPeriod.ListByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("查询归档期间失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, apperrors.Store(err)
	}
	result := make([]dto.ShiftPeriodResponse, 0, len(list))
	for i := range list {
		result = append(result, toPeriodResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Snapshot ──────────────────────

func (s *periodService) OpenSnapshot(ctx context.Context, groupID, startDate string) (io.ReadCloser, string, error) {
	period, err := s.find(ctx, groupID, startDate)
	if err != nil {
		return nil, "", err
	}
	if period.SnapshotKey == "" || s.storage == nil {
		return nil, "", ErrSnapshotMissing
	}

	rc, err := s.storage.Get(ctx, period.SnapshotKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrSnapshotMissing
		}
		s.logger.Error("读取期间快照失败", zap.String("key", period.SnapshotKey), zap.Error(err))
		return nil, "", apperrors.Store(err)
	}
	return rc, fmt.Sprintf("shifts_%s_%s.xlsx", period.StartDate.String(), periodEnd(period)), nil
}

func (s *periodService) find(ctx context.Context, groupID, startDate string) (*model.ShiftPeriod, error) {
	d, err := parseDate(startDate)
	if err != nil {
		return nil, err
	}
	period, err := s.repo.ShiftPeriod.GetByStartDate(ctx, groupID, d)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("查询归档期间失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, apperrors.Store(err)
	}
	return period, nil
}

// ────────────────────── Delete ──────────────────────

func (s *periodService) DeletePastPeriod(ctx context.Context, groupID, startDate string) (*dto.DeletePeriodResponse, error) {
	period, err := s.find(ctx, groupID, startDate)
	if err != nil {
		return nil, err
	}

	staffList, err := s.repo.Staff.ListByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("查询员工列表失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, apperrors.Store(err)
	}

	var deleted int64
	if len(staffList) > 0 && period.Days > 0 {
		ids := make([]string, 0, len(staffList))
		for _, st := range staffList {
			ids = append(ids, st.StaffID)
		}
		end := periodEnd(period)
		deleted, err = s.repo.Shift.DeleteByStaffIDsAndDates(ctx, ids, period.StartDate, model.Date(end))
		if err != nil {
			s.logger.Error("删除期间排班失败", zap.String("group_id", groupID), zap.Error(err))
			return nil, apperrors.Store(err)
		}
	}

	if period.SnapshotKey != "" && s.storage != nil {
		if err := s.storage.Delete(ctx, period.SnapshotKey); err != nil {
			s.logger.Warn("删除期间快照失败", zap.String("key", period.SnapshotKey), zap.Error(err))
		}
	}

	if err := s.repo.ShiftPeriod.Delete(ctx, period.PeriodID); err != nil {
		s.logger.Error("删除归档期间失败", zap.String("period_id", period.PeriodID), zap.Error(err))
		return nil, apperrors.Store(err)
	}

	s.logger.Info("归档期间已删除",
		zap.String("group_id", groupID),
		zap.String("start_date", startDate),
		zap.Int64("deleted_shifts", deleted),
	)
	return &dto.DeletePeriodResponse{StartDate: period.StartDate.String(), DeletedShifts: deleted}, nil
}

// periodEnd 期间最后一天
func periodEnd(p *model.ShiftPeriod) string {
	end, err := dates.AddDays(p.StartDate.String(), p.Days-1)
	if err != nil {
		return p.StartDate.String()
	}
	return end
}

func toPeriodResponse(p *model.ShiftPeriod) dto.ShiftPeriodResponse {
	resp := dto.ShiftPeriodResponse{
		ID:          p.PeriodID,
		StartDate:   p.StartDate.String(),
		EndDate:     periodEnd(p),
		Days:        p.Days,
		HasSnapshot: p.SnapshotKey != "",
	}
	if !p.CreatedAt.IsZero() {
		resp.CreatedAt = formatTime(p.CreatedAt)
	}
	return resp
}
