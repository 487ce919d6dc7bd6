package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/KamineHiro/shift-maker/config"
	"github.com/KamineHiro/shift-maker/internal/dto"
	"github.com/KamineHiro/shift-maker/internal/model"
	"github.com/KamineHiro/shift-maker/internal/repository"
	apperrors "github.com/KamineHiro/shift-maker/pkg/errors"
)

var (
	ErrBulkNotConfirmed = apperrors.Validation("批量操作需要确认")
	ErrBulkNoDates      = apperrors.Validation("未指定日期")
	ErrBulkTooManyDates = apperrors.Validation("日期数量超出允许范围")

	errNotVisible = errors.New("写入结果尚不可见")
)

// BulkService 批量设置出勤/休息
//
// 流程：
//   - 逐日 upsert 固定时间段（默认 09:00-22:00），保留原有备注
//   - 单日失败只记录并计数，继续处理其余日期，不回滚
//   - 全部写完后重新读取，至少一个目标日期反映新状态即视为已同步；
//     否则按 1s、2s、3s 递增等待重试，重试耗尽后提示用户手动刷新
type BulkService interface {
	BulkSet(ctx context.Context, groupID, staffID string, req *dto.BulkSetRequest) (*dto.BulkSetResponse, error)
}

type bulkService struct {
	cfg    *config.ShiftConfig
	repo   *repository.Repository
	logger *zap.Logger
	tracer trace.Tracer
}

// NewBulkService 创建 BulkService 实例
func NewBulkService(cfg *config.ShiftConfig, repo *repository.Repository, logger *zap.Logger) BulkService {
	return &bulkService{
		cfg:    cfg,
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("shift-maker/service"),
	}
}

// steppedBackOff 第 n 次重试等待 n*step，共 max 次
type steppedBackOff struct {
	step time.Duration
	max  int
	n    int
}

func (b *steppedBackOff) NextBackOff() time.Duration {
	if b.n >= b.max {
		return backoff.Stop
	}
	b.n++
	return time.Duration(b.n) * b.step
}

func (b *steppedBackOff) Reset() { b.n = 0 }

func (s *bulkService) BulkSet(ctx context.Context, groupID, staffID string, req *dto.BulkSetRequest) (*dto.BulkSetResponse, error) {
	ctx, span := s.tracer.Start(ctx, "BulkService.BulkSet",
		trace.WithAttributes(
			attribute.String("group_id", groupID),
			attribute.String("staff_id", staffID),
			attribute.Int("dates", len(req.Dates)),
		),
	)
	defer span.End()

	resp, err := s.bulkSet(ctx, groupID, staffID, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("succeeded", resp.Succeeded),
		attribute.Int("failed", resp.Failed),
		attribute.Bool("verified", resp.Verified),
		attribute.Int("attempts", resp.Attempts),
	)
	return resp, nil
}

func (s *bulkService) bulkSet(ctx context.Context, groupID, staffID string, req *dto.BulkSetRequest) (*dto.BulkSetResponse, error) {
	// 1. 校验
	if err := validStaffID(staffID); err != nil {
		return nil, err
	}
	if !req.Confirm {
		return nil, ErrBulkNotConfirmed
	}
	if req.IsWorking == nil {
		return nil, apperrors.Validation("is_working 为必填项")
	}
	targets, err := s.normalizeDates(req.Dates)
	if err != nil {
		return nil, err
	}
	if _, err := lookupStaff(ctx, s.repo, s.logger, groupID, staffID); err != nil {
		return nil, err
	}

	// 2. 读取现有排班以保留备注
	existing, err := s.repo.Shift.ListByStaff(ctx, staffID)
	if err != nil {
		s.logger.Error("读取现有排班失败", zap.String("staff_id", staffID), zap.Error(err))
		return nil, apperrors.Store(err)
	}
	notes := make(map[model.Date]string, len(existing))
	for _, sh := range existing {
		notes[sh.Date] = sh.Note
	}

	// 3. 逐日写入
	working := *req.IsWorking
	start, end := s.bulkRange()
	resp := &dto.BulkSetResponse{Total: len(targets)}
	var written []model.Date

	for _, d := range targets {
		startTime, endTime := start, end
		shift := &model.Shift{
			StaffID:   staffID,
			Date:      d,
			StartTime: &startTime,
			EndTime:   &endTime,
			IsWorking: working,
			IsAllDay:  working,
			Note:      notes[d],
		}
		if err := s.repo.Shift.Upsert(ctx, shift); err != nil {
			s.logger.Warn("批量写入单日排班失败",
				zap.String("staff_id", staffID), zap.String("date", d.String()), zap.Error(err))
			resp.Failed++
			resp.FailedDates = append(resp.FailedDates, d.String())
			continue
		}
		resp.Succeeded++
		written = append(written, d)
	}

	// 4. 读后校验
	if len(written) > 0 {
		resp.Verified, resp.Attempts = s.verify(ctx, staffID, written, working)
	}

	resp.Message = bulkMessage(resp)
	if resp.Failed > 0 || !resp.Verified {
		s.logger.Warn("批量设置未完全成功",
			zap.String("staff_id", staffID),
			zap.Int("failed", resp.Failed),
			zap.Bool("verified", resp.Verified),
			zap.Int("attempts", resp.Attempts),
		)
	}
	return resp, nil
}

// normalizeDates 校验并去重，保持原顺序
func (s *bulkService) normalizeDates(raw []string) ([]model.Date, error) {
	if len(raw) == 0 {
		return nil, ErrBulkNoDates
	}
	limit := 62
	if s.cfg != nil && s.cfg.MaxDays > 0 {
		limit = s.cfg.MaxDays
	}

	seen := make(map[model.Date]struct{}, len(raw))
	out := make([]model.Date, 0, len(raw))
	for _, r := range raw {
		d, err := parseDate(r)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	if len(out) > limit {
		return nil, ErrBulkTooManyDates
	}
	return out, nil
}

func (s *bulkService) bulkRange() (model.Clock, model.Clock) {
	start, end := model.Clock("09:00"), model.Clock("22:00")
	if s.cfg != nil {
		if c, err := model.ParseClock(s.cfg.BulkStart); err == nil {
			start = c
		}
		if c, err := model.ParseClock(s.cfg.BulkEnd); err == nil {
			end = c
		}
	}
	return start, end
}

// verify 重新读取员工排班，确认至少一个目标日期已反映新状态
func (s *bulkService) verify(ctx context.Context, staffID string, targets []model.Date, working bool) (bool, int) {
	retries, step := 3, time.Second
	if s.cfg != nil {
		if s.cfg.VerifyRetries >= 0 {
			retries = s.cfg.VerifyRetries
		}
		if s.cfg.VerifyStep > 0 {
			step = s.cfg.VerifyStep
		}
	}

	want := make(map[model.Date]struct{}, len(targets))
	for _, d := range targets {
		want[d] = struct{}{}
	}

	attempts := 0
	op := func() (bool, error) {
		attempts++
		list, err := s.repo.Shift.ListByStaff(ctx, staffID)
		if err != nil {
			return false, err
		}
		for _, sh := range list {
			if _, ok := want[sh.Date]; ok && sh.IsWorking == working {
				return true, nil
			}
		}
		return false, errNotVisible
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(&steppedBackOff{step: step, max: retries}),
		backoff.WithMaxTries(uint(retries+1)),
	)
	if err != nil {
		s.logger.Warn("批量写入校验未通过",
			zap.String("staff_id", staffID), zap.Int("attempts", attempts), zap.Error(err))
		return false, attempts
	}
	return true, attempts
}

func bulkMessage(r *dto.BulkSetResponse) string {
	var msg string
	if r.Failed == 0 {
		msg = fmt.Sprintf("已更新 %d 天", r.Succeeded)
	} else {
		msg = fmt.Sprintf("%d 天中有 %d 天更新失败", r.Total, r.Failed)
	}
	if r.Succeeded > 0 && !r.Verified {
		msg += "，结果尚未同步，请稍后刷新页面确认"
	}
	return msg
}
