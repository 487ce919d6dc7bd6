package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/KamineHiro/shift-maker/internal/dto"
	"github.com/KamineHiro/shift-maker/internal/repository"
	apperrors "github.com/KamineHiro/shift-maker/pkg/errors"
)

// ConfirmationService 员工排班确认状态
//
// 确认只是提示性标记，不阻止员工或管理员继续修改排班。
// 读取始终以存储为准；进程内缓存只记录最近一次结果，存储不可用时兜底。
type ConfirmationService interface {
	Confirm(ctx context.Context, groupID, staffID string) (*dto.ConfirmationResponse, error)
	Unconfirm(ctx context.Context, groupID, staffID string) (*dto.ConfirmationResponse, error)
	Get(ctx context.Context, groupID, staffID string) (*dto.ConfirmationResponse, error)
	// Forget 移除缓存项（员工删除时调用）
	Forget(groupID, staffID string)
}

type confirmationService struct {
	repo   *repository.Repository
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]dto.ConfirmationResponse
}

// NewConfirmationService 创建 ConfirmationService 实例
func NewConfirmationService(repo *repository.Repository, logger *zap.Logger) ConfirmationService {
	return &confirmationService{
		repo:   repo,
		logger: logger,
		cache:  make(map[string]dto.ConfirmationResponse),
	}
}

func confirmationKey(groupID, staffID string) string {
	return groupID + ":" + staffID
}

func (s *confirmationService) Confirm(ctx context.Context, groupID, staffID string) (*dto.ConfirmationResponse, error) {
	return s.set(ctx, groupID, staffID, true)
}

func (s *confirmationService) Unconfirm(ctx context.Context, groupID, staffID string) (*dto.ConfirmationResponse, error) {
	return s.set(ctx, groupID, staffID, false)
}

// set 两个方向都是幂等的：重复确认同样返回成功
func (s *confirmationService) set(ctx context.Context, groupID, staffID string, confirmed bool) (*dto.ConfirmationResponse, error) {
	if err := validStaffID(staffID); err != nil {
		return nil, err
	}

	if err := s.repo.Staff.SetConfirmed(ctx, groupID, staffID, confirmed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.Forget(groupID, staffID)
			return nil, ErrStaffNotFound
		}
		s.logger.Error("更新确认状态失败",
			zap.String("staff_id", staffID), zap.Bool("confirmed", confirmed), zap.Error(err))
		return nil, apperrors.Store(err)
	}

	resp := dto.ConfirmationResponse{StaffID: staffID, IsConfirmed: confirmed}
	if confirmed {
		resp.ConfirmedAt = formatTimePtr(ptrTime(time.Now()))
	}

	s.mu.Lock()
	s.cache[confirmationKey(groupID, staffID)] = resp
	s.mu.Unlock()

	return &resp, nil
}

// Get 以存储为准；存储不可用时才退回本进程最近一次的结果
func (s *confirmationService) Get(ctx context.Context, groupID, staffID string) (*dto.ConfirmationResponse, error) {
	if err := validStaffID(staffID); err != nil {
		return nil, err
	}

	key := confirmationKey(groupID, staffID)
	staff, err := lookupStaff(ctx, s.repo, s.logger, groupID, staffID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindStore {
			s.mu.RLock()
			cached, ok := s.cache[key]
			s.mu.RUnlock()
			if ok {
				s.logger.Warn("确认状态读取失败，使用缓存",
					zap.String("staff_id", staffID), zap.Error(err))
				return &cached, nil
			}
		}
		if errors.Is(err, ErrStaffNotFound) {
			s.Forget(groupID, staffID)
		}
		return nil, err
	}

	resp := dto.ConfirmationResponse{
		StaffID:     staff.StaffID,
		IsConfirmed: staff.IsShiftConfirmed,
		ConfirmedAt: formatTimePtr(staff.ConfirmedAt),
	}

	s.mu.Lock()
	s.cache[key] = resp
	s.mu.Unlock()

	return &resp, nil
}

func (s *confirmationService) Forget(groupID, staffID string) {
	s.mu.Lock()
	delete(s.cache, confirmationKey(groupID, staffID))
	s.mu.Unlock()
}

func ptrTime(t time.Time) *time.Time { return &t }
