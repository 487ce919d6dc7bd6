package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/KamineHiro/shift-maker/config"
	"github.com/KamineHiro/shift-maker/internal/repository"
	"github.com/KamineHiro/shift-maker/pkg/jwt"
	"github.com/KamineHiro/shift-maker/pkg/storage"
)

// Cache 小组排班窗口等短期数据缓存，不可用时传 nil
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// TokenRevoker 会话吊销，不可用时传 nil
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// Deps 可选的外部依赖
type Deps struct {
	Cache   Cache
	Revoker TokenRevoker
	Storage storage.Storage
}

// Service 所有 Service 的聚合入口
type Service struct {
	Group        GroupService
	Staff        StaffService
	Shift        ShiftService
	Bulk         BulkService
	Confirmation ConfirmationService
	Period       PeriodService
	Export       ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	deps Deps,
	logger *zap.Logger,
) *Service {
	confirmation := NewConfirmationService(repo, logger)
	shift := NewShiftService(&cfg.Shift, repo, deps.Cache, logger)
	export := NewExportService(repo, shift, logger)

	return &Service{
		Group:        NewGroupService(repo, jwtMgr, deps.Revoker, logger),
		Staff:        NewStaffService(repo, confirmation, logger),
		Shift:        shift,
		Bulk:         NewBulkService(&cfg.Shift, repo, logger),
		Confirmation: confirmation,
		Period:       NewPeriodService(repo, shift, export, deps.Storage, logger),
		Export:       export,
	}
}
