package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/KamineHiro/shift-maker/internal/dto"
	"github.com/KamineHiro/shift-maker/internal/model"
	"github.com/KamineHiro/shift-maker/internal/repository"
	apperrors "github.com/KamineHiro/shift-maker/pkg/errors"
	"github.com/KamineHiro/shift-maker/pkg/jwt"
)

const (
	keyLength   = 8
	keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	keyAttempts = 5
)

// GroupService 小组与会话业务接口
//
// 访问密钥换取员工级会话，管理密钥换取管理级会话；
// 会话以 JWT 形式下发，离开小组时吊销。密钥创建后不过期、不轮换。
type GroupService interface {
	Create(ctx context.Context, req *dto.CreateGroupRequest) (*dto.CreateGroupResponse, error)
	ResolveAccessKey(ctx context.Context, key string) (*dto.SessionResponse, error)
	ResolveAdminKey(ctx context.Context, key string) (*dto.SessionResponse, error)
	VerifyAdminPassword(ctx context.Context, groupID, password string) (bool, error)
	Current(ctx context.Context, groupID, role string, expiresAt time.Time) (*dto.SessionResponse, error)
	Leave(ctx context.Context, jti string, expiresAt time.Time) error
}

type groupService struct {
	repo    *repository.Repository
	jwtMgr  *jwt.Manager
	revoker TokenRevoker
	logger  *zap.Logger
}

// NewGroupService 创建 GroupService 实例
func NewGroupService(repo *repository.Repository, jwtMgr *jwt.Manager, revoker TokenRevoker, logger *zap.Logger) GroupService {
	return &groupService{repo: repo, jwtMgr: jwtMgr, revoker: revoker, logger: logger}
}

// generateKey 生成 8 位字母数字随机密钥
func generateKey() (string, error) {
	var sb strings.Builder
	sb.Grow(keyLength)
	max := big.NewInt(int64(len(keyAlphabet)))
	for i := 0; i < keyLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(keyAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// ────────────────────── Create ──────────────────────

func (s *groupService) Create(ctx context.Context, req *dto.CreateGroupRequest) (*dto.CreateGroupResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if len(req.AdminPassword) < 4 {
		return nil, apperrors.Validation("管理密码至少 4 位")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("生成密码哈希失败", zap.Error(err))
		return nil, apperrors.Store(err)
	}

	// 密钥冲突时重新生成
	var group *model.Group
	for attempt := 0; attempt < keyAttempts; attempt++ {
		accessKey, err := generateKey()
		if err != nil {
			return nil, apperrors.Store(err)
		}
		adminKey, err := generateKey()
		if err != nil {
			return nil, apperrors.Store(err)
		}
		if accessKey == adminKey {
			continue
		}

		candidate := &model.Group{
			Name:              name,
			AccessKey:         accessKey,
			AdminKey:          adminKey,
			AdminPasswordHash: string(hash),
		}
		err = s.repo.Group.Create(ctx, candidate)
		if err == nil {
			group = candidate
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Error("创建小组失败", zap.Error(err))
			return nil, apperrors.Store(err)
		}
		s.logger.Warn("小组密钥冲突，重新生成", zap.Int("attempt", attempt+1))
	}
	if group == nil {
		return nil, apperrors.Conflict("生成唯一密钥失败，请重试")
	}

	session, err := s.issue(group, jwt.RoleAdmin)
	if err != nil {
		return nil, err
	}

	s.logger.Info("小组已创建", zap.String("group_id", group.GroupID))
	return &dto.CreateGroupResponse{
		Group:     toGroupResponse(group),
		AccessKey: group.AccessKey,
		AdminKey:  group.AdminKey,
		Session:   *session,
	}, nil
}

// ────────────────────── Resolve ──────────────────────

func (s *groupService) ResolveAccessKey(ctx context.Context, key string) (*dto.SessionResponse, error) {
	return s.resolve(ctx, key, s.repo.Group.GetByAccessKey, jwt.RoleStaff)
}

func (s *groupService) ResolveAdminKey(ctx context.Context, key string) (*dto.SessionResponse, error) {
	return s.resolve(ctx, key, s.repo.Group.GetByAdminKey, jwt.RoleAdmin)
}

func (s *groupService) resolve(
	ctx context.Context,
	key string,
	lookup func(context.Context, string) (*model.Group, error),
	role string,
) (*dto.SessionResponse, error) {
	key = strings.TrimSpace(key)
	if len(key) != keyLength {
		return nil, ErrInvalidKey
	}

	group, err := lookup(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidKey
		}
		s.logger.Error("解析密钥失败", zap.String("role", role), zap.Error(err))
		return nil, apperrors.Store(err)
	}
	return s.issue(group, role)
}

func (s *groupService) issue(group *model.Group, role string) (*dto.SessionResponse, error) {
	token, claims, err := s.jwtMgr.GenerateSessionToken(group.GroupID, role)
	if err != nil {
		s.logger.Error("签发会话失败", zap.String("group_id", group.GroupID), zap.Error(err))
		return nil, apperrors.Store(err)
	}
	return &dto.SessionResponse{
		Token:     token,
		Role:      role,
		ExpiresAt: formatTime(claims.ExpiresAt.Time),
		Group:     toGroupResponse(group),
	}, nil
}

// ────────────────────── VerifyAdminPassword ──────────────────────

func (s *groupService) VerifyAdminPassword(ctx context.Context, groupID, password string) (bool, error) {
	group, err := s.repo.Group.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrGroupNotFound
		}
		s.logger.Error("查询小组失败", zap.String("group_id", groupID), zap.Error(err))
		return false, apperrors.Store(err)
	}
	err = bcrypt.CompareHashAndPassword([]byte(group.AdminPasswordHash), []byte(password))
	return err == nil, nil
}

// ────────────────────── Current / Leave ──────────────────────

func (s *groupService) Current(ctx context.Context, groupID, role string, expiresAt time.Time) (*dto.SessionResponse, error) {
	group, err := s.repo.Group.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询小组失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, apperrors.Store(err)
	}
	return &dto.SessionResponse{
		Role:      role,
		ExpiresAt: formatTime(expiresAt),
		Group:     toGroupResponse(group),
	}, nil
}

// Leave 吊销当前会话；吊销存储不可用时降级为仅由客户端丢弃 Token
func (s *groupService) Leave(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.revoker == nil || jti == "" {
		return nil
	}
	if err := s.revoker.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Warn("吊销会话失败", zap.String("jti", jti), zap.Error(err))
	}
	return nil
}
