package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KamineHiro/shift-maker/pkg/jwt"
	"github.com/KamineHiro/shift-maker/pkg/response"
)

// 会话上下文键
const (
	CtxGroupID  = "group_id"
	CtxRole     = "role"
	CtxTokenJTI = "token_jti"
	CtxTokenExp = "token_exp"
)

// SessionChecker 会话吊销查询
type SessionChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// GroupAuth 小组会话认证中间件
// 从 Authorization: Bearer <token> 中提取会话，校验签名、有效期与吊销状态
// checker 为 nil 时跳过吊销检查
func GroupAuth(jwtMgr *jwt.Manager, checker SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 40100, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 40100, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			msg := "会话无效"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "会话已过期，请重新输入密钥"
			}
			response.Unauthorized(c, 40101, msg)
			c.Abort()
			return
		}

		if checker != nil && claims.ID != "" {
			revoked, err := checker.IsBlacklisted(c.Request.Context(), claims.ID)
			// Redis 出错时降级放行
			if err == nil && revoked {
				response.Unauthorized(c, 40102, "会话已退出")
				c.Abort()
				return
			}
		}

		c.Set(CtxGroupID, claims.GroupID)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxTokenJTI, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(CtxTokenExp, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前会话是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(CtxRole)
		if !exists {
			response.Unauthorized(c, 40100, "未认证")
			c.Abort()
			return
		}

		sessionRole, _ := role.(string)
		for _, r := range allowedRoles {
			if sessionRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 40300, "需要管理权限")
		c.Abort()
	}
}
