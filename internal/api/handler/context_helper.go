package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/KamineHiro/shift-maker/internal/api/middleware"
	"github.com/KamineHiro/shift-maker/internal/service"
	"github.com/KamineHiro/shift-maker/pkg/response"
	"github.com/KamineHiro/shift-maker/pkg/validator"
)

// MustGetGroupID 从 Gin 上下文中安全提取会话所属小组。
// GroupAuth 未注入时写入 401 响应，调用方应在 ok=false 时直接 return。
func MustGetGroupID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.CtxGroupID)
	if s == "" {
		response.Unauthorized(c, 40100, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取会话角色。
func MustGetRole(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.CtxRole)
	if s == "" {
		response.Unauthorized(c, 40100, "未认证")
		return "", false
	}
	return s, true
}

// sessionToken 当前会话的 jti 与过期时间
func sessionToken(c *gin.Context) (string, time.Time) {
	var exp time.Time
	if v, ok := c.Get(middleware.CtxTokenExp); ok {
		exp, _ = v.(time.Time)
	}
	return c.GetString(middleware.CtxTokenJTI), exp
}

// staffIDParam 读取并校验路径中的员工 ID，格式错误时直接返回 400
func staffIDParam(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		response.BadRequest(c, 40001, service.ErrInvalidStaffID.Message)
		return "", false
	}
	return id, true
}

// sameGroup 请求中显式给出的 group_id 必须与会话一致
func sameGroup(c *gin.Context, sessionGroup, requested string) bool {
	if requested != "" && requested != sessionGroup {
		response.Forbidden(c, 40301, "无权访问其他小组")
		return false
	}
	return true
}

// bindJSON 绑定请求体；超出大小限制时交给 BodyLimit 中间件输出 413
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(err)
			return false
		}
		response.BadRequest(c, 40000, validator.Message(err))
		return false
	}
	return true
}

// fail 输出业务错误，并记入 c.Errors 供请求日志使用
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	response.FromError(c, err)
}
