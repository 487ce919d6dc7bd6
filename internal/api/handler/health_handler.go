package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KamineHiro/shift-maker/internal/dto"
)

// Pinger 依赖健康检查
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc 适配函数为 Pinger
type PingFunc func(ctx context.Context) error

// Ping 实现 Pinger
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler 存活与依赖检查
type HealthHandler struct {
	db    Pinger
	redis Pinger
}

// NewHealthHandler redis 未启用时传 nil
func NewHealthHandler(db, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Health 数据库不可用时返回 503；Redis 只影响降级状态
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	resp := dto.HealthResponse{Status: "ok", Database: "ok"}
	status := http.StatusOK

	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			resp.Status = "unavailable"
			resp.Database = "down"
			status = http.StatusServiceUnavailable
		}
	}

	if h.redis == nil {
		resp.Redis = "disabled"
	} else if err := h.redis.Ping(c.Request.Context()); err != nil {
		resp.Redis = "down"
		if resp.Status == "ok" {
			resp.Status = "degraded"
		}
	} else {
		resp.Redis = "ok"
	}

	c.JSON(status, resp)
}
