package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/KamineHiro/shift-maker/config"
	"github.com/KamineHiro/shift-maker/internal/api/handler"
	"github.com/KamineHiro/shift-maker/internal/api/middleware"
	"github.com/KamineHiro/shift-maker/pkg/jwt"
	"github.com/KamineHiro/shift-maker/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时会话吊销检查与限流均降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	// 避免把 nil 指针装进接口
	var (
		checker middleware.SessionChecker
		limiter middleware.Limiter
	)
	if rdb != nil {
		checker = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// ── 健康检查 / 文档 ──
	r.GET("/health", h.Health.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	admin := middleware.RoleAuth(jwt.RoleAdmin)
	keyLimit := middleware.RateLimit(limiter, cfg.RateLimit.AccessLimit, cfg.RateLimit.AccessWindow)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 小组模块（无需会话）
		groups := v1.Group("/groups")
		{
			groups.POST("", h.Group.CreateGroup)
			groups.POST("/access", keyLimit, h.Group.EnterWithAccessKey)
			groups.POST("/admin", keyLimit, h.Group.EnterWithAdminKey)
		}

		// 需要会话的路由
		authorized := v1.Group("")
		authorized.Use(middleware.GroupAuth(jwtMgr, checker))
		{
			authorized.POST("/groups/verify-password", admin, h.Group.VerifyPassword)

			// 会话
			session := authorized.Group("/session")
			{
				session.GET("", h.Group.CurrentSession)
				session.POST("/leave", h.Group.Leave)
			}

			// 员工模块
			staff := authorized.Group("/staff")
			{
				staff.GET("", h.Staff.ListStaff)
				staff.POST("", admin, h.Staff.CreateStaff)
				staff.POST("/import", admin, h.Staff.ImportStaff)
				staff.GET("/:id", h.Staff.GetStaff)
				staff.PUT("/:id", admin, h.Staff.RenameStaff)
				staff.DELETE("/:id", admin, h.Staff.DeleteStaff)
			}

			// 排班模块
			shifts := authorized.Group("/shifts")
			{
				shifts.GET("", h.Shift.GetDates)
				shifts.GET("/range", h.Shift.GetDateRange)
				shifts.PUT("/range", admin, h.Shift.SaveDateRange)
				shifts.GET("/table", admin, h.Shift.GetShiftTable)
				shifts.POST("/cleanup", admin, h.Shift.Cleanup)

				shifts.GET("/periods", admin, h.Shift.ListPeriods)
				shifts.POST("/periods", admin, h.Shift.ArchivePeriod)
				shifts.DELETE("/periods/:startDate", admin, h.Shift.DeletePeriod)
				shifts.GET("/periods/:startDate/snapshot", admin, h.Export.DownloadSnapshot)

				shifts.POST("/staff/:staffId/confirm", h.Shift.Confirm)
				shifts.POST("/staff/:staffId/unconfirm", h.Shift.Unconfirm)
				shifts.GET("/staff/:staffId/confirmation", h.Shift.GetConfirmation)

				shifts.GET("/:staffId", h.Shift.GetStaffShifts)
				shifts.POST("/:staffId/bulk", h.Shift.BulkSet)
				shifts.GET("/:staffId/:date", h.Shift.GetShift)
				shifts.PUT("/:staffId/:date", h.Shift.UpdateShift)
				shifts.DELETE("/:staffId/:date", h.Shift.DeleteShift)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/shifts", admin, h.Export.ExportShifts)
				export.GET("/staff/:staffId/calendar", h.Export.ExportStaffCalendar)
			}
		}
	}

	return r
}
