package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/KamineHiro/shift-maker/config"
	_ "github.com/KamineHiro/shift-maker/docs"
	"github.com/KamineHiro/shift-maker/internal/api/handler"
	"github.com/KamineHiro/shift-maker/internal/api/router"
	"github.com/KamineHiro/shift-maker/internal/cron"
	"github.com/KamineHiro/shift-maker/internal/repository"
	"github.com/KamineHiro/shift-maker/internal/service"
	"github.com/KamineHiro/shift-maker/pkg/database"
	"github.com/KamineHiro/shift-maker/pkg/jwt"
	applogger "github.com/KamineHiro/shift-maker/pkg/logger"
	"github.com/KamineHiro/shift-maker/pkg/redis"
	"github.com/KamineHiro/shift-maker/pkg/storage"
	"github.com/KamineHiro/shift-maker/pkg/telemetry"
	"github.com/KamineHiro/shift-maker/pkg/validator"
)

// @title                      shift-maker API
// @version                    1.0
// @description                小组排班：员工按日填写出勤时间，管理员查看排班表与午/晚市人数
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.New(&cfg.Log, cfg.Telemetry.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	ctx := context.Background()

	// 3. 链路追踪（未启用时为 noop）
	tel, err := telemetry.New(ctx, cfg.Telemetry, logger)
	if err != nil {
		logger.Fatal("初始化链路追踪失败", zap.Error(err))
	}

	// 4. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level == "debug", logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 5. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，会话吊销、限流与窗口缓存将不可用", zap.Error(err))
		rdb = nil
	}

	// 6. 快照存储
	store, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		logger.Warn("快照存储初始化失败，归档将不保存快照", zap.Error(err))
		store = nil
	}

	// 7. 请求参数校验规则
	if err := validator.Register(); err != nil {
		logger.Fatal("注册校验规则失败", zap.Error(err))
	}

	// 8. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)

	deps := service.Deps{Storage: store}
	var redisPing handler.Pinger
	if rdb != nil {
		deps.Cache = rdb
		deps.Revoker = rdb
		redisPing = rdb
	}
	svc := service.NewService(cfg, repo, jwtMgr, deps, logger)

	health := handler.NewHealthHandler(handler.PingFunc(sqlDB.PingContext), redisPing)
	h := handler.NewHandler(svc, health)

	// 9. 定时清理
	scheduler := cron.New(cfg.Cleanup, svc.Shift, logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal("启动定时清理失败", zap.Error(err))
	}

	// 10. 初始化路由并启动 HTTP 服务器（优雅关闭）
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 11. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	scheduler.Stop(shutdownCtx)

	if err := tel.Shutdown(shutdownCtx); err != nil {
		logger.Error("关闭链路追踪失败", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("关闭数据库连接失败", zap.Error(err))
	}

	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("服务器已关闭")
}
