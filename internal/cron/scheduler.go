package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/KamineHiro/shift-maker/config"
	"github.com/KamineHiro/shift-maker/internal/dto"
)

// Cleaner 旧排班清理
type Cleaner interface {
	CleanupOldShifts(ctx context.Context) (*dto.CleanupResponse, error)
}

// jobTimeout 单次清理的最长执行时间
const jobTimeout = 2 * time.Minute

// Scheduler 定时清理旧排班
// 启动后等待 initial_delay 执行一次，之后按 schedule 周期执行
type Scheduler struct {
	cfg     config.CleanupConfig
	cleaner Cleaner
	logger  *zap.Logger
	cron    *cron.Cron

	mu    sync.Mutex
	timer *time.Timer
}

// New 创建定时任务调度器
func New(cfg config.CleanupConfig, cleaner Cleaner, logger *zap.Logger) *Scheduler {
	l := cronLogger{logger.Sugar()}
	return &Scheduler{
		cfg:     cfg,
		cleaner: cleaner,
		logger:  logger,
		cron: cron.New(cron.WithChain(
			cron.Recover(l),
			cron.SkipIfStillRunning(l),
		)),
	}
}

// Start 注册清理任务并启动；未启用时直接返回
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("定时清理未启用")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.RunOnce); err != nil {
		return fmt.Errorf("无效的清理周期 %q: %w", s.cfg.Schedule, err)
	}

	s.mu.Lock()
	s.timer = time.AfterFunc(s.cfg.InitialDelay, func() {
		s.RunOnce()
		s.cron.Start()
	})
	s.mu.Unlock()

	s.logger.Info("定时清理已注册",
		zap.String("schedule", s.cfg.Schedule),
		zap.Duration("initial_delay", s.cfg.InitialDelay),
	)
	return nil
}

// RunOnce 执行一次清理，错误只记录日志
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.cleaner.CleanupOldShifts(ctx)
	if err != nil {
		s.logger.Error("定时清理失败", zap.Error(err))
		return
	}
	s.logger.Info("定时清理完成",
		zap.Int64("deleted", result.Deleted),
		zap.String("cutoff", result.Cutoff),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// Stop 取消尚未触发的首次执行，并等待运行中的任务结束
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("等待定时任务结束超时")
	}
}

// cronLogger 将 cron 内部日志转到 zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
