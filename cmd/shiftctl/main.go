package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/KamineHiro/shift-maker/config"
	"github.com/KamineHiro/shift-maker/internal/repository"
	"github.com/KamineHiro/shift-maker/internal/service"
	"github.com/KamineHiro/shift-maker/pkg/database"
	"github.com/KamineHiro/shift-maker/pkg/jwt"
	applogger "github.com/KamineHiro/shift-maker/pkg/logger"
)

// app 命令共享的依赖
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	svc    *service.Service
}

func main() {
	var (
		configPath string
		a          = &app{}
	)

	rootCmd := &cobra.Command{
		Use:           "shiftctl",
		Short:         "shift-maker 运维命令行",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(configPath)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径")

	rootCmd.AddCommand(migrateCmd(a))
	rootCmd.AddCommand(cleanupCmd(a))
	rootCmd.AddCommand(createGroupCmd(a))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}

// init 加载配置、日志并连接数据库；命令行不依赖 Redis 与快照存储
func (a *app) init(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := applogger.New(&cfg.Log, "shiftctl")
	if err != nil {
		return err
	}
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level == "debug", logger)
	if err != nil {
		return err
	}

	a.cfg, a.logger, a.db = cfg, logger, db
	a.svc = service.NewService(cfg, repository.NewRepository(db), jwt.NewManager(&cfg.Auth), service.Deps{}, logger)
	return nil
}

func (a *app) close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
