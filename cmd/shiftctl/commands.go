package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KamineHiro/shift-maker/internal/dto"
	"github.com/KamineHiro/shift-maker/pkg/database"
)

func migrateCmd(a *app) *cobra.Command {
	var down int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移（--down N 回滚 N 步）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			if down > 0 {
				if err := database.RollbackMigrations(sqlDB, down, a.logger); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "已回滚 %d 步\n", down)
				return nil
			}
			if err := database.RunMigrations(sqlDB, a.logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "迁移完成")
			return nil
		},
	}
	cmd.Flags().IntVar(&down, "down", 0, "回滚步数")
	return cmd
}

func cleanupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "删除保留期之前的全部排班",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.svc.Shift.CleanupOldShifts(cmd.Context())
			if err != nil {
				return fmt.Errorf("清理失败: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已删除 %d 条早于 %s 的排班\n", result.Deleted, result.Cutoff)
			return nil
		},
	}
}

func createGroupCmd(a *app) *cobra.Command {
	var name, password string

	cmd := &cobra.Command{
		Use:   "create-group",
		Short: "创建小组并输出访问密钥与管理密钥",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.svc.Group.Create(cmd.Context(), &dto.CreateGroupRequest{Name: name, AdminPassword: password})
			if err != nil {
				return fmt.Errorf("创建小组失败: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "小组:     %s (%s)\n", resp.Group.Name, resp.Group.ID)
			fmt.Fprintf(out, "访问密钥: %s\n", resp.AccessKey)
			fmt.Fprintf(out, "管理密钥: %s\n", resp.AdminKey)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "小组名称")
	cmd.Flags().StringVar(&password, "password", "", "管理密码（至少 4 位）")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
