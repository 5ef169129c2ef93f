package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/yuqie6/GymRack/internal/importer"
	"github.com/yuqie6/GymRack/internal/pkg/buildinfo"
	"github.com/yuqie6/GymRack/internal/pkg/config"
	"github.com/yuqie6/GymRack/internal/repository"
)

var (
	cfgFile string
	cfg     *config.Config
	db      *repository.Database
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "gymrack",
		Short:   "GymRack - 健身记录后端的命令行工具",
		Long:    `GymRack CLI：导入动作库 CSV、查看训练记录与个人最佳。`,
		Version: buildinfo.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// 加载配置
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				slog.Error("加载配置失败", "error", err)
				os.Exit(1)
			}
			config.SetupLogger(cfg.App.LogLevel)

			// 初始化数据库
			db, err = repository.NewDatabase(cfg.Storage.DBPath)
			if err != nil {
				slog.Error("初始化数据库失败", "error", err)
				os.Exit(1)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if db != nil {
				db.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")

	// 添加子命令
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(logsCmd())
	rootCmd.AddCommand(prsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// importCmd 导入动作库 CSV
func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <csv 文件>",
		Short: "导入动作库 CSV（归一化属性行格式）",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			repo := repository.NewExerciseRepository(db.DB)
			im := importer.New(repo)

			summary, err := im.ImportFile(ctx, args[0])
			if err != nil {
				fmt.Printf("❌ 导入失败: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("📊 解析到 %d 个动作\n", summary.Parsed)
			fmt.Printf("✅ 新增 %d 个\n", summary.Inserted)
			if summary.Updated > 0 {
				fmt.Printf("🔄 更新 %d 个\n", summary.Updated)
			}
			if summary.Skipped > 0 {
				fmt.Printf("⚠️  跳过 %d 个\n", summary.Skipped)
			}
		},
	}
}

// logsCmd 查看最近的训练记录
func logsCmd() *cobra.Command {
	var userID int64
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "查看最近的训练记录",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			repo := repository.NewWorkoutLogRepository(db.DB)
			logs, err := repo.List(ctx, userID, limit)
			if err != nil {
				fmt.Printf("❌ 查询失败: %v\n", err)
				os.Exit(1)
			}

			if len(logs) == 0 {
				fmt.Println("暂无训练记录")
				return
			}
			for _, l := range logs {
				marker := "  "
				if l.IsPR {
					marker = "🏆"
				}
				fmt.Printf("%s %s  %s  %.1f x %d\n", marker, l.Date, l.ExerciseName, l.Weight, l.Reps)
			}
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 1, "用户 ID")
	cmd.Flags().IntVar(&limit, "limit", 20, "返回条数")
	return cmd
}

// prsCmd 查看各动作的个人最佳
func prsCmd() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "prs",
		Short: "查看各动作的当前个人最佳记录",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			repo := repository.NewWorkoutLogRepository(db.DB)
			records, err := repo.CurrentRecords(ctx, userID)
			if err != nil {
				fmt.Printf("❌ 查询失败: %v\n", err)
				os.Exit(1)
			}

			if len(records) == 0 {
				fmt.Println("暂无个人最佳记录")
				return
			}
			for _, r := range records {
				fmt.Printf("🏆 %-30s %.1f x %d（%s）\n", r.ExerciseName, r.Weight, r.Reps, r.Date)
			}
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 1, "用户 ID")
	return cmd
}
