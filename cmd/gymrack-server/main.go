package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yuqie6/GymRack/internal/enrich"
	"github.com/yuqie6/GymRack/internal/eventbus"
	"github.com/yuqie6/GymRack/internal/httpapi"
	"github.com/yuqie6/GymRack/internal/pkg/buildinfo"
	"github.com/yuqie6/GymRack/internal/pkg/config"
	"github.com/yuqie6/GymRack/internal/repository"
	"github.com/yuqie6/GymRack/internal/service"
)

func main() {
	var cfgFile string
	flag.StringVar(&cfgFile, "config", "", "配置文件路径")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 首次启动写出默认配置，便于用户修改
	cfgPath := cfgFile
	if cfgPath == "" {
		if p, err := config.DefaultConfigPath(); err == nil {
			cfgPath = p
			if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
				_ = config.WriteFile(p, config.Default())
			}
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("加载配置失败", "error", err)
		os.Exit(1)
	}
	config.SetupLogger(cfg.App.LogLevel)

	slog.Info("GymRack 启动中...",
		"name", cfg.App.Name,
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
	)

	db, err := repository.NewDatabase(cfg.Storage.DBPath)
	if err != nil {
		slog.Error("初始化数据库失败", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logRepo := repository.NewWorkoutLogRepository(db.DB)
	workoutRepo := repository.NewWorkoutRepository(db.DB)
	exerciseRepo := repository.NewExerciseRepository(db.DB)

	hub := eventbus.NewHub()
	records := service.NewRecordService(logRepo, hub, service.RecordServiceOptions{
		ResolveThreshold: cfg.Matching.ResolveThreshold,
		SuggestThreshold: cfg.Matching.SuggestThreshold,
		SuggestLimit:     cfg.Matching.SuggestLimit,
	})

	timeout := time.Duration(cfg.Enrich.TimeoutSec) * time.Second
	ninjas := enrich.NewNinjasClient(&enrich.NinjasConfig{
		APIKey:  cfg.Enrich.NinjasAPIKey,
		BaseURL: cfg.Enrich.NinjasBaseURL,
		Timeout: timeout,
	})
	youtube := enrich.NewYouTubeClient(&enrich.YouTubeConfig{
		APIKey:  cfg.Enrich.YouTubeAPIKey,
		BaseURL: cfg.Enrich.YouTubeBaseURL,
		Timeout: timeout,
	})

	api := httpapi.NewAPI(httpapi.Deps{
		Cfg:       cfg,
		CfgPath:   cfgPath,
		DB:        db,
		Hub:       hub,
		Records:   records,
		LogRepo:   logRepo,
		Workouts:  workoutRepo,
		Exercises: exerciseRepo,
		Ninjas:    ninjas,
		Enricher:  enrich.NewEnricher(youtube),
	})

	server, err := httpapi.Start(ctx, api, httpapi.Options{ListenAddr: cfg.Server.ListenAddr})
	if err != nil {
		slog.Error("启动 HTTP 服务失败", "error", err)
		os.Exit(1)
	}
	slog.Info("GymRack 已启动", "base_url", server.BaseURL())

	// 监听系统信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("收到系统退出信号")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("关闭 HTTP 服务失败", "error", err)
	}
}
