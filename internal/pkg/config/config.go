package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Matching MatchingConfig `mapstructure:"matching"`
	Enrich   EnrichConfig   `mapstructure:"enrich"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// MatchingConfig 动作名匹配阈值
type MatchingConfig struct {
	ResolveThreshold float64 `mapstructure:"resolve_threshold"`
	SuggestThreshold float64 `mapstructure:"suggest_threshold"`
	SuggestLimit     int     `mapstructure:"suggest_limit"`
}

// EnrichConfig 外部动作数据源配置
type EnrichConfig struct {
	NinjasAPIKey   string `mapstructure:"ninjas_api_key"`
	NinjasBaseURL  string `mapstructure:"ninjas_base_url"`
	YouTubeAPIKey  string `mapstructure:"youtube_api_key"`
	YouTubeBaseURL string `mapstructure:"youtube_base_url"`
	TimeoutSec     int    `mapstructure:"timeout_sec"`
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 默认查找路径
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 支持环境变量
	v.SetEnvPrefix("GYMRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("配置文件未找到，使用默认配置")
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 处理环境变量占位符
	cfg.Enrich.NinjasAPIKey = expandEnv(cfg.Enrich.NinjasAPIKey)
	cfg.Enrich.YouTubeAPIKey = expandEnv(cfg.Enrich.YouTubeAPIKey)

	// 处理相对路径
	cfg.Storage.DBPath = resolvePath(cfg.Storage.DBPath)

	return &cfg, nil
}

// Default 默认配置（未读任何文件）
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// 默认值解析失败属于编程错误
		panic(fmt.Sprintf("解析默认配置失败: %v", err))
	}
	return &cfg
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "gymrack")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")

	// Server
	v.SetDefault("server.listen_addr", "127.0.0.1:4000")

	// Storage
	v.SetDefault("storage.db_path", "./data/gymrack.db")

	// Matching
	v.SetDefault("matching.resolve_threshold", 0.7)
	v.SetDefault("matching.suggest_threshold", 0.5)
	v.SetDefault("matching.suggest_limit", 5)

	// Enrich
	v.SetDefault("enrich.ninjas_api_key", "${API_NINJAS_KEY}")
	v.SetDefault("enrich.ninjas_base_url", "https://api.api-ninjas.com")
	v.SetDefault("enrich.youtube_api_key", "${YOUTUBE_API_KEY}")
	v.SetDefault("enrich.youtube_base_url", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("enrich.timeout_sec", 15)
}

// expandEnv 展开环境变量占位符 ${VAR}
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envVar := s[2 : len(s)-1]
		return os.Getenv(envVar)
	}
	return s
}

// resolvePath 解析相对路径为绝对路径
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	// 获取可执行文件目录
	exe, err := os.Executable()
	if err != nil {
		return path
	}

	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, path)
}

// SetupLogger 根据配置设置日志级别
func SetupLogger(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
