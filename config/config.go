package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	Shift     ShiftConfig     `mapstructure:"shift"`
	Cleanup   CleanupConfig   `mapstructure:"cleanup"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	BaseURL        string        `mapstructure:"base_url"`
	CORS           CORSConfig    `mapstructure:"cors"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	BodyLimit      int64         `mapstructure:"body_limit"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 会话 Token 配置
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ShiftConfig 排班业务参数
type ShiftConfig struct {
	DefaultDays   int           `mapstructure:"default_days"`
	MaxDays       int           `mapstructure:"max_days"`
	RetentionDays int           `mapstructure:"retention_days"`
	BulkStart     string        `mapstructure:"bulk_start"`
	BulkEnd       string        `mapstructure:"bulk_end"`
	VerifyRetries int           `mapstructure:"verify_retries"`
	VerifyStep    time.Duration `mapstructure:"verify_step"`
}

// CleanupConfig 旧排班数据定时清理
type CleanupConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Schedule     string        `mapstructure:"schedule"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
}

// StorageConfig 归档快照存储配置
type StorageConfig struct {
	Type      string   `mapstructure:"type"` // local | s3
	LocalPath string   `mapstructure:"local_path"`
	S3        S3Config `mapstructure:"s3"`
}

// S3Config S3 存储桶配置
type S3Config struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
}

// TelemetryConfig OpenTelemetry 链路追踪配置
type TelemetryConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	ServiceName   string  `mapstructure:"service_name"`
	ExporterURL   string  `mapstructure:"exporter_url"`
	SamplingRatio float64 `mapstructure:"sampling_ratio"`
}

// RateLimitConfig 访问密钥接口限流配置
type RateLimitConfig struct {
	AccessLimit  int           `mapstructure:"access_limit"`
	AccessWindow time.Duration `mapstructure:"access_window"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("SHIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.request_timeout", "15s")
	v.SetDefault("server.body_limit", 5<<20)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "shift_maker")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Tokyo")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// 未设置默认值的键不会被 AutomaticEnv 填充
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.session_ttl", "720h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("shift.default_days", 14)
	v.SetDefault("shift.max_days", 62)
	v.SetDefault("shift.retention_days", 42)
	v.SetDefault("shift.bulk_start", "09:00")
	v.SetDefault("shift.bulk_end", "22:00")
	v.SetDefault("shift.verify_retries", 3)
	v.SetDefault("shift.verify_step", "1s")

	v.SetDefault("cleanup.enabled", true)
	v.SetDefault("cleanup.schedule", "@every 24h")
	v.SetDefault("cleanup.initial_delay", "10m")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./snapshots")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.region", "")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "shift-maker")
	v.SetDefault("telemetry.exporter_url", "")
	v.SetDefault("telemetry.sampling_ratio", 1.0)

	v.SetDefault("rate_limit.access_limit", 20)
	v.SetDefault("rate_limit.access_window", "1m")
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("配置校验失败: server.request_timeout 必须大于 0")
	}
	if c.Shift.RetentionDays <= 0 {
		return fmt.Errorf("配置校验失败: shift.retention_days 必须大于 0")
	}
	if c.Shift.MaxDays <= 0 || c.Shift.DefaultDays <= 0 || c.Shift.DefaultDays > c.Shift.MaxDays {
		return fmt.Errorf("配置校验失败: shift.default_days 必须在 1-%d 之间", c.Shift.MaxDays)
	}
	switch c.Storage.Type {
	case "local", "s3":
	default:
		return fmt.Errorf("配置校验失败: 未知的 storage.type %q", c.Storage.Type)
	}
	return nil
}
