// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/haierkeys/fast-note-kb-service/internal/dao"
	"github.com/haierkeys/fast-note-kb-service/pkg/logger"
	"github.com/haierkeys/fast-note-kb-service/pkg/util"
	"github.com/haierkeys/fast-note-kb-service/pkg/workerpool"
	"github.com/haierkeys/fast-note-kb-service/pkg/writequeue"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file
const (
	EnvAuthTokenKey = "KB_AUTH_TOKEN_KEY"
	EnvDatabaseType = "KB_DATABASE_TYPE"
	EnvDatabasePath = "KB_DATABASE_PATH"
	EnvHttpPort     = "KB_HTTP_PORT"
)

// AppConfig 应用配置
type AppConfig struct {
	File       string           `yaml:"-"` // 配置文件路径，不序列化
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	App        AppSettings      `yaml:"app"`
	Security   SecurityConfig   `yaml:"security"`
	Tracer     TracerConfig     `yaml:"tracer"`
	Task       TaskConfig       `yaml:"task"`
	RateLimit  RateLimitConfig  `yaml:"rate-limit"`
	WorkerPool WorkerPoolConfig `yaml:"worker-pool"`
	WriteQueue WriteQueueConfig `yaml:"write-queue"`
	Sync       SyncConfig       `yaml:"sync"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File 日志文件路径，为空时只输出到 stderr
	File string `yaml:"file" default:"storage/logs/kb.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode debug | release | test
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 监听地址
	HttpPort string `yaml:"http-port" default:":9100"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址（metrics / pprof），为空则不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:9101"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	// AuthTokenKey HS256 签名密钥
	AuthTokenKey string `yaml:"auth-token-key" default:"fast-note-kb-Auth-Token"`
	// TokenExpiry 令牌有效期，支持 7d、24h、30m
	TokenExpiry string `yaml:"token-expiry" default:"30d"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type sqlite | mysql | postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path        string `yaml:"path" default:"storage/database/kb.sqlite3"`
	UserName    string `yaml:"username"`
	Password    string `yaml:"password"`
	Host        string `yaml:"host"`
	Name        string `yaml:"name"`
	TablePrefix string `yaml:"table-prefix"`
	AutoMigrate bool   `yaml:"auto-migrate" default:"true"`
	Charset     string `yaml:"charset"`
	ParseTime   bool   `yaml:"parse-time"`
	// Replicas 只读副本 DSN 列表，列表查询走副本
	Replicas []string `yaml:"replicas"`
	// MaxIdleConns 最大闲置连接数
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// AppSettings 应用设置
type AppSettings struct {
	// DefaultContextTimeout 请求上下文超时（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`
	// DefaultLang 默认响应语言 en | zh-cn
	DefaultLang string `yaml:"default-lang" default:"en"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否生成 trace id
	Enabled bool `yaml:"enabled" default:"true"`
	// Header 追踪 ID 请求头名称
	Header string `yaml:"header" default:"X-Trace-ID"`
	// JaegerAgent host:port of a jaeger agent, empty disables OpenTracing
	JaegerAgent string `yaml:"jaeger-agent"`
}

// TaskConfig 定时任务配置，值为 cron 表达式，为空则禁用该任务
type TaskConfig struct {
	NoteTagSweep string `yaml:"note-tag-sweep" default:"@every 1h"`
	Stats        string `yaml:"stats" default:"@every 5m"`
}

// RateLimitConfig 接口限流配置
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled" default:"true"`
	// Capacity 每个令牌桶容量
	Capacity int64 `yaml:"capacity" default:"200"`
	// Quantum 每个填充周期放入的令牌数
	Quantum int64 `yaml:"quantum" default:"100"`
	// FillInterval 填充周期
	FillInterval string `yaml:"fill-interval" default:"1s"`
}

// WorkerPoolConfig Worker Pool 配置
type WorkerPoolConfig struct {
	MaxWorkers int `yaml:"max-workers" default:"8"`
	QueueSize  int `yaml:"queue-size" default:"64"`
}

// WriteQueueConfig 写队列配置
type WriteQueueConfig struct {
	Capacity int    `yaml:"capacity" default:"100"`
	Timeout  string `yaml:"timeout" default:"30s"`
	IdleTime string `yaml:"idle-time" default:"10m"`
}

// SyncConfig 文档同步客户端配置（push 命令使用）
type SyncConfig struct {
	Debounce     string `yaml:"debounce" default:"800ms"`
	MaxRetries   int    `yaml:"max-retries" default:"3"`
	RetryBackoff string `yaml:"retry-backoff" default:"200ms"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	if err := yaml.Unmarshal(file, c); err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// .env next to the config file, then the working directory; missing files are fine
	_ = godotenv.Load(filepath.Join(filepath.Dir(realpath), ".env"))
	_ = godotenv.Load()
	c.applyEnv()

	return c, realpath, nil
}

// applyEnv 使用环境变量覆盖配置
func (c *AppConfig) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAuthTokenKey)); v != "" {
		c.Security.AuthTokenKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDatabaseType)); v != "" {
		c.Database.Type = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDatabasePath)); v != "" {
		c.Database.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvHttpPort)); v != "" {
		if !strings.Contains(v, ":") {
			v = ":" + v
		}
		c.Server.HttpPort = v
	}
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}
	if err := os.WriteFile(c.File, data, 0644); err != nil {
		return errors.Wrap(err, "write config file failed")
	}
	return nil
}

// GetLoggerConfig 获取日志配置
func (c *AppConfig) GetLoggerConfig() logger.Config {
	return logger.Config{Level: c.Log.Level, File: c.Log.File, Production: c.Log.Production}
}

// GetDatabaseConfig 获取 DAO 层数据库配置
func (c *AppConfig) GetDatabaseConfig() dao.DatabaseConfig {
	return dao.DatabaseConfig{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Name:            c.Database.Name,
		TablePrefix:     c.Database.TablePrefix,
		AutoMigrate:     c.Database.AutoMigrate,
		Charset:         c.Database.Charset,
		ParseTime:       c.Database.ParseTime,
		Replicas:        c.Database.Replicas,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
		Debug:           c.Server.RunMode == "debug",
		Tracing:         c.Tracer.JaegerAgent != "",
	}
}

// GetWorkerPoolConfig 获取 Worker Pool 配置
func (c *AppConfig) GetWorkerPoolConfig() workerpool.Config {
	cfg := workerpool.DefaultConfig()
	if c.WorkerPool.MaxWorkers > 0 {
		cfg.MaxWorkers = c.WorkerPool.MaxWorkers
	}
	if c.WorkerPool.QueueSize > 0 {
		cfg.QueueSize = c.WorkerPool.QueueSize
	}
	return cfg
}

// GetWriteQueueConfig 获取 Write Queue 配置
// SQLite 只允许一个写者，所有用户共用一条队列
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()
	if c.WriteQueue.Capacity > 0 {
		cfg.QueueCapacity = c.WriteQueue.Capacity
	}
	cfg.WriteTimeout = util.DurationOr(c.WriteQueue.Timeout, cfg.WriteTimeout)
	cfg.IdleTimeout = util.DurationOr(c.WriteQueue.IdleTime, cfg.IdleTimeout)
	cfg.Shared = c.Database.Type == "" || c.Database.Type == "sqlite"
	return cfg
}

// GetTokenExpiry 获取 Token 过期时间
func (c *AppConfig) GetTokenExpiry() time.Duration {
	return util.DurationOr(c.Security.TokenExpiry, 30*24*time.Hour)
}

// GetFillInterval 获取限流令牌填充周期
func (c *AppConfig) GetFillInterval() time.Duration {
	return util.DurationOr(c.RateLimit.FillInterval, time.Second)
}
