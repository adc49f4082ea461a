package config

import (
	"time"

	"github.com/YaoAzure/wscompress/pkg/compression"
)

// Config represents the application configuration
type Config struct {
	App         AppConfig          `yaml:"app" mapstructure:"app"`
	Server      ServerConfig       `yaml:"server" mapstructure:"server"`
	Log         LogConfig          `yaml:"log" mapstructure:"log"`
	Redis       RedisConfig        `yaml:"redis" mapstructure:"redis"`
	JWT         JWTConfig          `yaml:"jwt" mapstructure:"jwt"`
	Compression compression.Config `yaml:"compression" mapstructure:"compression"`
}

// AppConfig represents the application-specific configuration
type AppConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
	// Addr 运维HTTP端口（健康检查等）
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// ServerConfig WebSocket服务端配置
type ServerConfig struct {
	Websocket WebsocketConfig `yaml:"websocket" mapstructure:"websocket"`
}

// WebsocketConfig WebSocket监听与连接管控配置
type WebsocketConfig struct {
	// Addr WebSocket监听地址
	Addr string `yaml:"addr" mapstructure:"addr"`
	// TokenLimiter 连接数限流配置
	TokenLimiter TokenLimiterConfig `yaml:"tokenLimiter" mapstructure:"tokenLimiter"`
}

// TokenLimiterConfig 令牌桶限流配置，容量从初始值逐步增长到最大值
type TokenLimiterConfig struct {
	InitialCapacity  int64         `yaml:"initialCapacity" mapstructure:"initialCapacity"`
	MaxCapacity      int64         `yaml:"maxCapacity" mapstructure:"maxCapacity"`
	IncreaseStep     int64         `yaml:"increaseStep" mapstructure:"increaseStep"`
	IncreaseInterval time.Duration `yaml:"increaseInterval" mapstructure:"increaseInterval"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string         `yaml:"level" mapstructure:"level"`
	Format     string         `yaml:"format" mapstructure:"format"`
	ShowCaller bool           `yaml:"showCaller" mapstructure:"showCaller"`
	Output     LogOutput      `yaml:"output" mapstructure:"output"`
	Rotation   LogRotation    `yaml:"rotation" mapstructure:"rotation"`
	Fields     []LogField     `yaml:"fields" mapstructure:"fields"`
}

// LogOutput 日志输出位置：console、file 或 multi
type LogOutput struct {
	Type string `yaml:"type" mapstructure:"type"`
	Path string `yaml:"path" mapstructure:"path"`
}

// LogRotation 日志切割配置（lumberjack）
type LogRotation struct {
	MaxSize    int  `yaml:"maxSize" mapstructure:"maxSize"`
	MaxBackups int  `yaml:"maxBackups" mapstructure:"maxBackups"`
	MaxAge     int  `yaml:"maxAge" mapstructure:"maxAge"`
	Compress   bool `yaml:"compress" mapstructure:"compress"`
}

// LogField 附加到所有日志的全局字段
type LogField struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Value string `yaml:"value" mapstructure:"value"`
}

// RedisConfig Redis连接配置
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
	PoolSize int    `yaml:"poolSize" mapstructure:"poolSize"`
}

// JWTConfig JWT签名配置
type JWTConfig struct {
	Key    string `yaml:"key" mapstructure:"key"`
	Issuer string `yaml:"issuer" mapstructure:"issuer"`
}
