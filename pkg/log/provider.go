package log

import (
	"io"
	"log/slog"
	"os"

	"github.com/YaoAzure/wscompress/pkg/config"
	"github.com/samber/do/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger 统一使用标准库的slog，通过DI容器注入各组件
type Logger = slog.Logger

var Package = do.Package(
	do.Lazy(NewLogger),
)

// NewLogger 根据日志配置构建slog日志器
func NewLogger(i do.Injector) (*Logger, error) {
	logConfig, err := do.Invoke[config.LogConfig](i)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		AddSource: logConfig.ShowCaller,
		Level:     parseLevel(logConfig.Level),
	}
	writer := buildWriter(logConfig)

	var handler slog.Handler
	if logConfig.Format == "json" {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	// 附加全局字段（例如服务名），方便日志聚合时检索
	logger := slog.New(handler)
	for _, field := range logConfig.Fields {
		logger = logger.With(field.Key, field.Value)
	}
	return logger, nil
}

// parseLevel 解析日志级别，无法识别的取值回退到info
func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildWriter 构建日志输出位置：console、file（经lumberjack切割）或两者兼有
func buildWriter(c config.LogConfig) io.Writer {
	fileWriter := &lumberjack.Logger{
		Filename:   c.Output.Path,
		MaxSize:    c.Rotation.MaxSize,
		MaxBackups: c.Rotation.MaxBackups,
		MaxAge:     c.Rotation.MaxAge,
		Compress:   c.Rotation.Compress,
	}
	switch c.Output.Type {
	case "file":
		return fileWriter
	case "multi":
		return io.MultiWriter(os.Stdout, fileWriter)
	default:
		return os.Stdout
	}
}
