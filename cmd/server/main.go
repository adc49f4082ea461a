package main

import (
	"context"
	"flag"
	stdlog "log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/YaoAzure/wscompress/internal/limiter"
	"github.com/YaoAzure/wscompress/internal/link"
	"github.com/YaoAzure/wscompress/internal/upgrader"
	"github.com/YaoAzure/wscompress/pkg/config"
	"github.com/YaoAzure/wscompress/pkg/jwt"
	"github.com/YaoAzure/wscompress/pkg/log"
	"github.com/YaoAzure/wscompress/pkg/redis"
	"github.com/YaoAzure/wscompress/pkg/session"
	"github.com/gofiber/fiber/v3"
	"github.com/samber/do/v2"
)

func main() {
	// Parse command line flags
	configPath := parseFlags()

	// Load configuration first
	loader := config.NewLoader(configPath)
	conf, err := loader.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	// Create DI container with all packages
	injector := do.New(
		config.NewPackage(conf), // 配置包 - 使用 Eager Loading
		log.Package,             // 日志包 - 使用 Lazy Loading
		redis.Package,           // Redis 包 - 使用 Lazy Loading
		jwt.Package,             // JWT 包 - 使用 Lazy Loading
		session.Package,         // Session 包 - 使用 Lazy Loading
		limiter.Package,         // 限流器包 - 使用 Lazy Loading
		upgrader.Package,        // 升级器包 - 使用 Lazy Loading
	)
	defer injector.Shutdown()

	logger := do.MustInvoke[*log.Logger](injector)
	up := do.MustInvoke[*upgrader.Upgrader](injector)
	tl := do.MustInvoke[*limiter.TokenLimiter](injector)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 连接数限流从初始容量逐步爬升
	go tl.StartRampUp(ctx)

	// 运维HTTP端口（健康检查）
	app := fiber.New(fiber.Config{
		AppName: conf.App.Name,
	})
	app.Get("/health", func(c fiber.Ctx) error {
		return c.SendString("OK")
	})
	go func() {
		if err := app.Listen(conf.App.Addr); err != nil {
			logger.Error("运维HTTP服务退出", slog.Any("error", err))
		}
	}()

	// WebSocket监听
	ln, err := net.Listen("tcp", conf.Server.Websocket.Addr)
	if err != nil {
		stdlog.Fatalf("Failed to listen on %s: %v", conf.Server.Websocket.Addr, err)
	}
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	logger.Info("WebSocket服务启动",
		slog.String("name", conf.App.Name),
		slog.String("addr", conf.Server.Websocket.Addr),
	)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				// 收到退出信号，监听器已关闭
				break
			}
			logger.Warn("接受连接失败", slog.Any("error", err))
			continue
		}

		if !tl.Acquire() {
			// 没有可用令牌，拒绝连接
			logger.Warn("连接数达到上限，拒绝连接", slog.String("remote", conn.RemoteAddr().String()))
			_ = conn.Close()
			continue
		}

		go func() {
			defer tl.Release()
			serveConn(up, logger, conn)
		}()
	}

	logger.Info("WebSocket服务已退出")
}

// serveConn 处理单个连接的完整生命周期：握手升级、压缩协商，然后回显上行消息。
// 协商了 permessage-bzip2 时，回显消息会按协商级别压缩后下发。
func serveConn(up *upgrader.Upgrader, logger *log.Logger, conn net.Conn) {
	ss, state, err := up.Upgrade(conn)
	if err != nil {
		logger.Warn("连接升级失败", slog.String("remote", conn.RemoteAddr().String()), slog.Any("error", err))
		_ = conn.Close()
		return
	}

	l := link.NewServerLink(conn, ss, state, logger)
	defer func() { _ = l.Close() }()

	logger.Info("连接已建立", slog.String("linkId", l.ID()))
	for msg := range l.Receive() {
		if err := l.Send(msg); err != nil {
			logger.Warn("下发消息失败", slog.String("linkId", l.ID()), slog.Any("error", err))
			return
		}
	}
	logger.Info("连接已断开", slog.String("linkId", l.ID()))
}

// parseFlags 解析命令行参数并返回配置文件路径
func parseFlags() string {
	var configPath = flag.String("config", "./configs/config.yaml", "配置文件路径")
	var showHelp = flag.Bool("help", false, "显示帮助信息")
	flag.Parse()

	// Show help if requested
	if *showHelp {
		flag.Usage()
		return ""
	}

	return *configPath
}
