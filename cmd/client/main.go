package main

import (
	"bufio"
	"context"
	"flag"
	stdlog "log"
	"log/slog"
	"os"

	"github.com/YaoAzure/wscompress/internal/dialer"
	"github.com/YaoAzure/wscompress/internal/wswrapper"
	"github.com/YaoAzure/wscompress/pkg/config"
	"github.com/YaoAzure/wscompress/pkg/log"
	"github.com/samber/do/v2"
)

// 命令行客户端：连接网关并协商 permessage-bzip2，
// 把标准输入的每一行作为一条消息发出，打印服务端的回显。
func main() {
	configPath, urlstr := parseFlags()

	loader := config.NewLoader(configPath)
	conf, err := loader.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	injector := do.New(
		config.NewPackage(conf),
		log.Package,
		dialer.Package,
	)
	defer injector.Shutdown()

	logger := do.MustInvoke[*log.Logger](injector)
	d := do.MustInvoke[*dialer.Dialer](injector)

	conn, state, err := d.Dial(context.Background(), urlstr)
	if err != nil {
		stdlog.Fatalf("Failed to dial %s: %v", urlstr, err)
	}
	defer conn.Close()

	var processor = state.Processor
	if !state.Enabled {
		processor = nil
	}
	writer := wswrapper.NewClientSideWriter(conn, processor, processor != nil)
	reader := wswrapper.NewClientSideReader(conn, processor)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if _, err := writer.Write(scanner.Bytes()); err != nil {
			logger.Error("发送消息失败", slog.Any("error", err))
			return
		}
		echo, err := reader.Read()
		if err != nil {
			logger.Error("读取回显失败", slog.Any("error", err))
			return
		}
		os.Stdout.Write(append(echo, '\n'))
	}
}

func parseFlags() (configPath, urlstr string) {
	var cp = flag.String("config", "./configs/config.yaml", "配置文件路径")
	var u = flag.String("url", "ws://127.0.0.1:8081/ws", "网关地址（token等参数放在query中）")
	flag.Parse()
	return *cp, *u
}
