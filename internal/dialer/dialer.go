package dialer

import (
	"context"
	"log/slog"
	"net"

	"github.com/YaoAzure/wscompress/pkg/compression"
	"github.com/YaoAzure/wscompress/pkg/log"
	"github.com/YaoAzure/wscompress/pkg/pmbzip2"
	"github.com/gobwas/httphead"
	"github.com/gobwas/ws"
	"github.com/samber/do/v2"
)

// Dialer WebSocket客户端拨号器
// 负责发起连接、在握手中携带 permessage-bzip2 offer，并解析服务端回显的协商应答
type Dialer struct {
	compressionConfig compression.Config // 压缩配置，决定是否提交offer以及offer内容
	logger            *log.Logger        // 日志组件
}

func New(i do.Injector) (*Dialer, error) {
	compressionConfig, err := do.Invoke[compression.Config](i)
	if err != nil {
		return nil, err
	}
	logger, err := do.Invoke[*log.Logger](i)
	if err != nil {
		return nil, err
	}
	return &Dialer{
		compressionConfig: compressionConfig,
		logger:            logger,
	}, nil
}

// Dial 连接到网关并完成扩展协商
// 认证token等参数由调用方放在urlstr的query中（例如 ws://host/ws?token=...）
// 服务端未回显扩展时返回的状态 Enabled 为 false，按未压缩模式继续
func (d *Dialer) Dial(ctx context.Context, urlstr string) (net.Conn, *compression.State, error) {
	wsd := ws.Dialer{}

	var offered bool
	if d.compressionConfig.Enabled {
		offer, err := d.compressionConfig.ToOffer()
		if err != nil {
			return nil, nil, err
		}
		wsd.Extensions = []httphead.Option{offer.Option()}
		offered = true
		d.logger.Info("提交permessage-bzip2 offer", slog.String("offer", offer.String()))
	}

	conn, _, hs, err := wsd.Dial(ctx, urlstr)
	if err != nil {
		return nil, nil, err
	}

	state := &compression.State{}
	if offered {
		// Response 是客户端对最终协商结果的权威记录
		resp, ok, err := pmbzip2.ParseResponseOptions(hs.Extensions)
		if err != nil {
			// 服务端回显了非法参数：协商失败对握手是致命的
			_ = conn.Close()
			return nil, nil, err
		}
		if ok {
			state.Enabled = true
			state.Processor = pmbzip2.NewProcessorFromResponse(false, resp)
			d.logger.Info("permessage-bzip2协商成功",
				slog.Int("s2cLevel", state.Processor.S2CMaxCompressLevel()),
				slog.Int("c2sLevel", state.Processor.C2SMaxCompressLevel()),
			)
		} else {
			d.logger.Warn("服务端未回显permessage-bzip2，降级到无压缩模式")
		}
	}
	return conn, state, nil
}
