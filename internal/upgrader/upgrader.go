package upgrader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"

	"github.com/YaoAzure/wscompress/pkg/compression"
	"github.com/YaoAzure/wscompress/pkg/jwt"
	"github.com/YaoAzure/wscompress/pkg/log"
	"github.com/YaoAzure/wscompress/pkg/pmbzip2"
	"github.com/YaoAzure/wscompress/pkg/session"
	"github.com/gobwas/httphead"
	"github.com/gobwas/ws"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"
)

var (
	ErrInvalidURI       = errors.New("无效的URI")       // URI格式错误或解析失败
	ErrInvalidUserToken = errors.New("无效的UserToken") // JWT token无效、过期或解析失败
	ErrExistedUser      = errors.New("用户已存在")       // 用户已经建立连接，可能是重连或多端登录
)

// Upgrader WebSocket连接升级器
// 负责将HTTP连接升级为WebSocket连接，并处理用户认证、permessage-bzip2协商、会话管理等功能
type Upgrader struct {
	rdb               redis.Cmdable      // Redis客户端，用于存储和管理用户会话信息
	token             *jwt.UserToken     // JWT token处理器，用于验证和解析用户身份信息
	compressionConfig compression.Config // 压缩配置，决定是否协商以及请求的级别上限
	sessionBuilder    session.Builder    // 会话构建器，用于创建和管理用户会话
	logger            *log.Logger        // 日志组件
}

func New(i do.Injector) (*Upgrader, error) {
	rdb, err := do.Invoke[redis.Cmdable](i)
	if err != nil {
		return nil, err
	}
	token, err := do.Invoke[*jwt.UserToken](i)
	if err != nil {
		return nil, err
	}
	compressionConfig, err := do.Invoke[compression.Config](i)
	if err != nil {
		return nil, err
	}
	sessionBuilder, err := do.Invoke[session.Builder](i)
	if err != nil {
		return nil, err
	}
	logger, err := do.Invoke[*log.Logger](i)
	if err != nil {
		return nil, err
	}

	return &Upgrader{
		rdb:               rdb,
		token:             token,
		compressionConfig: compressionConfig,
		sessionBuilder:    sessionBuilder,
		logger:            logger,
	}, nil
}

func (u *Upgrader) Name() string {
	return "gateway.Upgrader"
}

// Upgrade 将HTTP连接升级为WebSocket连接并完成 permessage-bzip2 协商
func (u *Upgrader) Upgrade(conn net.Conn) (session.Session, *compression.State, error) {
	var ss session.Session
	var compressionState *compression.State
	var autoClose bool
	var userInfo session.UserInfo

	// 只有配置启用时才参与扩展协商
	var ext *pmbzip2.Extension
	if u.compressionConfig.Enabled {
		ext = u.compressionConfig.ToExtension()
	}

	upgrader := ws.Upgrader{
		// Negotiate 扩展协商回调
		// 客户端 offer 的解析失败会使整个握手失败（协商错误不重试）
		Negotiate: func(opt httphead.Option) (httphead.Option, error) {
			if ext != nil {
				return ext.Negotiate(opt)
			}
			return httphead.Option{}, nil // 不启用压缩时跳过所有扩展
		},

		// OnRequest 请求处理回调，主要用于用户认证
		OnRequest: func(uri []byte) error {
			var err error
			userInfo, err = u.getUserInfo(string(uri))
			if err != nil {
				u.logger.Error("获取用户信息失败", slog.String("uri", string(uri)), slog.Any("error", err))
				return fmt.Errorf("%w", err)
			}
			return nil
		},

		// OnHeader HTTP头部处理回调
		// 解析 X-AutoClose header (大小写不敏感)
		OnHeader: func(key, value []byte) error {
			if strings.EqualFold(string(key), "X-AutoClose") {
				autoClose = string(value) == "true"
			}
			return nil
		},

		// OnBeforeUpgrade 升级前处理回调，创建用户会话
		OnBeforeUpgrade: func() (ws.HandshakeHeader, error) {
			userInfo.AutoClose = autoClose

			s, isNew, err := u.sessionBuilder.Build(context.Background(), userInfo)
			if err != nil {
				return nil, fmt.Errorf("%w", err)
			}
			if !isNew {
				// 可能是重连，也可能是多端登录，告警但不阻止连接建立
				u.logger.Warn("用户已存在", slog.Any("error", ErrExistedUser))
			}
			ss = s
			return ws.HandshakeHeaderString(""), nil
		},
	}

	if _, err := upgrader.Upgrade(conn); err != nil {
		return nil, nil, err
	}

	// 检查协商结果：客户端提交了合法 offer 时才构造处理器
	if ext != nil {
		if accept, ok := ext.Accepted(); ok {
			compressionState = &compression.State{
				Enabled:   true,
				Processor: pmbzip2.NewProcessorFromAccept(true, accept),
			}
			u.logger.Info("permessage-bzip2协商成功",
				slog.String("accept", accept.String()),
				slog.Int("s2cLevel", compressionState.Processor.S2CMaxCompressLevel()),
				slog.Int("c2sLevel", compressionState.Processor.C2SMaxCompressLevel()),
			)
		} else {
			u.logger.Warn("客户端未提供permessage-bzip2，降级到无压缩模式")
		}
	}
	return ss, compressionState, nil
}

// getUserInfo 从请求URI中解析用户信息
// URI格式示例: ws://localhost:8080/ws?token=eyJhbGciOi...
func (u *Upgrader) getUserInfo(uri string) (session.UserInfo, error) {
	uu, err := url.Parse(uri)
	if err != nil {
		return session.UserInfo{}, ErrInvalidURI
	}

	token := uu.Query().Get("token")

	userClaims, err := u.token.Decode(token)
	if err != nil {
		return session.UserInfo{}, fmt.Errorf("%w: %w", ErrInvalidUserToken, err)
	}

	return session.UserInfo{
		BizID:  userClaims.BizID,  // 业务ID，用于区分不同的业务域
		UserID: userClaims.UserID, // 用户ID，唯一标识用户
		// AutoClose在OnHeader回调中解析，升级前回填
	}, nil
}
