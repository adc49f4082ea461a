package types

import (
	"time"

	"github.com/YaoAzure/wscompress/pkg/session"
)

// Link 表示一个抽象的用户连接，封装底层的网络连接并与一个用户会话绑定。
// 它提供面向业务的、统一的连接操作接口，屏蔽压缩协商等传输层细节。
type Link interface {
	// ID 返回此连接的唯一标识符
	ID() string
	// Session 返回与此连接绑定的用户会话信息
	Session() session.Session
	// Send 向客户端发送一条消息。
	// 连接已关闭或底层写入失败时返回错误。
	Send(msg []byte) error
	// Receive 返回一个只读通道，用于从客户端接收消息。
	// 连接关闭时该通道会被关闭。
	Receive() <-chan []byte
	// Close 主动关闭此连接并释放相关资源。幂等。
	Close() error
	// HasClose 返回一个只读通道，该通道在连接被关闭时关闭。
	// 用于让其他组件以事件驱动的方式监听连接断开，
	// 例如：`select { case <-link.HasClose(): ... }`
	HasClose() <-chan struct{}
	// UpdateActiveTime 更新连接的最后活跃时间戳。
	// 收到客户端消息或成功发送消息后调用，用于空闲连接检测。
	UpdateActiveTime()
	// TryCloseIfIdle 检查连接是否超过指定的空闲超时时间。
	// 已空闲超时则关闭连接并返回true，否则返回false。
	TryCloseIfIdle(timeout time.Duration) bool
}
