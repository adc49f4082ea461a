package link

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/YaoAzure/wscompress/internal/wswrapper"
	"github.com/YaoAzure/wscompress/pkg/compression"
	"github.com/YaoAzure/wscompress/pkg/log"
	"github.com/YaoAzure/wscompress/pkg/pmbzip2"
	"github.com/YaoAzure/wscompress/pkg/session"
	"github.com/YaoAzure/wscompress/pkg/types"
)

var (
	_ types.Link = &wsLink{}

	// ErrLinkClosed 表示在连接已关闭后调用了Send。
	ErrLinkClosed = errors.New("连接已关闭")
)

// receiveBufferSize 接收通道的缓冲区大小
// 读取循环写满该缓冲后会反压到底层连接
const receiveBufferSize = 16

// wsLink 是 types.Link 的WebSocket实现。
// 读写都经过 wswrapper，协商了 permessage-bzip2 时自动走压缩路径。
// 一个连接上的压缩处理器由读写两侧共享：出入站消息各自持有独立的消息级编解码器，
// 互不干扰，因此同一个处理器可以同时服务读取循环和Send。
type wsLink struct {
	id   string
	sess session.Session
	conn net.Conn

	reader *wswrapper.Reader
	writer *wswrapper.Writer

	// writeMu 串行化并发的Send调用
	writeMu sync.Mutex

	receiveCh chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	// lastActive 最后活跃时间，UnixNano时间戳
	lastActive atomic.Int64

	logger *log.Logger
}

// NewServerLink 基于升级完成的服务端连接创建 Link。
// state 为握手时的压缩协商结果，可以为nil（未协商压缩）。
// 创建后立即启动读取循环，上行消息通过 Receive 通道交付。
func NewServerLink(conn net.Conn, sess session.Session, state *compression.State, logger *log.Logger) types.Link {
	var processor *pmbzip2.Processor
	if state != nil && state.Enabled {
		processor = state.Processor
	}

	userInfo := sess.UserInfo()
	l := &wsLink{
		id:        fmt.Sprintf("%d:%d:%s", userInfo.BizID, userInfo.UserID, conn.RemoteAddr()),
		sess:      sess,
		conn:      conn,
		reader:    wswrapper.NewServerSideReader(conn, processor),
		writer:    wswrapper.NewServerSideWriter(conn, processor, processor != nil),
		receiveCh: make(chan []byte, receiveBufferSize),
		closed:    make(chan struct{}),
		logger:    logger,
	}
	l.UpdateActiveTime()

	go l.readLoop()
	return l
}

func (l *wsLink) ID() string {
	return l.id
}

func (l *wsLink) Session() session.Session {
	return l.sess
}

func (l *wsLink) Send(msg []byte) error {
	select {
	case <-l.closed:
		return ErrLinkClosed
	default:
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	if _, err := l.writer.Write(msg); err != nil {
		return err
	}
	l.UpdateActiveTime()
	return nil
}

func (l *wsLink) Receive() <-chan []byte {
	return l.receiveCh
}

func (l *wsLink) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.closed)
		err = l.conn.Close()
	})
	return err
}

func (l *wsLink) HasClose() <-chan struct{} {
	return l.closed
}

func (l *wsLink) UpdateActiveTime() {
	l.lastActive.Store(time.Now().UnixNano())
}

func (l *wsLink) TryCloseIfIdle(timeout time.Duration) bool {
	last := time.Unix(0, l.lastActive.Load())
	if time.Since(last) < timeout {
		return false
	}
	l.logger.Info("连接空闲超时，关闭", slog.String("linkId", l.id), slog.Duration("timeout", timeout))
	_ = l.Close()
	return true
}

// readLoop 持续读取上行消息并交付到接收通道，连接断开或出错时退出并关闭连接。
// 注意压缩消息的解压发生在 wswrapper.Reader 内部，这里拿到的已是原始负载。
func (l *wsLink) readLoop() {
	defer func() {
		_ = l.Close()
		close(l.receiveCh)
	}()

	for {
		payload, err := l.reader.Read()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				l.logger.Warn("读取消息失败", slog.String("linkId", l.id), slog.Any("error", err))
			}
			return
		}
		l.UpdateActiveTime()

		select {
		case l.receiveCh <- payload:
		case <-l.closed:
			return
		}
	}
}
