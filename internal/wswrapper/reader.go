package wswrapper

import (
	"errors"
	"io"
	"net"

	"github.com/YaoAzure/wscompress/pkg/pmbzip2"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// ErrCompressionNotNegotiated 表示收到了置 RSV1 的压缩消息，但本连接没有协商压缩扩展。
// 这是对端的协议违规，调用方应关闭连接。
var ErrCompressionNotNegotiated = errors.New("收到压缩消息但未协商压缩扩展")

// Reader WebSocket连接读取器
// 封装了WebSocket连接的读取功能，按 permessage-bzip2 协商结果自动解压入站消息
// 可以同时用于服务端和客户端模式
type Reader struct {
	conn           net.Conn                // 底层网络连接
	reader         *wsutil.Reader          // WebSocket帧读取器，负责解析WebSocket协议帧
	controlHandler wsutil.FrameHandlerFunc // 控制帧处理器，用于处理ping/pong/close等控制帧
	messageState   *pmbzip2.MessageState   // 消息压缩状态，跟踪首帧的RSV1标记
	processor      *pmbzip2.Processor      // 协商出的压缩处理器，未协商时为nil
	buf            []byte                  // 入站压缩数据的分块缓冲
}

// NewServerSideReader 创建服务端模式的WebSocket读取器
// processor 为协商出的压缩处理器，协商失败或未启用压缩时传nil
func NewServerSideReader(conn net.Conn, processor *pmbzip2.Processor) *Reader {
	return newReader(conn, ws.StateServerSide, processor)
}

// NewClientSideReader 创建客户端模式的WebSocket读取器
func NewClientSideReader(conn net.Conn, processor *pmbzip2.Processor) *Reader {
	return newReader(conn, ws.StateClientSide, processor)
}

func newReader(conn net.Conn, state ws.State, processor *pmbzip2.Processor) *Reader {
	messageState := &pmbzip2.MessageState{}
	controlHandler := wsutil.ControlFrameHandler(conn, state)
	return &Reader{
		conn: conn,
		reader: &wsutil.Reader{
			Source:         conn,
			State:          state | ws.StateExtended,           // 启用扩展支持以读取RSV位
			Extensions:     []wsutil.RecvExtension{messageState}, // 注册压缩状态扩展
			OnIntermediate: controlHandler,
		},
		controlHandler: controlHandler,
		messageState:   messageState,
		processor:      processor,
		buf:            make([]byte, 32*1024),
	}
}

// Read 从WebSocket连接中读取一条完整的消息
// 自动处理控制帧；置了RSV1的数据消息按协商结果流式解压
func (r *Reader) Read() (payload []byte, err error) {
	for {
		header, err := r.reader.NextFrame()
		if err != nil {
			return nil, err
		}

		if header.OpCode.IsControl() {
			if err := r.controlHandler(header, r.reader); err != nil {
				return nil, err
			}
			continue
		}

		if r.messageState.IsCompressed() {
			if r.processor == nil {
				return nil, ErrCompressionNotNegotiated
			}
			return r.readCompressed()
		}
		return io.ReadAll(r.reader)
	}
}

// readCompressed 走一条消息完整的解压生命周期：
// 入站压缩字节逐块喂给处理器，消息结束时丢弃本条消息的解压器。
func (r *Reader) readCompressed() ([]byte, error) {
	r.processor.StartDecompressMessage()
	defer r.processor.EndDecompressMessage()

	var payload []byte
	for {
		n, err := r.reader.Read(r.buf)
		if n > 0 {
			out, derr := r.processor.DecompressMessageData(r.buf[:n])
			if derr != nil {
				// 压缩流中途损坏不可恢复，对连接是致命错误
				return nil, derr
			}
			payload = append(payload, out...)
		}
		if err == io.EOF {
			// 消息边界
			return payload, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
