package wswrapper

import (
	"io"

	"github.com/YaoAzure/wscompress/pkg/pmbzip2"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// Writer WebSocket连接写入器
// 封装了WebSocket连接的写入功能，按 permessage-bzip2 协商结果压缩出站消息
type Writer struct {
	writer       *wsutil.Writer        // WebSocket帧写入器，负责构造和发送WebSocket协议帧
	messageState *pmbzip2.MessageState // 消息压缩状态，为出站消息首帧置RSV1
	processor    *pmbzip2.Processor    // 协商出的压缩处理器
}

// NewServerSideWriter 创建服务端模式的WebSocket写入器
// processor 非nil且 compressed 为true时，所有出站消息走压缩路径
func NewServerSideWriter(dest io.Writer, processor *pmbzip2.Processor, compressed bool) *Writer {
	return newWriter(dest, ws.StateServerSide, processor, compressed)
}

// NewClientSideWriter 创建客户端模式的WebSocket写入器
func NewClientSideWriter(dest io.Writer, processor *pmbzip2.Processor, compressed bool) *Writer {
	return newWriter(dest, ws.StateClientSide, processor, compressed)
}

func newWriter(dest io.Writer, state ws.State, processor *pmbzip2.Processor, compressed bool) *Writer {
	messageState := &pmbzip2.MessageState{}
	messageState.SetCompressed(compressed && processor != nil)

	w := &Writer{
		writer:       wsutil.NewWriter(dest, state|ws.StateExtended, ws.OpBinary),
		messageState: messageState,
		processor:    processor,
	}
	// 将压缩状态注册到WebSocket写入器的扩展中
	w.writer.SetExtensions(messageState)
	return w
}

// Write 写出一条完整的消息，按构造时的压缩开关选择路径
func (w *Writer) Write(p []byte) (n int, err error) {
	if w.messageState.IsCompressed() {
		return w.writeCompressed(p)
	}
	return w.writeUncompressed(p)
}

// writeCompressed 走一条消息完整的压缩生命周期：Start 创建消息级压缩器、
// 喂入负载、End 刷出尾部并销毁压缩器。下一条消息会重新创建新的压缩器。
func (w *Writer) writeCompressed(p []byte) (n int, err error) {
	if err := w.processor.StartCompressMessage(); err != nil {
		return 0, err
	}
	head, err := w.processor.CompressMessageData(p)
	if err != nil {
		return 0, err
	}
	tail, err := w.processor.EndCompressMessage()
	if err != nil {
		return 0, err
	}

	if len(head) > 0 {
		if _, err := w.writer.Write(head); err != nil {
			return 0, err
		}
	}
	if len(tail) > 0 {
		if _, err := w.writer.Write(tail); err != nil {
			return 0, err
		}
	}
	// 刷新WebSocket写入器，立即发出本条消息
	return len(p), w.writer.Flush()
}

// writeUncompressed 写入未压缩消息，直接发送原始数据
func (w *Writer) writeUncompressed(p []byte) (n int, err error) {
	n, err = w.writer.Write(p)
	if err != nil {
		return 0, err
	}
	return n, w.writer.Flush()
}
