package pmbzip2

import (
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// MessageState 记录当前消息是否启用了 permessage-bzip2（RSV1 位）。
// 它实现 wsutil 的收发扩展接口，注册到 wsutil.Reader / wsutil.Writer 后，
// 发送时为消息首帧置 RSV1，接收时读取并清除 RSV1。
type MessageState struct {
	compressed bool
}

var (
	_ wsutil.SendExtension = (*MessageState)(nil)
	_ wsutil.RecvExtension = (*MessageState)(nil)
)

// SetCompressed 设置当前消息的压缩标记。
func (s *MessageState) SetCompressed(v bool) { s.compressed = v }

// IsCompressed 返回当前消息是否压缩。
func (s *MessageState) IsCompressed() bool { return s.compressed }

// SetBits 实现 wsutil.SendExtension。RSV1 只出现在消息首帧，续帧不置位。
func (s *MessageState) SetBits(h ws.Header) (ws.Header, error) {
	if !s.compressed || h.OpCode == ws.OpContinuation {
		return h, nil
	}
	h.Rsv = ws.Rsv(true, false, false)
	return h, nil
}

// UnsetBits 实现 wsutil.RecvExtension。
// 数据消息的首帧决定整条消息的压缩标记，随后清掉 RSV1 交还给帧层。
func (s *MessageState) UnsetBits(h ws.Header) (ws.Header, error) {
	if !h.OpCode.IsData() || h.OpCode == ws.OpContinuation {
		return h, nil
	}
	r1, r2, r3 := ws.RsvBits(h.Rsv)
	s.compressed = r1
	h.Rsv = ws.Rsv(false, r2, r3)
	return h, nil
}
