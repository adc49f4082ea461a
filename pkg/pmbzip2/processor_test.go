package pmbzip2

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessorLevels(t *testing.T) {
	t.Parallel()

	t.Run("accept未请求时套用默认级别", func(t *testing.T) {
		accept, err := NewAccept(&Offer{AcceptMaxCompressLevel: true}, 0)
		require.NoError(t, err)
		p := NewProcessorFromAccept(true, accept)
		assert.Equal(t, DefaultCompressLevel, p.S2CMaxCompressLevel())
		assert.Equal(t, DefaultCompressLevel, p.C2SMaxCompressLevel())
	})

	t.Run("从accept取双方请求的级别", func(t *testing.T) {
		offer := &Offer{AcceptMaxCompressLevel: true, RequestMaxCompressLevel: 3}
		accept, err := NewAccept(offer, 6)
		require.NoError(t, err)
		p := NewProcessorFromAccept(true, accept)
		assert.Equal(t, 3, p.S2CMaxCompressLevel())
		assert.Equal(t, 6, p.C2SMaxCompressLevel())
	})

	t.Run("从response取级别并归一", func(t *testing.T) {
		p := NewProcessorFromResponse(false, &Response{C2SMaxCompressLevel: 1})
		assert.Equal(t, 1, p.C2SMaxCompressLevel())
		assert.Equal(t, DefaultCompressLevel, p.S2CMaxCompressLevel())
	})
}

// compressMessage 按 chunkSize 分块走完一条消息的发送生命周期。
func compressMessage(t *testing.T, p *Processor, payload []byte, chunkSize int) []byte {
	t.Helper()
	require.NoError(t, p.StartCompressMessage())
	var compressed []byte
	for off := 0; off < len(payload); off += chunkSize {
		end := off + chunkSize
		if end > len(payload) {
			end = len(payload)
		}
		out, err := p.CompressMessageData(payload[off:end])
		require.NoError(t, err)
		compressed = append(compressed, out...)
	}
	tail, err := p.EndCompressMessage()
	require.NoError(t, err)
	return append(compressed, tail...)
}

// decompressMessage 按 chunkSize 分块走完一条消息的接收生命周期。
func decompressMessage(t *testing.T, p *Processor, compressed []byte, chunkSize int) []byte {
	t.Helper()
	p.StartDecompressMessage()
	var payload []byte
	for off := 0; off < len(compressed); off += chunkSize {
		end := off + chunkSize
		if end > len(compressed) {
			end = len(compressed)
		}
		out, err := p.DecompressMessageData(compressed[off:end])
		require.NoError(t, err)
		payload = append(payload, out...)
	}
	p.EndDecompressMessage()
	return payload
}

func TestProcessorRoundTrip(t *testing.T) {
	t.Parallel()

	// 双端按同一协商结果构造：服务端压缩 s2c，客户端解压 s2c。
	offer := &Offer{AcceptMaxCompressLevel: true, RequestMaxCompressLevel: 5}
	accept, err := NewAccept(offer, 5)
	require.NoError(t, err)
	server := NewProcessorFromAccept(true, accept)
	client := NewProcessorFromResponse(false, &Response{
		C2SMaxCompressLevel: 5,
		S2CMaxCompressLevel: 5,
	})

	rnd := rand.New(rand.NewSource(42))
	big := make([]byte, 2<<20)
	_, _ = rnd.Read(big)
	// 可压缩的大负载，保证跨多个 bzip2 块
	text := bytes.Repeat([]byte("永远不要复用已经flush过的压缩器。"), 40000)

	tests := []struct {
		name    string
		payload []byte
	}{
		{"空负载", nil},
		{"单字节", []byte{0x7f}},
		{"大负载随机", big},
		{"大负载文本", text},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed := compressMessage(t, server, tt.payload, 64*1024)
			got := decompressMessage(t, client, compressed, 32*1024)
			if len(tt.payload) == 0 {
				assert.Empty(t, got)
			} else {
				require.True(t, bytes.Equal(tt.payload, got), "解压结果与原始负载不一致")
			}
		})
	}
}

// 同一个 Processor 逐消息复用：每条消息都有独立的新编解码器。
func TestProcessorSequentialMessages(t *testing.T) {
	t.Parallel()

	accept, err := NewAccept(&Offer{AcceptMaxCompressLevel: true}, 0)
	require.NoError(t, err)
	sender := NewProcessorFromAccept(true, accept)
	receiver := NewProcessorFromAccept(false, accept)

	for i := 0; i < 3; i++ {
		payload := bytes.Repeat([]byte{byte('a' + i)}, 1024)
		compressed := compressMessage(t, sender, payload, 256)
		// 接收方解压的是对端 s2c 方向的数据
		got := decompressMessage(t, receiver, compressed, 128)
		require.Equal(t, payload, got, "第 %d 条消息", i)
	}
}

func TestProcessorLifecycleMisuse(t *testing.T) {
	t.Parallel()

	accept, err := NewAccept(&Offer{}, 0)
	require.NoError(t, err)

	t.Run("未开始就喂数据", func(t *testing.T) {
		p := NewProcessorFromAccept(true, accept)
		_, err := p.CompressMessageData([]byte("x"))
		require.ErrorIs(t, err, ErrCompressNotStarted)
		_, err = p.DecompressMessageData([]byte("x"))
		require.ErrorIs(t, err, ErrDecompressNotStarted)
	})

	t.Run("重复End确定性返回空输出", func(t *testing.T) {
		p := NewProcessorFromAccept(true, accept)
		require.NoError(t, p.StartCompressMessage())
		_, err := p.CompressMessageData([]byte("payload"))
		require.NoError(t, err)
		first, err := p.EndCompressMessage()
		require.NoError(t, err)
		assert.NotEmpty(t, first)

		// 第二次 End 之前没有 Start：绝不能拿旧压缩器再 flush 一次。
		second, err := p.EndCompressMessage()
		require.NoError(t, err)
		assert.Empty(t, second)
	})

	t.Run("Start在消息内幂等", func(t *testing.T) {
		p := NewProcessorFromAccept(true, accept)
		require.NoError(t, p.StartCompressMessage())
		require.NoError(t, p.StartCompressMessage())
		out, err := p.CompressMessageData([]byte("idempotent"))
		require.NoError(t, err)
		tail, err := p.EndCompressMessage()
		require.NoError(t, err)
		got := decompressMessage(t, NewProcessorFromAccept(false, accept), append(out, tail...), 8)
		assert.Equal(t, []byte("idempotent"), got)
	})
}

func TestProcessorCorruptStream(t *testing.T) {
	t.Parallel()

	accept, err := NewAccept(&Offer{}, 0)
	require.NoError(t, err)
	p := NewProcessorFromAccept(false, accept)

	p.StartDecompressMessage()
	garbage := bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 64)
	_, err = p.DecompressMessageData(garbage)
	var codecErr *CodecError
	require.ErrorAs(t, err, &codecErr)
	p.EndDecompressMessage()
}
