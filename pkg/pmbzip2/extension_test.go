package pmbzip2

import (
	"testing"

	"github.com/gobwas/httphead"
	"github.com/gobwas/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func option(name string, params map[string]string) httphead.Option {
	opt := httphead.Option{Name: []byte(name)}
	for k, v := range params {
		opt.Parameters.Set([]byte(k), []byte(v))
	}
	return opt
}

func TestExtensionNegotiate(t *testing.T) {
	t.Parallel()

	t.Run("接受offer并带上本端请求", func(t *testing.T) {
		ext := &Extension{RequestMaxCompressLevel: 6}
		reply, err := ext.Negotiate(option(ExtensionName, map[string]string{
			"c2s_max_compress_level": "",
			"s2c_max_compress_level": "4",
		}))
		require.NoError(t, err)
		assert.Equal(t, ExtensionName, string(reply.Name))

		accept, ok := ext.Accepted()
		require.True(t, ok)
		assert.Equal(t, 4, accept.Offer.RequestMaxCompressLevel)
		assert.Equal(t, 6, accept.RequestMaxCompressLevel)

		// 应答里原样回显 offer 的 s2c 请求
		val, ok := reply.Parameters.Get("s2c_max_compress_level")
		require.True(t, ok)
		assert.Equal(t, "4", string(val))
		val, ok = reply.Parameters.Get("c2s_max_compress_level")
		require.True(t, ok)
		assert.Equal(t, "6", string(val))
	})

	t.Run("客户端不接受上限时放弃本端请求", func(t *testing.T) {
		ext := &Extension{RequestMaxCompressLevel: 6}
		_, err := ext.Negotiate(option(ExtensionName, nil))
		require.NoError(t, err)
		accept, ok := ext.Accepted()
		require.True(t, ok)
		assert.Equal(t, 0, accept.RequestMaxCompressLevel)
	})

	t.Run("名称不匹配时跳过", func(t *testing.T) {
		ext := &Extension{}
		reply, err := ext.Negotiate(option("permessage-deflate", nil))
		require.NoError(t, err)
		assert.Empty(t, reply.Name)
		_, ok := ext.Accepted()
		assert.False(t, ok)
	})

	t.Run("非法offer使握手失败", func(t *testing.T) {
		ext := &Extension{}
		_, err := ext.Negotiate(option(ExtensionName, map[string]string{
			"s2c_max_compress_level": "12",
		}))
		var invalidErr *InvalidParameterValueError
		require.ErrorAs(t, err, &invalidErr)
	})
}

func TestOfferOption(t *testing.T) {
	t.Parallel()

	offer := &Offer{AcceptMaxCompressLevel: true, RequestMaxCompressLevel: 9}
	opt := offer.Option()
	assert.Equal(t, ExtensionName, string(opt.Name))

	params := optionParams(opt)
	parsed, err := ParseOffer(params)
	require.NoError(t, err)
	assert.Equal(t, offer, parsed)
}

func TestParseResponseOptions(t *testing.T) {
	t.Parallel()

	t.Run("从扩展列表中定位并解析", func(t *testing.T) {
		opts := []httphead.Option{
			option("permessage-deflate", nil),
			option(ExtensionName, map[string]string{
				"c2s_max_compress_level": "3",
			}),
		}
		resp, ok, err := ParseResponseOptions(opts)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 3, resp.C2SMaxCompressLevel)
	})

	t.Run("服务端未回显扩展", func(t *testing.T) {
		_, ok, err := ParseResponseOptions(nil)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("回显了非法参数", func(t *testing.T) {
		opts := []httphead.Option{
			option(ExtensionName, map[string]string{
				"c2s_max_compress_level": "",
			}),
		}
		_, ok, err := ParseResponseOptions(opts)
		assert.True(t, ok)
		var invalidErr *InvalidParameterValueError
		require.ErrorAs(t, err, &invalidErr)
	})
}

func TestMessageStateBits(t *testing.T) {
	t.Parallel()

	var s MessageState
	s.SetCompressed(true)

	h := ws.Header{OpCode: ws.OpBinary}
	h, err := s.SetBits(h)
	require.NoError(t, err)
	r1, _, _ := ws.RsvBits(h.Rsv)
	assert.True(t, r1)

	// 续帧不置位
	cont, err := s.SetBits(ws.Header{OpCode: ws.OpContinuation})
	require.NoError(t, err)
	assert.Zero(t, cont.Rsv)

	// 接收侧：首帧 RSV1 决定消息压缩标记并被清除
	var recv MessageState
	got, err := recv.UnsetBits(ws.Header{OpCode: ws.OpBinary, Rsv: ws.Rsv(true, false, false)})
	require.NoError(t, err)
	assert.Zero(t, got.Rsv)
	assert.True(t, recv.IsCompressed())

	got, err = recv.UnsetBits(ws.Header{OpCode: ws.OpBinary})
	require.NoError(t, err)
	assert.False(t, recv.IsCompressed())
}
