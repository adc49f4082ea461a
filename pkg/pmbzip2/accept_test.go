package pmbzip2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccept(t *testing.T) {
	t.Parallel()

	t.Run("缺少offer", func(t *testing.T) {
		_, err := NewAccept(nil, 0)
		require.ErrorIs(t, err, ErrNilOffer)
	})

	t.Run("级别越界", func(t *testing.T) {
		offer := &Offer{AcceptMaxCompressLevel: true}
		_, err := NewAccept(offer, 12)
		var consErr *ConstructionError
		require.ErrorAs(t, err, &consErr)
	})

	t.Run("对端未声明支持上限", func(t *testing.T) {
		offer := &Offer{AcceptMaxCompressLevel: false}
		_, err := NewAccept(offer, 5)
		var unsupportedErr *UnsupportedFeatureError
		require.ErrorAs(t, err, &unsupportedErr)
		assert.Equal(t, 5, unsupportedErr.Level)

		// 不请求上限时，对端声明与否都可以接受。
		accept, err := NewAccept(offer, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, accept.RequestMaxCompressLevel)
	})
}

func TestAcceptString(t *testing.T) {
	t.Parallel()

	t.Run("原样回显offer请求的级别", func(t *testing.T) {
		offer := &Offer{AcceptMaxCompressLevel: true, RequestMaxCompressLevel: 4}
		accept, err := NewAccept(offer, 8)
		require.NoError(t, err)
		assert.Equal(t,
			"permessage-bzip2; s2c_max_compress_level=4; c2s_max_compress_level=8",
			accept.String(),
		)
	})

	t.Run("双方都未请求", func(t *testing.T) {
		accept, err := NewAccept(&Offer{}, 0)
		require.NoError(t, err)
		assert.Equal(t, "permessage-bzip2", accept.String())
	})
}
