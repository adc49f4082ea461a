package pmbzip2

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOffer(t *testing.T) {
	t.Parallel()

	t.Run("空参数使用缺省值", func(t *testing.T) {
		offer, err := ParseOffer(Params{})
		require.NoError(t, err)
		assert.False(t, offer.AcceptMaxCompressLevel)
		assert.Equal(t, 0, offer.RequestMaxCompressLevel)
	})

	t.Run("合法级别逐一往返", func(t *testing.T) {
		for level := 1; level <= 9; level++ {
			offer, err := ParseOffer(Params{
				"s2c_max_compress_level": {fmt.Sprintf("%d", level)},
			})
			require.NoError(t, err)
			assert.Equal(t, level, offer.RequestMaxCompressLevel)
		}
	})

	t.Run("flag参数", func(t *testing.T) {
		offer, err := ParseOffer(Params{
			"c2s_max_compress_level": {""},
		})
		require.NoError(t, err)
		assert.True(t, offer.AcceptMaxCompressLevel)
	})

	t.Run("flag参数不允许显式值", func(t *testing.T) {
		_, err := ParseOffer(Params{
			"c2s_max_compress_level": {"true"},
		})
		var invalidErr *InvalidParameterValueError
		require.ErrorAs(t, err, &invalidErr)
		assert.Equal(t, ExtensionName, invalidErr.Extension)
		assert.Equal(t, "c2s_max_compress_level", invalidErr.Param)
		assert.Equal(t, "true", invalidErr.Value)
	})

	t.Run("非法级别值", func(t *testing.T) {
		for _, val := range []string{"0", "10", "", "abc", "1.5", "-1", "01"} {
			_, err := ParseOffer(Params{
				"s2c_max_compress_level": {val},
			})
			var invalidErr *InvalidParameterValueError
			require.ErrorAs(t, err, &invalidErr, "值 %q 应当解析失败", val)
			assert.Equal(t, val, invalidErr.Value)
		}
	})

	t.Run("重复参数", func(t *testing.T) {
		_, err := ParseOffer(Params{
			"c2s_max_compress_level": {"", ""},
		})
		var dupErr *DuplicateParameterError
		require.ErrorAs(t, err, &dupErr)
		assert.Equal(t, "c2s_max_compress_level", dupErr.Param)
	})

	t.Run("未知参数", func(t *testing.T) {
		_, err := ParseOffer(Params{
			"server_no_context_takeover": {""},
		})
		var unknownErr *UnknownParameterError
		require.ErrorAs(t, err, &unknownErr)
		assert.Equal(t, "server_no_context_takeover", unknownErr.Param)
	})
}

func TestNewOffer(t *testing.T) {
	t.Parallel()

	_, err := NewOffer(true, 10)
	var consErr *ConstructionError
	require.ErrorAs(t, err, &consErr)
	assert.Equal(t, 10, consErr.Value)

	offer, err := NewOffer(true, 0)
	require.NoError(t, err)
	assert.True(t, offer.AcceptMaxCompressLevel)
}

func TestOfferString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		offer Offer
		want  string
	}{
		{
			name:  "无参数",
			offer: Offer{},
			want:  "permessage-bzip2",
		},
		{
			name:  "只接受上限",
			offer: Offer{AcceptMaxCompressLevel: true},
			want:  "permessage-bzip2; c2s_max_compress_level",
		},
		{
			name:  "固定顺序",
			offer: Offer{AcceptMaxCompressLevel: true, RequestMaxCompressLevel: 7},
			want:  "permessage-bzip2; c2s_max_compress_level; s2c_max_compress_level=7",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.offer.String())
		})
	}
}

// 序列化后的 flag 与级别值重新解析应还原出相同字段。
// 唯一的例外是 AcceptMaxCompressLevel=false：它不产生任何 token，
// wire 上缺少 token 解析为 false，因此这一侧的往返仍然成立。
func TestOfferRoundTrip(t *testing.T) {
	t.Parallel()

	offer := &Offer{AcceptMaxCompressLevel: true, RequestMaxCompressLevel: 3}
	parsed, err := ParseOffer(Params{
		"c2s_max_compress_level": {""},
		"s2c_max_compress_level": {"3"},
	})
	require.NoError(t, err)
	assert.Equal(t, offer, parsed)

	absent, err := ParseOffer(Params{})
	require.NoError(t, err)
	assert.False(t, absent.AcceptMaxCompressLevel)
}
