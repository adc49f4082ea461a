package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/YaoAzure/wscompress/pkg/config"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, tlc config.TokenLimiterConfig) (*TokenLimiter, error) {
	t.Helper()
	injector := do.New()
	do.ProvideValue(injector, config.ServerConfig{
		Websocket: config.WebsocketConfig{TokenLimiter: tlc},
	})
	return NewTokenLimiter(injector)
}

func TestNewTokenLimiterValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		tlc  config.TokenLimiterConfig
	}{
		{"最大容量为零", config.TokenLimiterConfig{MaxCapacity: 0, IncreaseStep: 1, IncreaseInterval: time.Second}},
		{"初始容量为负", config.TokenLimiterConfig{InitialCapacity: -1, MaxCapacity: 10, IncreaseStep: 1, IncreaseInterval: time.Second}},
		{"初始容量超过最大容量", config.TokenLimiterConfig{InitialCapacity: 11, MaxCapacity: 10, IncreaseStep: 1, IncreaseInterval: time.Second}},
		{"步长为零", config.TokenLimiterConfig{InitialCapacity: 1, MaxCapacity: 10, IncreaseStep: 0, IncreaseInterval: time.Second}},
		{"间隔为零", config.TokenLimiterConfig{InitialCapacity: 1, MaxCapacity: 10, IncreaseStep: 1, IncreaseInterval: 0}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := newLimiter(t, tc.tlc)
			assert.Error(t, err)
		})
	}
}

func TestTokenLimiterAcquireRelease(t *testing.T) {
	t.Parallel()

	l, err := newLimiter(t, config.TokenLimiterConfig{
		InitialCapacity:  2,
		MaxCapacity:      4,
		IncreaseStep:     1,
		IncreaseInterval: time.Hour,
	})
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, int64(2), l.CurrentCapacity())

	// 初始容量内可以获取令牌
	assert.True(t, l.Acquire())
	assert.True(t, l.Acquire())
	// 令牌耗尽
	assert.False(t, l.Acquire())

	// 归还后可以再次获取
	assert.True(t, l.Release())
	assert.True(t, l.Acquire())
}

func TestTokenLimiterRampUp(t *testing.T) {
	t.Parallel()

	l, err := newLimiter(t, config.TokenLimiterConfig{
		InitialCapacity:  1,
		MaxCapacity:      3,
		IncreaseStep:     1,
		IncreaseInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go l.StartRampUp(ctx)

	require.Eventually(t, func() bool {
		return l.CurrentCapacity() == 3
	}, 3*time.Second, 10*time.Millisecond)

	// 爬升完成后可以获取到全部令牌
	for i := 0; i < 3; i++ {
		assert.True(t, l.Acquire())
	}
	assert.False(t, l.Acquire())
}
