package limiter

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/YaoAzure/wscompress/pkg/config"
	"github.com/samber/do/v2"
)

// TokenLimiter 通过令牌桶算法管理并发连接数，并支持容量的动态、逐步增长。
// 服务启动时以较小容量预热，随后按配置的步长和间隔爬升到最大容量。
// 所有方法都是并发安全的。
type TokenLimiter struct {
	config config.TokenLimiterConfig

	// currentCapacity 当前的实时容量，从InitialCapacity逐步增长到MaxCapacity
	currentCapacity atomic.Int64

	// tokens 令牌桶，缓冲区大小等于MaxCapacity
	// 获取令牌即从channel读取，归还令牌即向channel写入
	tokens chan struct{}

	// 组件内部的context，通过Close方法从外部控制其生命周期
	ctx    context.Context
	cancel context.CancelFunc
}

// NewTokenLimiter 从服务器配置创建一个新的 TokenLimiter 实例。
// 配置无效时返回错误。
func NewTokenLimiter(i do.Injector) (*TokenLimiter, error) {
	cfg, err := do.Invoke[config.ServerConfig](i)
	if err != nil {
		return nil, fmt.Errorf("获取服务器配置失败: %w", err)
	}
	tlc := cfg.Websocket.TokenLimiter

	// 严格校验参数，提供更具体的错误信息
	if tlc.MaxCapacity <= 0 {
		return nil, errors.New("配置错误: MaxCapacity 必须为正数")
	}
	if tlc.InitialCapacity < 0 {
		return nil, errors.New("配置错误: InitialCapacity 不能为负数")
	}
	if tlc.InitialCapacity > tlc.MaxCapacity {
		return nil, fmt.Errorf("配置错误: InitialCapacity (%d) 不能大于 MaxCapacity (%d)", tlc.InitialCapacity, tlc.MaxCapacity)
	}
	if tlc.IncreaseStep <= 0 {
		return nil, errors.New("配置错误: IncreaseStep 必须为正数")
	}
	if tlc.IncreaseInterval <= 0 {
		return nil, errors.New("配置错误: IncreaseInterval 必须为正数")
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &TokenLimiter{
		config: tlc,
		tokens: make(chan struct{}, tlc.MaxCapacity),
		ctx:    ctx,
		cancel: cancel,
	}

	// 填充初始令牌
	for i := int64(0); i < tlc.InitialCapacity; i++ {
		l.tokens <- struct{}{}
	}
	l.currentCapacity.Store(tlc.InitialCapacity)

	return l, nil
}

// StartRampUp 逐步增加令牌桶的容量，直到达到最大容量后自动退出。
// 此方法会阻塞运行，调用者需要在独立的goroutine中运行。
// 有两种停止机制：外部传入的ctx被取消，或调用Close触发内部ctx取消。
func (t *TokenLimiter) StartRampUp(ctx context.Context) {
	ticker := time.NewTicker(t.config.IncreaseInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.ctx.Done():
			return
		case <-ticker.C:
			current := t.currentCapacity.Load()
			if current >= t.config.MaxCapacity {
				// 已达最大容量，爬升完成
				return
			}

			newCapacity := current + t.config.IncreaseStep
			if newCapacity > t.config.MaxCapacity {
				newCapacity = t.config.MaxCapacity
			}

			for i := current; i < newCapacity; i++ {
				t.tokens <- struct{}{}
			}
			t.currentCapacity.Store(newCapacity)
		}
	}
}

// Acquire 尝试获取一个令牌。非阻塞，令牌桶为空时立即返回false。
func (t *TokenLimiter) Acquire() bool {
	select {
	case <-t.tokens:
		return true
	default:
		return false
	}
}

// Release 归还一个令牌。非阻塞。
// 返回false意味着Release的调用次数超过了Acquire，通常是代码中存在逻辑错误。
func (t *TokenLimiter) Release() bool {
	select {
	case t.tokens <- struct{}{}:
		return true
	default:
		return false
	}
}

// Close 取消组件内部的context，通知StartRampUp停止。幂等，可以安全地多次调用。
// 已经发出的令牌不受影响，Acquire和Release仍可正常使用。
func (t *TokenLimiter) Close() error {
	t.cancel()
	return nil
}

// CurrentCapacity 返回限流器当前的实时容量（不是可用令牌数量）。
func (t *TokenLimiter) CurrentCapacity() int64 {
	return t.currentCapacity.Load()
}
