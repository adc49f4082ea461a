package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"
)

type Builder interface {
	// Build 获取或创建一个Session。
	// 无论Session是新创建的还是已存在的，都会返回一个可用的Session实例，
	// isNew 表示Session是否为本次调用新创建的。
	Build(ctx context.Context, info UserInfo) (session Session, isNew bool, err error)
}

// RedisSessionBuilder 是 Builder 接口的Redis实现
type RedisSessionBuilder struct {
	rdb redis.Cmdable
}

func NewRedisSessionBuilder(i do.Injector) (Builder, error) {
	rdb, err := do.Invoke[redis.Cmdable](i)
	if err != nil {
		return nil, err
	}
	return &RedisSessionBuilder{rdb: rdb}, nil
}

// Build 实现 GetOrCreate 语义：不存在则创建，已存在则返回现有会话。
func (r *RedisSessionBuilder) Build(ctx context.Context, userInfo UserInfo) (session Session, isNew bool, err error) {
	s := newRedisSession(userInfo, r.rdb)
	err = s.initialize(ctx)
	switch {
	case err == nil:
		return s, true, nil
	case errors.Is(err, ErrSessionExisted):
		// 已存在不算失败，返回现有session实例
		return s, false, nil
	default:
		// redis连接失败、权限错误等才是真正的失败
		return nil, false, err
	}
}
