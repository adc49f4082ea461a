package redis

import (
	"github.com/YaoAzure/wscompress/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"
)

// Package 定义 Redis 包的服务包，使用 Package Loading 模式
var Package = do.Package(
	do.Lazy(NewRedisClient),
)

// NewRedisClient 根据配置创建go-redis客户端。
// 以 redis.Cmdable 接口形式注册到容器，测试时可以替换为mock实现。
func NewRedisClient(i do.Injector) (redis.Cmdable, error) {
	redisConfig, err := do.Invoke[config.RedisConfig](i)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(&redis.Options{
		Addr:     redisConfig.Addr,
		Password: redisConfig.Password,
		DB:       redisConfig.DB,
		PoolSize: redisConfig.PoolSize,
	}), nil
}
