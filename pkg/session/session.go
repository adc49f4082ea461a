package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyFormat Session在Redis中的存储键格式
const keyFormat = "wscompress:session:bizId:%d:userId:%d"

var (
	_ Session = &redisSession{}

	// ErrSessionExisted 表示尝试创建的Session已经存在。
	ErrSessionExisted = errors.New("session已存在")

	// ErrCreateSessionFailed 表示一个通用的创建失败，通常由底层Redis错误引起。
	ErrCreateSessionFailed = errors.New("创建session失败")

	// ErrDestroySessionFailed 表示销毁Session时发生错误。
	ErrDestroySessionFailed = errors.New("销毁session失败")

	// luaSetSessionIfNotExist 原子性地创建Session：只有Key不存在时才执行HSET。
	// 返回1表示创建成功，0表示Key已存在。
	// unpack(ARGV) 需要 Redis 4.0.0+，性能优于循环HSET。
	luaSetSessionIfNotExist = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
    redis.call('HSET', KEYS[1], unpack(ARGV))
    return 1
else
    return 0
end
`)
)

type Session interface {
	// UserInfo 返回当前Session关联的用户身份信息。
	UserInfo() UserInfo
	// Get 从Session中获取一个字段值。
	// Key不存在时返回的错误满足 errors.Is(err, redis.Nil)。
	Get(ctx context.Context, key string) (string, error)
	// Set 向Session中设置一个字段键值对。
	Set(ctx context.Context, key, value string) error
	// Destroy 销毁整个Session。
	Destroy(ctx context.Context) error
}

// UserInfo 用户会话信息
type UserInfo struct {
	BizID     int64 `json:"bizId"`     // 业务域或者是租户ID
	UserID    int64 `json:"userId"`    // 用户ID
	AutoClose bool  `json:"autoClose"` // 是否允许空闲时自动关闭连接
}

// redisSession 是 Session 接口的Redis实现，Session内容存储在一个Hash里。
type redisSession struct {
	userInfo UserInfo
	rdb      redis.Cmdable
	key      string
}

func newRedisSession(userInfo UserInfo, rdb redis.Cmdable) *redisSession {
	return &redisSession{
		userInfo: userInfo,
		rdb:      rdb,
		key:      fmt.Sprintf(keyFormat, userInfo.BizID, userInfo.UserID),
	}
}

// initialize 在Redis中实际创建Session。
// bizId和userId已经编码在key中，初始字段不再冗余存储它们。
func (s *redisSession) initialize(ctx context.Context) error {
	args := []any{
		"loginTime", time.Now().Format(time.RFC3339Nano),
		"autoClose", strconv.FormatBool(s.userInfo.AutoClose),
	}
	res, err := luaSetSessionIfNotExist.Run(ctx, s.rdb, []string{s.key}, args...).Result()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreateSessionFailed, err)
	}

	created, ok := res.(int64)
	if !ok {
		// 脚本只会返回整数，类型对不上说明脚本或客户端行为异常
		return fmt.Errorf("%w: 未知的脚本结果类型: %T", ErrCreateSessionFailed, res)
	}
	if created != 1 {
		return ErrSessionExisted
	}
	return nil
}

func (s *redisSession) UserInfo() UserInfo { return s.userInfo }

func (s *redisSession) Get(ctx context.Context, key string) (string, error) {
	return s.rdb.HGet(ctx, s.key, key).Result()
}

func (s *redisSession) Set(ctx context.Context, key, value string) error {
	// value 明确使用string：go-redis对结构体的默认序列化格式不可控，
	// 上层需要结构化数据时自行编码
	return s.rdb.HSet(ctx, s.key, key, value).Err()
}

func (s *redisSession) Destroy(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrDestroySessionFailed, err)
	}
	return nil
}
