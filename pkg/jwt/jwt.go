package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/YaoAzure/wscompress/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/do/v2"
)

var (
	ErrDecodeJWTTokenFailed   = errors.New("JWT令牌解析失败")
	ErrInvalidJWTToken        = errors.New("无效的令牌")
	ErrSupportedSignAlgorithm = errors.New("不支持的签名算法")
)

type MapClaims jwt.MapClaims

// defaultTokenTTL 未显式指定exp时的默认有效期
const defaultTokenTTL = 24 * time.Hour

// Token 通用JWT处理器，使用HS256对称签名
type Token struct {
	key    string // 签名密钥
	issuer string // 签发者，通常是服务名
}

func NewToken(i do.Injector) (*Token, error) {
	jwtConfig := do.MustInvoke[config.JWTConfig](i)
	return &Token{
		key:    jwtConfig.Key,
		issuer: jwtConfig.Issuer,
	}, nil
}

// Encode 生成JWT令牌。在自定义声明的基础上补齐iat/iss，
// 未指定exp时按默认有效期设置。自定义声明优先于默认声明。
func (t *Token) Encode(customClaims MapClaims) (string, error) {
	claims := jwt.MapClaims{
		"iat": time.Now().Unix(),
		"iss": t.issuer,
	}
	for k, v := range customClaims {
		claims[k] = v
	}
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(defaultTokenTTL).Unix()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.key))
}

// Decode 解码并校验JWT令牌，支持携带Bearer前缀的令牌串
func (t *Token) Decode(tokenString string) (MapClaims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, t.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeJWTTokenFailed, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w", ErrInvalidJWTToken)
	}
	return MapClaims(claims), nil
}

// keyFunc 返回验签密钥，同时拒绝HMAC以外的签名算法（防算法替换攻击）
func (t *Token) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: %v", ErrSupportedSignAlgorithm, token.Header["alg"])
	}
	return []byte(t.key), nil
}
