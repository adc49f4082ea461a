package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/do/v2"
)

// UserClaims 用户JWT声明，包含用户归属的业务域与用户ID
type UserClaims struct {
	UserID               int64 // 用户ID，唯一标识用户身份
	BizID                int64 // 业务ID，标识用户所属的业务域或租户
	jwt.RegisteredClaims       // 标准JWT声明（iat、exp、iss等）
}

// UserToken 在通用Token之上收窄到用户令牌的编解码
type UserToken struct {
	token *Token
}

func NewUserToken(i do.Injector) (*UserToken, error) {
	token, err := do.Invoke[*Token](i)
	if err != nil {
		return nil, err
	}
	return &UserToken{token: token}, nil
}

// Encode 生成用户JWT令牌，标准声明只在显式设置时写入
func (t *UserToken) Encode(uc UserClaims) (string, error) {
	claims := MapClaims{
		"user_id": uc.UserID,
		"biz_id":  uc.BizID,
	}
	if uc.IssuedAt != nil {
		claims["iat"] = uc.IssuedAt.Unix()
	}
	if uc.ExpiresAt != nil {
		claims["exp"] = uc.ExpiresAt.Unix()
	}
	if uc.Issuer != "" {
		claims["iss"] = uc.Issuer
	}
	return t.token.Encode(claims)
}

// Decode 解码用户JWT令牌。
// JSON数字经jwt.Parse后统一是float64，这里转换回业务使用的int64。
func (t *UserToken) Decode(tokenString string) (UserClaims, error) {
	mapClaims, err := t.token.Decode(tokenString)
	if err != nil {
		return UserClaims{}, err
	}

	claims := UserClaims{
		UserID: int64(claimFloat(mapClaims, "user_id")),
		BizID:  int64(claimFloat(mapClaims, "biz_id")),
	}
	if iat := claimFloat(mapClaims, "iat"); iat != 0 {
		claims.IssuedAt = jwt.NewNumericDate(time.Unix(int64(iat), 0))
	}
	if exp := claimFloat(mapClaims, "exp"); exp != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Unix(int64(exp), 0))
	}
	if iss, ok := mapClaims["iss"].(string); ok {
		claims.Issuer = iss
	}
	return claims, nil
}

func claimFloat(claims MapClaims, key string) float64 {
	v, _ := claims[key].(float64)
	return v
}
