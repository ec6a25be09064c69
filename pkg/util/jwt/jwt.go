// Package jwt 解析上游网关签发的身份令牌
// 认证本身在上游完成，这里只校验签名并取出 customer_id 与 scope
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// 上游签发方共享的签名密钥，由 Init 设置
var jwtSecret []byte

// Init 初始化签名密钥
func Init(secret string) {
	jwtSecret = []byte(secret)
}

// Claims 身份令牌声明
// Scopes 标识调用方可用的内部接口范围，如 "internal" 或 "marketing"
type Claims struct {
	CustomerId string   `json:"customer_id"`
	Scopes     []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// HasScope 判断令牌是否携带指定 scope
func (c *Claims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// GenerateIdentityToken 签发身份令牌
// 生产路径由上游网关签发，这里主要供集成测试使用
func GenerateIdentityToken(customerId string, scopes []string, ttl time.Duration) (string, error) {
	claims := Claims{
		CustomerId: customerId,
		Scopes:     scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "trade_chat",
			Subject:   "identity",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken 解析并验证身份令牌
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
