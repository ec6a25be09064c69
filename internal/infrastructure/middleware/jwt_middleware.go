package middleware

import (
	"net/http"
	"strings"

	"trade_chat_server/pkg/errorx"
	"trade_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// IdentityAuth 身份信任中间件
// 校验上游网关签发的 Bearer 令牌，并将 customer_id 与 scopes 存入上下文
func IdentityAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从 Header 获取 Token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "缺少身份令牌",
			})
			return
		}

		// 2. 解析 Bearer Token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "令牌格式错误，请使用 Bearer Token",
			})
			return
		}

		// 3. 校验签名
		claims, err := jwt.ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "令牌已过期或无效",
			})
			return
		}

		// 4. 将身份信息存入上下文，供后续 Handler 使用
		c.Set("customer_id", claims.CustomerId)
		c.Set("scopes", claims.Scopes)
		c.Next()
	}
}

// RequireScope 内部接口 scope 校验中间件
// 系统消息注入、营销管理等内部路由要求调用方令牌携带指定 scope
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		scopes, _ := c.Get("scopes")
		if ss, ok := scopes.([]string); ok {
			for _, s := range ss {
				if s == scope {
					c.Next()
					return
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code": errorx.CodeForbidden,
			"msg":  "令牌缺少所需 scope: " + scope,
		})
	}
}

// GetCustomerId 从上下文取出身份中间件注入的 customer_id
func GetCustomerId(c *gin.Context) string {
	return c.GetString("customer_id")
}
