package middleware

import (
	"net/http"
	"strings"

	"GameShelf/internal/pkg"
	"GameShelf/internal/repository/redis"

	"github.com/gin-gonic/gin"
)

const ContextUserIDKey = "user_id"

// AuthMiddleware 解析 Bearer token 并和 Redis 里的登录态比对，
// 通过后注入 user_id 并顺延过期时间
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing or malformed authorization header"})
			return
		}

		claims, err := pkg.ParseAccess(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid or expired token"})
			return
		}

		userRepo := &redis.UserRepository{}
		origin, err := userRepo.GetUserToken(claims.UserID)
		if err != nil || origin != parts[1] {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "account logged in elsewhere"})
			return
		}
		_ = userRepo.ExtendUserToken(claims.UserID)

		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// UserID 从上下文取登录用户
func UserID(c *gin.Context) uint64 {
	v, _ := c.Get(ContextUserIDKey)
	id, _ := v.(uint64)
	return id
}
