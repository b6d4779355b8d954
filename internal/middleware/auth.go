package middleware

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"corp_edu_backend/internal/model"
	"corp_edu_backend/internal/util"
	"corp_edu_backend/pkg/logger"
)

// AuthMiddleware 校验 Bearer token；websocket 握手无法带请求头，允许使用 token 查询参数
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, secret)
		if err != nil {
			logger.Log.Debug("JWT rejected", zap.String("path", c.FullPath()), zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if !slices.Contains(roles, user.Role) {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

type activityStore interface {
	Touch(ctx context.Context, id string, at time.Time) error
}

// ActivityMiddleware 记录用户最近活跃时间，同一用户在 interval 内只写一次
func ActivityMiddleware(store activityStore, interval time.Duration) gin.HandlerFunc {
	var last sync.Map
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims != nil {
			now := time.Now()
			prev, seen := last.Load(claims.UserID)
			if !seen || now.Sub(prev.(time.Time)) >= interval {
				last.Store(claims.UserID, now)
				// 异步更新，不阻塞主流程
				go func(id string) {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := store.Touch(ctx, id, now); err != nil {
						logger.Log.Warn("Update last seen failed", zap.String("userId", id), zap.Error(err))
					}
				}(claims.UserID)
			}
		}
		c.Next()
	}
}
