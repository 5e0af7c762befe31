package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xiebiao/bookstore-backoffice/pkg/errors"
	"github.com/xiebiao/bookstore-backoffice/pkg/jwt"
	"github.com/xiebiao/bookstore-backoffice/pkg/response"
)

const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
)

// AuthMiddleware JWT认证中间件
// Token由统一登录服务签发,这里只负责校验并把用户信息注入Context
type AuthMiddleware struct {
	jwtManager *jwt.Manager
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// RequireAuth 要求登录
//
//	orders := v1.Group("/orders")
//	orders.Use(authMiddleware.RequireAuth())
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, errors.ErrUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Error(c, errors.ErrInvalidToken)
			return
		}

		claims, err := m.jwtManager.Parse(parts[1])
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Next()
	}
}

// GetUserID 从Context获取当前登录用户ID,未登录返回uuid.Nil
func GetUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// GetEmail 从Context获取当前登录用户邮箱
func GetEmail(c *gin.Context) string {
	return c.GetString(ctxEmail)
}
