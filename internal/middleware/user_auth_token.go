package middleware

import (
	"strings"

	"github.com/haierkeys/fast-note-kb-service/pkg/app"
	"github.com/haierkeys/fast-note-kb-service/pkg/code"
	apperrors "github.com/haierkeys/fast-note-kb-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// tokenFromRequest looks at the query first, then the headers
func tokenFromRequest(c *gin.Context) string {
	for _, k := range []string{"authorization", "Authorization", "token", "Token"} {
		if s, ok := c.GetQuery(k); ok && s != "" {
			return s
		}
	}
	for _, k := range []string{"Authorization", "Token"} {
		if s := c.GetHeader(k); s != "" {
			return s
		}
	}
	return ""
}

// UserAuthTokenWithConfig 用户 Token 认证中间件（使用注入的密钥）
// 成功时将身份写入 gin.Context 与 request.Context，失败时返回 401 且不执行后续处理
func UserAuthTokenWithConfig(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(tokenFromRequest(c))
		if token == "" || strings.EqualFold(token, "bearer") {
			apperrors.ErrorResponse(c, code.ErrorNotUserAuthToken)
			return
		}

		if err := app.SetTokenToContextWithKey(c, token, secretKey); err != nil {
			apperrors.ErrorResponse(c, code.ErrorInvalidUserAuthToken)
			return
		}

		c.Next()
	}
}
