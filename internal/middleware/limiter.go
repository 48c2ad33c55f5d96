package middleware

import (
	"github.com/haierkeys/fast-note-kb-service/pkg/code"
	apperrors "github.com/haierkeys/fast-note-kb-service/pkg/errors"
	"github.com/haierkeys/fast-note-kb-service/pkg/limiter"

	"github.com/gin-gonic/gin"
)

// RateLimiter creates rate limiting middleware
// RateLimiter 创建限流中间件
func RateLimiter(l limiter.Face) gin.HandlerFunc {
	return func(c *gin.Context) {
		if bucket, ok := l.GetBucket(l.Key(c)); ok {
			if bucket.TakeAvailable(1) == 0 {
				apperrors.ErrorResponse(c, code.ErrorTooManyRequests)
				return
			}
		}
		c.Next()
	}
}
