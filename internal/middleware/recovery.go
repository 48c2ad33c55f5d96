package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/haierkeys/fast-note-kb-service/pkg/app"
	"github.com/haierkeys/fast-note-kb-service/pkg/code"
	apperrors "github.com/haierkeys/fast-note-kb-service/pkg/errors"
	"github.com/haierkeys/fast-note-kb-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryWithLogger 创建带日志器的 Recovery 中间件
func RecoveryWithLogger(lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			fields := []zap.Field{
				zap.String("router", c.Request.URL.Path),
				zap.String(logger.FieldMethod, c.Request.Method),
				zap.String("query", c.Request.URL.RawQuery),
				zap.String("ip", c.ClientIP()),
				zap.String(logger.FieldTraceID, app.GetTraceIDFromGin(c)),
				zap.String("stack", string(debug.Stack())),
			}
			if err, ok := r.(error); ok {
				lg.Error("Recovered from panic", append(fields, zap.Error(err))...)
			} else {
				lg.Error("Recovered from unknown panic", append(fields, zap.String("panic_value", fmt.Sprintf("%v", r)))...)
			}

			// the panic value stays in the log; the client only gets the trace id
			apperrors.ErrorResponse(c, code.ErrorServerInternal)
		}()

		c.Next()
	}
}
