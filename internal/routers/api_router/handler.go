// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"
	"errors"

	"github.com/haierkeys/fast-note-kb-service/internal/app"
	pkgapp "github.com/haierkeys/fast-note-kb-service/pkg/app"
	"github.com/haierkeys/fast-note-kb-service/pkg/code"
	apperrors "github.com/haierkeys/fast-note-kb-service/pkg/errors"
	"github.com/haierkeys/fast-note-kb-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// bind binds and validates params and resolves the caller. On failure the error
// response is already written and ok is false.
func (h *Handler) bind(c *gin.Context, method string, params any) (uid int64, ok bool) {
	if params != nil {
		valid, errs := pkgapp.BindAndValid(c, params)
		if !valid {
			h.App.Logger().Warn(method+".BindAndValid", zap.Error(errs),
				zap.String(logger.FieldTraceID, pkgapp.GetTraceIDFromGin(c)))
			apperrors.ErrorResponse(c, code.ErrorInvalidParams.WithDetails(errs.Errors()...))
			return 0, false
		}
	}

	uid = pkgapp.GetUID(c)
	if uid == 0 {
		h.App.Logger().Error(method + " err uid=0")
		apperrors.ErrorResponse(c, code.ErrorInvalidUserAuthToken)
		return 0, false
	}
	return uid, true
}

// fail logs unexpected errors and writes the mapped error response
func (h *Handler) fail(c *gin.Context, method string, err error) {
	h.logError(c.Request.Context(), method, err)
	apperrors.ErrorResponse(c, err)
}

func (h *Handler) logError(ctx context.Context, method string, err error) {
	var ce *code.Code
	if errors.As(err, &ce) && ce.StatusCode() < 500 {
		return
	}
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String(logger.FieldTraceID, pkgapp.GetTraceID(ctx)),
	)
}
