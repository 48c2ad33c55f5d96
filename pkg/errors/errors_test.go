package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haierkeys/fast-note-kb-service/pkg/app"
	"github.com/haierkeys/fast-note-kb-service/pkg/code"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(lang string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(app.TraceIDKey, "trace-1")
	if lang != "" {
		c.Set(app.LangKey, lang)
	}
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) AppError {
	t.Helper()
	var e AppError
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &e), w.Body.String())
	return e
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		lang       string
		err        error
		wantStatus int
		wantCode   int
		wantMsg    string
		wantDetail []string
	}{
		{
			name:       "wrapped code",
			lang:       "zh_cn",
			err:        fmt.Errorf("update: %w", code.ErrorNoteVersionConflict),
			wantStatus: http.StatusConflict,
			wantCode:   code.ErrorNoteVersionConflict.Code(),
			wantMsg:    "笔记已在其他地方修改，请刷新后再保存",
		},
		{
			name:       "code with details",
			lang:       "en",
			err:        code.ErrorInvalidParams.WithDetails("title is required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   code.ErrorInvalidParams.Code(),
			wantMsg:    "Invalid parameters",
			wantDetail: []string{"title is required"},
		},
		{
			name:       "deadline",
			lang:       "en",
			err:        fmt.Errorf("query: %w", context.DeadlineExceeded),
			wantStatus: http.StatusInternalServerError,
			wantCode:   code.ErrorServerInternal.Code(),
			wantDetail: []string{"request timeout"},
		},
		{
			name:       "plain error",
			lang:       "en",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   code.ErrorServerInternal.Code(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext(tt.lang)
			ErrorResponse(c, tt.err)

			assert.True(t, c.IsAborted())
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus, c.GetInt("status_code"))

			e := decode(t, w)
			assert.Equal(t, tt.wantCode, e.Code)
			assert.False(t, e.Status)
			assert.Equal(t, "trace-1", e.TraceID)
			assert.False(t, e.Timestamp.IsZero())
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, e.Message)
			}
			assert.Equal(t, tt.wantDetail, e.Details)
			assert.NotContains(t, w.Body.String(), "disk on fire")
		})
	}
}

func TestErrorResponse_AppErrorPassthrough(t *testing.T) {
	c, w := newContext("")
	appErr := NewAppError(code.ErrorTagNotFound, errors.New("gone"))
	ErrorResponse(c, fmt.Errorf("wrapped: %w", appErr))

	assert.Equal(t, http.StatusNotFound, w.Code)
	e := decode(t, w)
	assert.Equal(t, code.ErrorTagNotFound.Code(), e.Code)
	assert.Equal(t, "trace-1", e.TraceID)
}

func TestAppError_Helpers(t *testing.T) {
	cause := errors.New("root")
	appErr := NewAppError(code.ErrorDBQuery, cause).WithTraceID("t").WithDetails("a", "b")

	assert.True(t, IsAppError(fmt.Errorf("x: %w", appErr)))
	assert.False(t, IsAppError(cause))
	assert.Same(t, appErr, GetAppError(fmt.Errorf("x: %w", appErr)))
	assert.Nil(t, GetAppError(cause))
	assert.ErrorIs(t, appErr, cause)
	assert.Equal(t, []string{"a", "b"}, appErr.Details)
	assert.Equal(t, http.StatusInternalServerError, (&AppError{}).statusCode())
}
