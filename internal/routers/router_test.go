package routers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haierkeys/fast-note-kb-service/internal/app"
	"github.com/haierkeys/fast-note-kb-service/internal/dao"
	"github.com/haierkeys/fast-note-kb-service/internal/dto"
	"github.com/haierkeys/fast-note-kb-service/pkg/code"
	"github.com/haierkeys/fast-note-kb-service/pkg/docsync"
	"github.com/haierkeys/fast-note-kb-service/pkg/document"
	"github.com/haierkeys/fast-note-kb-service/pkg/validator"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope[T any] struct {
	Code    int    `json:"code"`
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type testServer struct {
	app    *app.App
	engine *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &app.AppConfig{}
	cfg.Database.Type = "sqlite"
	cfg.Database.Path = ":memory:"
	cfg.Database.AutoMigrate = true
	cfg.Security.AuthTokenKey = "router-test-key"
	cfg.App.DefaultContextTimeout = 10

	db, err := dao.NewDBEngineWithConfig(cfg.GetDatabaseConfig(), zap.NewNop())
	require.NoError(t, err)
	a, err := app.NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	uni, err := validator.Setup()
	require.NoError(t, err)
	return &testServer{app: a, engine: NewRouter(a, uni)}
}

func (s *testServer) token(t *testing.T, uid int64) string {
	t.Helper()
	tok, err := s.app.TokenManager.Generate(uid, "", "")
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Reader
	if body != nil {
		b, err := sonic.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	} else {
		buf = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope[T]
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env.Data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var env envelope[any]
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	assert.False(t, env.Status)
	return env.Code
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/notes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, code.ErrorNotUserAuthToken.Code(), errorCode(t, w))

	w = s.do(t, http.MethodGet, "/api/notes", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, code.ErrorInvalidUserAuthToken.Code(), errorCode(t, w))

	w = s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_NoteFlow(t *testing.T) {
	s := newTestServer(t)
	owner := s.token(t, 1)
	stranger := s.token(t, 2)

	w := s.do(t, http.MethodPost, "/api/notes", owner, map[string]any{"title": "Plan"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	note := decode[dto.NoteDTO](t, w)
	assert.Equal(t, int64(1), note.Version)
	assert.Equal(t, "", note.ContentText)

	w = s.do(t, http.MethodPost, "/api/notes/"+note.ID+"/tags", owner, map[string]any{"title": "Ideas", "color": "blue"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tag := decode[dto.TagDTO](t, w)

	// the listing body is a bare array
	w = s.do(t, http.MethodGet, "/api/notes", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []*dto.NoteSummaryDTO
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &list), w.Body.String())
	require.Len(t, list, 1)
	require.Len(t, list[0].Tags, 1)
	assert.Equal(t, tag.ID, list[0].Tags[0].ID)

	w = s.do(t, http.MethodGet, "/api/notes", stranger, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	patch := map[string]any{"content": document.FromText("hello"), "baseVersion": 1}
	w = s.do(t, http.MethodPatch, "/api/notes/"+note.ID, owner, patch)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[dto.NoteDTO](t, w)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "hello", updated.ContentText)

	// same base version again is stale
	w = s.do(t, http.MethodPatch, "/api/notes/"+note.ID, owner, patch)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(t, code.ErrorNoteVersionConflict.Code(), errorCode(t, w))

	w = s.do(t, http.MethodGet, "/api/notes/"+note.ID, stranger, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/tags", owner, map[string]any{"title": " ideas "})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = s.do(t, http.MethodDelete, "/api/notes/"+note.ID+"/tags/"+tag.ID, owner, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodDelete, "/api/notes/"+note.ID, owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/api/notes/"+note.ID, owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// the tag survives its note
	w = s.do(t, http.MethodGet, "/api/tags", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tags := decode[[]*dto.TagDTO](t, w)
	assert.Len(t, tags, 1)
}

func TestRouter_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	owner := s.token(t, 1)

	w := s.do(t, http.MethodPost, "/api/tags", owner, map[string]any{"title": "x", "color": "#zzzzzz"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, code.ErrorInvalidParams.Code(), errorCode(t, w))

	w = s.do(t, http.MethodGet, "/api/notes?sortBy=size", owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// A docsync session saves through the real router and sees conflicts from a second writer.
func TestRouter_DocumentSync(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	saver := docsync.NewHTTPSaver(srv.URL, s.token(t, 9))
	ctx := context.Background()

	note, err := saver.Create(ctx, "Draft", nil)
	require.NoError(t, err)

	a := docsync.NewSession(note.ID, note.Version, note.Content, saver, docsync.Options{})
	b := docsync.NewSession(note.ID, note.Version, note.Content, saver, docsync.Options{})

	require.NoError(t, a.Update(document.FromText("from a")))
	require.NoError(t, a.Close(ctx))
	assert.Equal(t, int64(2), a.Version())

	require.NoError(t, b.Update(document.FromText("from b")))
	assert.ErrorIs(t, b.Flush(ctx), docsync.ErrConflict)

	fresh, err := saver.Fetch(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "from a", fresh.ContentText)

	require.NoError(t, b.Reset(fresh.Version, fresh.Content))
	require.NoError(t, b.Update(document.FromText("from a, then b")))
	require.NoError(t, b.Close(ctx))
	assert.Equal(t, int64(3), b.Version())
}

func TestPrivateRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tt := range []struct {
		mode      string
		pprofCode int
	}{
		{"release", http.StatusNotFound},
		{"debug", http.StatusOK},
	} {
		t.Run(tt.mode, func(t *testing.T) {
			r := NewPrivateRouterWithLogger(tt.mode, zap.NewNop())

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), "go_goroutines")

			w = httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/vars", nil))
			assert.Equal(t, http.StatusOK, w.Code)

			w = httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, DefaultPrefix+"/goroutine", nil))
			assert.Equal(t, tt.pprofCode, w.Code)
		})
	}
}
