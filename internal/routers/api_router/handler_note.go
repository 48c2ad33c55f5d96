package api_router

import (
	"net/http"

	"github.com/haierkeys/fast-note-kb-service/internal/app"
	"github.com/haierkeys/fast-note-kb-service/internal/dto"
	pkgapp "github.com/haierkeys/fast-note-kb-service/pkg/app"
	"github.com/haierkeys/fast-note-kb-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoteHandler 笔记 API 路由处理器
type NoteHandler struct {
	*Handler
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App) *NoteHandler {
	return &NoteHandler{Handler: NewHandler(a)}
}

// List 获取笔记列表（含标签）
// @Summary 获取笔记列表
// @Description 返回当前用户的笔记摘要数组（不含正文），每条附带扁平化标签；响应体为裸 JSON 数组
// @Tags 笔记
// @Security UserAuthToken
// @Produce json
// @Param params query dto.NoteListRequest false "查询参数"
// @Success 200 {array} dto.NoteSummaryDTO
// @Router /api/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	params := &dto.NoteListRequest{}
	uid, ok := h.bind(c, "NoteHandler.List", params)
	if !ok {
		return
	}

	notes, err := h.App.ListingService.ListNotesWithTags(c.Request.Context(), uid, params)
	if err != nil {
		h.fail(c, "NoteHandler.List", err)
		return
	}
	pkgapp.NewResponse(c).ToResponseRaw(http.StatusOK, notes)
}

// Create 创建笔记
// @Summary 创建笔记
// @Tags 笔记
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.NoteCreateRequest true "笔记内容"
// @Success 201 {object} pkgapp.Res{data=dto.NoteDTO}
// @Router /api/notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	params := &dto.NoteCreateRequest{}
	uid, ok := h.bind(c, "NoteHandler.Create", params)
	if !ok {
		return
	}

	note, err := h.App.NoteService.Create(c.Request.Context(), uid, params)
	if err != nil {
		h.fail(c, "NoteHandler.Create", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Created.WithData(note))
}

// Get 获取单条笔记（含正文与版本）
// @Summary 获取笔记详情
// @Tags 笔记
// @Security UserAuthToken
// @Produce json
// @Param id path string true "笔记 ID"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO}
// @Failure 404 {object} apperrors.AppError
// @Router /api/notes/{id} [get]
func (h *NoteHandler) Get(c *gin.Context) {
	params := &dto.NoteIDRequest{}
	uid, ok := h.bind(c, "NoteHandler.Get", params)
	if !ok {
		return
	}

	note, err := h.App.NoteService.Get(c.Request.Context(), uid, params.ID)
	if err != nil {
		h.fail(c, "NoteHandler.Get", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(note))
}

// Update 局部更新笔记（文档同步保存 / 修改标题）
// @Summary 更新笔记
// @Description 携带 baseVersion 时，若服务端版本已变化则返回 409
// @Tags 笔记
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param id path string true "笔记 ID"
// @Param params body dto.NoteUpdateRequest true "更新内容"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO}
// @Failure 409 {object} apperrors.AppError
// @Router /api/notes/{id} [patch]
func (h *NoteHandler) Update(c *gin.Context) {
	params := &dto.NoteUpdateRequest{}
	uid, ok := h.bind(c, "NoteHandler.Update", params)
	if !ok {
		return
	}

	note, err := h.App.NoteService.Update(c.Request.Context(), uid, params)
	if err != nil {
		h.fail(c, "NoteHandler.Update", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(note))
}

// Delete 删除笔记及其标签关联
// @Summary 删除笔记
// @Tags 笔记
// @Security UserAuthToken
// @Produce json
// @Param id path string true "笔记 ID"
// @Success 200 {object} pkgapp.Res
// @Failure 404 {object} apperrors.AppError
// @Router /api/notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	params := &dto.NoteIDRequest{}
	uid, ok := h.bind(c, "NoteHandler.Delete", params)
	if !ok {
		return
	}

	if err := h.App.NoteService.Delete(c.Request.Context(), uid, params.ID); err != nil {
		h.fail(c, "NoteHandler.Delete", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success)
}
