package api_router

import (
	"github.com/haierkeys/fast-note-kb-service/internal/app"
	"github.com/haierkeys/fast-note-kb-service/internal/dto"
	pkgapp "github.com/haierkeys/fast-note-kb-service/pkg/app"
	"github.com/haierkeys/fast-note-kb-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoteTagHandler 笔记标签关联 API 路由处理器
type NoteTagHandler struct {
	*Handler
}

// NewNoteTagHandler 创建 NoteTagHandler 实例
func NewNoteTagHandler(a *app.App) *NoteTagHandler {
	return &NoteTagHandler{Handler: NewHandler(a)}
}

// List 获取笔记的标签
// @Summary 笔记的标签
// @Tags 笔记标签
// @Security UserAuthToken
// @Produce json
// @Param id path string true "笔记 ID"
// @Success 200 {object} pkgapp.Res{data=[]dto.TagRefDTO}
// @Router /api/notes/{id}/tags [get]
func (h *NoteTagHandler) List(c *gin.Context) {
	params := &dto.NoteIDRequest{}
	uid, ok := h.bind(c, "NoteTagHandler.List", params)
	if !ok {
		return
	}

	tags, err := h.App.NoteTagService.TagsForNote(c.Request.Context(), uid, params.ID)
	if err != nil {
		h.fail(c, "NoteTagHandler.List", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(tags))
}

// Attach 为笔记添加已有标签（重复添加无副作用）
// @Summary 添加标签
// @Tags 笔记标签
// @Security UserAuthToken
// @Produce json
// @Param id path string true "笔记 ID"
// @Param tagId path string true "标签 ID"
// @Success 200 {object} pkgapp.Res
// @Router /api/notes/{id}/tags/{tagId} [put]
func (h *NoteTagHandler) Attach(c *gin.Context) {
	params := &dto.NoteTagRequest{}
	uid, ok := h.bind(c, "NoteTagHandler.Attach", params)
	if !ok {
		return
	}

	if err := h.App.NoteTagService.Attach(c.Request.Context(), uid, params.ID, params.TagID); err != nil {
		h.fail(c, "NoteTagHandler.Attach", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success)
}

// AttachByTitle 按标题添加标签，不存在则创建
// @Summary 按标题添加标签
// @Tags 笔记标签
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param id path string true "笔记 ID"
// @Param params body dto.NoteTagByTitleRequest true "标签标题与颜色"
// @Success 200 {object} pkgapp.Res{data=dto.TagDTO}
// @Router /api/notes/{id}/tags [post]
func (h *NoteTagHandler) AttachByTitle(c *gin.Context) {
	params := &dto.NoteTagByTitleRequest{}
	uid, ok := h.bind(c, "NoteTagHandler.AttachByTitle", params)
	if !ok {
		return
	}

	tag, err := h.App.NoteTagService.AttachByTitle(c.Request.Context(), uid, params)
	if err != nil {
		h.fail(c, "NoteTagHandler.AttachByTitle", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(tag))
}

// Detach 移除笔记上的标签
// @Summary 移除标签
// @Tags 笔记标签
// @Security UserAuthToken
// @Produce json
// @Param id path string true "笔记 ID"
// @Param tagId path string true "标签 ID"
// @Success 200 {object} pkgapp.Res
// @Router /api/notes/{id}/tags/{tagId} [delete]
func (h *NoteTagHandler) Detach(c *gin.Context) {
	params := &dto.NoteTagRequest{}
	uid, ok := h.bind(c, "NoteTagHandler.Detach", params)
	if !ok {
		return
	}

	if err := h.App.NoteTagService.Detach(c.Request.Context(), uid, params.ID, params.TagID); err != nil {
		h.fail(c, "NoteTagHandler.Detach", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success)
}
