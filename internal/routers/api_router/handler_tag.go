package api_router

import (
	"github.com/haierkeys/fast-note-kb-service/internal/app"
	"github.com/haierkeys/fast-note-kb-service/internal/dto"
	pkgapp "github.com/haierkeys/fast-note-kb-service/pkg/app"
	"github.com/haierkeys/fast-note-kb-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// TagHandler 标签 API 路由处理器
type TagHandler struct {
	*Handler
}

// NewTagHandler 创建 TagHandler 实例
func NewTagHandler(a *app.App) *TagHandler {
	return &TagHandler{Handler: NewHandler(a)}
}

// List 获取标签列表
// @Summary 获取标签列表
// @Tags 标签
// @Security UserAuthToken
// @Produce json
// @Success 200 {object} pkgapp.Res{data=[]dto.TagDTO}
// @Router /api/tags [get]
func (h *TagHandler) List(c *gin.Context) {
	uid, ok := h.bind(c, "TagHandler.List", nil)
	if !ok {
		return
	}

	tags, err := h.App.TagService.List(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, "TagHandler.List", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(tags))
}

// Create 创建标签
// @Summary 创建标签
// @Tags 标签
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.TagCreateRequest true "标签"
// @Success 201 {object} pkgapp.Res{data=dto.TagDTO}
// @Failure 409 {object} apperrors.AppError
// @Router /api/tags [post]
func (h *TagHandler) Create(c *gin.Context) {
	params := &dto.TagCreateRequest{}
	uid, ok := h.bind(c, "TagHandler.Create", params)
	if !ok {
		return
	}

	tag, err := h.App.TagService.Create(c.Request.Context(), uid, params)
	if err != nil {
		h.fail(c, "TagHandler.Create", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Created.WithData(tag))
}

// Update 重命名或修改颜色
// @Summary 更新标签
// @Tags 标签
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param id path string true "标签 ID"
// @Param params body dto.TagUpdateRequest true "标签"
// @Success 200 {object} pkgapp.Res{data=dto.TagDTO}
// @Router /api/tags/{id} [patch]
func (h *TagHandler) Update(c *gin.Context) {
	params := &dto.TagUpdateRequest{}
	uid, ok := h.bind(c, "TagHandler.Update", params)
	if !ok {
		return
	}

	tag, err := h.App.TagService.Update(c.Request.Context(), uid, params)
	if err != nil {
		h.fail(c, "TagHandler.Update", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(tag))
}

// Delete 删除标签（不存在时同样返回成功）
// @Summary 删除标签
// @Tags 标签
// @Security UserAuthToken
// @Produce json
// @Param id path string true "标签 ID"
// @Success 200 {object} pkgapp.Res
// @Router /api/tags/{id} [delete]
func (h *TagHandler) Delete(c *gin.Context) {
	params := &dto.TagIDRequest{}
	uid, ok := h.bind(c, "TagHandler.Delete", params)
	if !ok {
		return
	}

	if err := h.App.TagService.Delete(c.Request.Context(), uid, params.ID); err != nil {
		h.fail(c, "TagHandler.Delete", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success)
}

// Notes 获取带有该标签的笔记
// @Summary 标签下的笔记
// @Tags 标签
// @Security UserAuthToken
// @Produce json
// @Param id path string true "标签 ID"
// @Success 200 {object} pkgapp.Res{data=[]dto.NoteSummaryDTO}
// @Router /api/tags/{id}/notes [get]
func (h *TagHandler) Notes(c *gin.Context) {
	params := &dto.TagIDRequest{}
	uid, ok := h.bind(c, "TagHandler.Notes", params)
	if !ok {
		return
	}

	notes, err := h.App.NoteTagService.NotesForTag(c.Request.Context(), uid, params.ID)
	if err != nil {
		h.fail(c, "TagHandler.Notes", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(notes))
}
