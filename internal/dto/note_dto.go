// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import (
	"github.com/haierkeys/fast-note-kb-service/pkg/document"
	"github.com/haierkeys/fast-note-kb-service/pkg/timex"
)

// NoteDTO full note including the document
// NoteDTO 笔记数据传输对象
type NoteDTO struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Content     *document.Node `json:"content"`
	ContentText string         `json:"contentText"`
	Version     int64          `json:"version"`
	Tags        []*TagRefDTO   `json:"tags"`
	CreatedAt   timex.Time     `json:"createdAt"`
	UpdatedAt   timex.Time     `json:"updatedAt"`
}

// NoteSummaryDTO listing row; content is left out
// NoteSummaryDTO 列表项，不含正文
type NoteSummaryDTO struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	ContentText string       `json:"contentText"`
	Version     int64        `json:"version"`
	CreatedAt   timex.Time   `json:"createdAt"`
	UpdatedAt   timex.Time   `json:"updatedAt"`
	Tags        []*TagRefDTO `json:"tags"`
}

// NoteCreateRequest 创建笔记请求参数
type NoteCreateRequest struct {
	Title   string         `json:"title" form:"title" binding:"max=255"`
	Content *document.Node `json:"content"`
}

// NoteIDRequest 笔记ID路径参数
type NoteIDRequest struct {
	ID string `uri:"id" json:"-" form:"-" binding:"required,max=64"`
}

// NoteUpdateRequest partial update; absent fields are left unchanged
// NoteUpdateRequest 笔记局部更新请求参数
type NoteUpdateRequest struct {
	ID          string         `uri:"id" json:"-" form:"-" binding:"required,max=64"`
	Title       *string        `json:"title" binding:"omitempty,max=255"`
	Content     *document.Node `json:"content"`
	BaseVersion *int64         `json:"baseVersion" binding:"omitempty,min=1"`
}

// NoteListRequest 笔记列表查询参数
type NoteListRequest struct {
	TagID     string `form:"tagId" binding:"omitempty,max=64"`
	SortBy    string `form:"sortBy" binding:"omitempty,sortfield"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}
