package dto

import "github.com/haierkeys/fast-note-kb-service/pkg/timex"

// TagDTO 标签数据传输对象
type TagDTO struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Color     string     `json:"color"`
	CreatedAt timex.Time `json:"createdAt"`
	UpdatedAt timex.Time `json:"updatedAt"`
}

// TagRefDTO flattened tag inside a note
type TagRefDTO struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Color string `json:"color"`
}

// TagCreateRequest 创建标签请求参数
type TagCreateRequest struct {
	Title string `json:"title" form:"title" binding:"required,notblank,max=64"`
	Color string `json:"color" form:"color" binding:"omitempty,tagcolor"`
}

// TagIDRequest 标签ID路径参数
type TagIDRequest struct {
	ID string `uri:"id" json:"-" form:"-" binding:"required,max=64"`
}

// TagUpdateRequest rename and/or recolor
// TagUpdateRequest 标签更新请求参数
type TagUpdateRequest struct {
	ID    string  `uri:"id" json:"-" form:"-" binding:"required,max=64"`
	Title *string `json:"title" binding:"omitempty,notblank,max=64"`
	Color *string `json:"color" binding:"omitempty,tagcolor"`
}

// NoteTagRequest 笔记与标签路径参数
type NoteTagRequest struct {
	ID    string `uri:"id" json:"-" form:"-" binding:"required,max=64"`
	TagID string `uri:"tagId" json:"-" form:"-" binding:"required,max=64"`
}

// NoteTagByTitleRequest attaches a tag by title, creating it when missing
// NoteTagByTitleRequest 按标题为笔记添加标签，不存在则创建
type NoteTagByTitleRequest struct {
	ID    string `uri:"id" json:"-" form:"-" binding:"required,max=64"`
	Title string `json:"title" form:"title" binding:"required,notblank,max=64"`
	Color string `json:"color" form:"color" binding:"omitempty,tagcolor"`
}
