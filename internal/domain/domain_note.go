// Package domain 定义领域模型和接口
package domain

import (
	"time"

	"github.com/haierkeys/fast-note-kb-service/pkg/document"
)

// DefaultTitle is shown by clients for notes created without a title
const DefaultTitle = "Untitled"

// Note 笔记领域模型
type Note struct {
	ID          string
	UID         int64
	Title       string
	Content     *document.Node
	ContentText string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NotePatch carries the fields of a partial note update; nil means "leave as is"
// NotePatch 笔记局部更新
type NotePatch struct {
	Title   *string
	Content *document.Node
	// BaseVersion, when set, must equal the stored version
	BaseVersion *int64
}

// IsEmpty reports whether the patch changes nothing
func (p *NotePatch) IsEmpty() bool {
	return p == nil || (p.Title == nil && p.Content == nil)
}

// NoteSummary is the listing projection of a note; content is excluded
// NoteSummary 笔记列表投影，不含正文
type NoteSummary struct {
	ID          string
	Title       string
	ContentText string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Tags        []*TagRef
}

// NoteSort is a listing sort key
type NoteSort string

const (
	NoteSortUpdatedAt NoteSort = "updatedAt"
	NoteSortCreatedAt NoteSort = "createdAt"
	NoteSortTitle     NoteSort = "title"
)

// NoteListOptions 列表查询选项
type NoteListOptions struct {
	// TagID restricts the listing to notes carrying this tag
	TagID    string
	SortBy   NoteSort
	SortDesc bool
}
