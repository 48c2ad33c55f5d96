package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// DefaultTagColor 默认标签颜色
const DefaultTagColor = "gray"

// Tag 标签领域模型
type Tag struct {
	ID        string
	UID       int64
	Title     string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TagRef is the flattened tag carried by listings
type TagRef struct {
	ID    string
	Title string
	Color string
}

// Ref returns the flattened form of t
func (t *Tag) Ref() *TagRef {
	return &TagRef{ID: t.ID, Title: t.Title, Color: t.Color}
}

// TagKey normalizes a tag title for uniqueness checks: Unicode case folding,
// trimmed, inner whitespace collapsed to one space.
// TagKey 规范化标签标题，用于唯一性判断
func TagKey(title string) string {
	folded := cases.Fold().String(title)
	return strings.Join(strings.Fields(folded), " ")
}

// CleanTagTitle trims and collapses whitespace while keeping the original case
func CleanTagTitle(title string) string {
	return strings.Join(strings.Fields(title), " ")
}

// NoteTag is one association between a note and a tag of the same owner
// NoteTag 笔记与标签的关联
type NoteTag struct {
	NoteID    string
	TagID     string
	UID       int64
	CreatedAt time.Time
}

// OwnerStats per-owner totals
type OwnerStats struct {
	UID   int64
	Notes int64
	Tags  int64
	Links int64
}
