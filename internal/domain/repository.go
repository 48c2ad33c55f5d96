package domain

import "context"

// NoteRepository 笔记仓储接口
// Every method is scoped to uid; a foreign row behaves as absent.
type NoteRepository interface {
	// Create 创建笔记
	Create(ctx context.Context, note *Note, uid int64) (*Note, error)

	// GetByID 根据ID获取笔记，不存在返回 ErrNotFound
	GetByID(ctx context.Context, id string, uid int64) (*Note, error)

	// Update applies patch with a compare-and-swap on version.
	// Returns ErrNotFound or ErrVersionConflict.
	Update(ctx context.Context, id string, patch *NotePatch, uid int64) (*Note, error)

	// Delete removes the note and its tag associations in one transaction
	Delete(ctx context.Context, id string, uid int64) error

	// ListSummaries 获取笔记摘要列表（不含正文和标签）
	ListSummaries(ctx context.Context, uid int64, opts NoteListOptions) ([]*NoteSummary, error)

	// Count 统计用户笔记数量
	Count(ctx context.Context, uid int64) (int64, error)
}

// TagRepository 标签仓储接口
type TagRepository interface {
	// Create 创建标签，标题重复返回 ErrTagTitleExists
	Create(ctx context.Context, tag *Tag, uid int64) (*Tag, error)

	// GetByID 根据ID获取标签
	GetByID(ctx context.Context, id string, uid int64) (*Tag, error)

	// GetByTitle finds a tag by normalized title
	GetByTitle(ctx context.Context, title string, uid int64) (*Tag, error)

	// GetOrCreate returns the tag with the same normalized title, creating it when missing.
	// The bool reports whether a tag was created.
	GetOrCreate(ctx context.Context, tag *Tag, uid int64) (*Tag, bool, error)

	// Update renames and/or recolors; nil fields are left untouched
	Update(ctx context.Context, id string, title, color *string, uid int64) (*Tag, error)

	// Delete removes the tag and its associations; absent is not an error
	Delete(ctx context.Context, id string, uid int64) error

	// List 获取用户全部标签
	List(ctx context.Context, uid int64) ([]*Tag, error)

	// Count 统计用户标签数量
	Count(ctx context.Context, uid int64) (int64, error)
}

// NoteTagRepository 笔记标签关联仓储接口
type NoteTagRepository interface {
	// Attach verifies both endpoints belong to uid, then links them; idempotent
	Attach(ctx context.Context, noteID, tagID string, uid int64) error

	// Detach verifies the note belongs to uid, then unlinks; idempotent
	Detach(ctx context.Context, noteID, tagID string, uid int64) error

	// TagsForNote lists the tags of one note
	TagsForNote(ctx context.Context, noteID string, uid int64) ([]*Tag, error)

	// TagRefsForNotes returns the tags of each note id, keyed by note id
	TagRefsForNotes(ctx context.Context, noteIDs []string, uid int64) (map[string][]*TagRef, error)

	// Count 统计用户关联数量
	Count(ctx context.Context, uid int64) (int64, error)

	// SweepDangling removes association rows whose note or tag is gone
	SweepDangling(ctx context.Context) (int64, error)

	// Owners lists every uid that owns at least one note or tag
	Owners(ctx context.Context) ([]int64, error)
}

// WriteSequencer 写操作序号
// WriteSeq only grows; a value read after a write returned is greater than one read before that write finished.
type WriteSequencer interface {
	WriteSeq() uint64
}
