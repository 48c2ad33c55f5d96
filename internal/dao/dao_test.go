package dao

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/haierkeys/fast-note-kb-service/internal/domain"
	"github.com/haierkeys/fast-note-kb-service/internal/model"
	"github.com/haierkeys/fast-note-kb-service/pkg/document"
	"github.com/haierkeys/fast-note-kb-service/pkg/timex"
	"github.com/haierkeys/fast-note-kb-service/pkg/writequeue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type repos struct {
	dao      *Dao
	notes    domain.NoteRepository
	tags     domain.TagRepository
	noteTags domain.NoteTagRepository
}

func newTestRepos(t *testing.T) *repos {
	t.Helper()
	db, err := NewDBEngineWithConfig(DatabaseConfig{Type: "sqlite", Path: ":memory:", AutoMigrate: true}, nil)
	require.NoError(t, err)

	wq := writequeue.New(&writequeue.Config{Shared: true}, nil)
	t.Cleanup(func() {
		_ = wq.Shutdown(context.Background())
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	d := New(db, WithWriteQueue(wq))
	return &repos{
		dao:      d,
		notes:    NewNoteRepository(d),
		tags:     NewTagRepository(d),
		noteTags: NewNoteTagRepository(d),
	}
}

func (r *repos) setUpdatedAt(t *testing.T, noteID string, at time.Time) {
	t.Helper()
	err := r.dao.db.Model(&model.Note{}).Where("id = ?", noteID).
		UpdateColumn("updated_at", timex.Time(at.Truncate(time.Millisecond))).Error
	require.NoError(t, err)
}

func strPtr(s string) *string { return &s }
func i64Ptr(v int64) *int64   { return &v }

func TestNoteRepository_CreateGet(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	n, err := r.notes.Create(ctx, &domain.Note{Title: "first"}, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, int64(1), n.Version)
	assert.Equal(t, "", n.ContentText)
	assert.True(t, n.CreatedAt.Equal(n.UpdatedAt))

	got, err := r.notes.GetByID(ctx, n.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
	assert.Equal(t, document.TypeDoc, got.Content.Type)

	_, err = r.notes.GetByID(ctx, n.ID, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNoteRepository_UpdateRecomputesText(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	n, err := r.notes.Create(ctx, &domain.Note{}, 1)
	require.NoError(t, err)

	updated, err := r.notes.Update(ctx, n.ID, &domain.NotePatch{Content: document.FromText("Hello world")}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", updated.ContentText)
	assert.Equal(t, int64(2), updated.Version)
	assert.True(t, updated.UpdatedAt.After(n.UpdatedAt))
	assert.True(t, n.CreatedAt.Equal(updated.CreatedAt))

	// title-only patch keeps content
	renamed, err := r.notes.Update(ctx, n.ID, &domain.NotePatch{Title: strPtr("Renamed")}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", renamed.Title)
	assert.Equal(t, "Hello world", renamed.ContentText)
	assert.Equal(t, int64(3), renamed.Version)
}

func TestNoteRepository_VersionConflict(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	n, err := r.notes.Create(ctx, &domain.Note{}, 1)
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for _, text := range []string{"A", "B"} {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			_, err := r.notes.Update(ctx, n.ID, &domain.NotePatch{
				Content:     document.FromText(text),
				BaseVersion: i64Ptr(n.Version),
			}, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, domain.ErrVersionConflict):
				conflicts++
			}
		}(text)
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)

	got, err := r.notes.GetByID(ctx, n.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
}

func TestNoteRepository_ForeignAndMissing(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	n, err := r.notes.Create(ctx, &domain.Note{Title: "mine"}, 1)
	require.NoError(t, err)

	_, err = r.notes.Update(ctx, n.ID, &domain.NotePatch{Title: strPtr("x")}, 2)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
	assert.ErrorIs(t, r.notes.Delete(ctx, n.ID, 2), domain.ErrNotFound)
	assert.ErrorIs(t, r.notes.Delete(ctx, "missing", 1), domain.ErrNotFound)

	got, err := r.notes.GetByID(ctx, n.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)
}

func TestTagRepository_UniqueTitlePerOwner(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	tag, err := r.tags.Create(ctx, &domain.Tag{Title: "Ideas"}, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTagColor, tag.Color)

	_, err = r.tags.Create(ctx, &domain.Tag{Title: "  ideas  "}, 1)
	assert.ErrorIs(t, err, domain.ErrTagTitleExists)

	// a different owner may reuse the title
	_, err = r.tags.Create(ctx, &domain.Tag{Title: "Ideas"}, 2)
	assert.NoError(t, err)

	other, err := r.tags.Create(ctx, &domain.Tag{Title: "Work", Color: "blue"}, 1)
	require.NoError(t, err)
	_, err = r.tags.Update(ctx, other.ID, strPtr("IDEAS"), nil, 1)
	assert.ErrorIs(t, err, domain.ErrTagTitleExists)

	// renaming to its own title with different case is allowed
	renamed, err := r.tags.Update(ctx, other.ID, strPtr("WORK"), strPtr("red"), 1)
	require.NoError(t, err)
	assert.Equal(t, "WORK", renamed.Title)
	assert.Equal(t, "red", renamed.Color)

	_, err = r.tags.Update(ctx, other.ID, strPtr("x"), nil, 2)
	assert.ErrorIs(t, err, domain.ErrTagNotFound)
}

func TestTagRepository_GetOrCreate(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	a, created, err := r.tags.GetOrCreate(ctx, &domain.Tag{Title: "Ideas", Color: "blue"}, 1)
	require.NoError(t, err)
	assert.True(t, created)

	b, created, err := r.tags.GetOrCreate(ctx, &domain.Tag{Title: "IDEAS"}, 1)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, "blue", b.Color)
}

func TestTagRepository_ListSorted(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	for _, title := range []string{"beta", "Alpha", "gamma"} {
		_, err := r.tags.Create(ctx, &domain.Tag{Title: title}, 1)
		require.NoError(t, err)
	}
	list, err := r.tags.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Alpha", "beta", "gamma"}, []string{list[0].Title, list[1].Title, list[2].Title})

	empty, err := r.tags.List(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Len(t, empty, 0)
}

func TestNoteTagRepository_AttachDetach(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	note, err := r.notes.Create(ctx, &domain.Note{}, 1)
	require.NoError(t, err)
	tag, err := r.tags.Create(ctx, &domain.Tag{Title: "Ideas", Color: "blue"}, 1)
	require.NoError(t, err)

	require.NoError(t, r.noteTags.Attach(ctx, note.ID, tag.ID, 1))
	require.NoError(t, r.noteTags.Attach(ctx, note.ID, tag.ID, 1))

	tags, err := r.noteTags.TagsForNote(ctx, note.ID, 1)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Ideas", tags[0].Title)

	refs, err := r.noteTags.TagRefsForNotes(ctx, []string{note.ID}, 1)
	require.NoError(t, err)
	require.Len(t, refs[note.ID], 1)
	assert.Equal(t, "blue", refs[note.ID][0].Color)

	require.NoError(t, r.noteTags.Detach(ctx, note.ID, tag.ID, 1))
	require.NoError(t, r.noteTags.Detach(ctx, note.ID, tag.ID, 1))
	n, err := r.noteTags.Count(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestNoteTagRepository_CrossOwner(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	mine, err := r.notes.Create(ctx, &domain.Note{}, 1)
	require.NoError(t, err)
	theirs, err := r.tags.Create(ctx, &domain.Tag{Title: "secret"}, 2)
	require.NoError(t, err)
	theirNote, err := r.notes.Create(ctx, &domain.Note{}, 2)
	require.NoError(t, err)

	assert.ErrorIs(t, r.noteTags.Attach(ctx, mine.ID, theirs.ID, 1), domain.ErrTagNotFound)
	assert.ErrorIs(t, r.noteTags.Attach(ctx, theirNote.ID, theirs.ID, 1), domain.ErrNoteNotFound)
	assert.ErrorIs(t, r.noteTags.Detach(ctx, theirNote.ID, theirs.ID, 1), domain.ErrNoteNotFound)
	_, err = r.noteTags.TagsForNote(ctx, theirNote.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}

func TestDeleteCascades(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	note, _ := r.notes.Create(ctx, &domain.Note{}, 1)
	other, _ := r.notes.Create(ctx, &domain.Note{}, 1)
	tag, _ := r.tags.Create(ctx, &domain.Tag{Title: "t"}, 1)
	require.NoError(t, r.noteTags.Attach(ctx, note.ID, tag.ID, 1))
	require.NoError(t, r.noteTags.Attach(ctx, other.ID, tag.ID, 1))

	require.NoError(t, r.notes.Delete(ctx, note.ID, 1))
	n, _ := r.noteTags.Count(ctx, 1)
	assert.Equal(t, int64(1), n)

	require.NoError(t, r.tags.Delete(ctx, tag.ID, 1))
	n, _ = r.noteTags.Count(ctx, 1)
	assert.Equal(t, int64(0), n)

	// deleting a tag twice, or someone else's, is silent
	assert.NoError(t, r.tags.Delete(ctx, tag.ID, 1))
	assert.NoError(t, r.tags.Delete(ctx, "missing", 2))

	_, err := r.notes.GetByID(ctx, other.ID, 1)
	assert.NoError(t, err)
}

func TestNoteRepository_ListSummaries(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	a, _ := r.notes.Create(ctx, &domain.Note{Title: "b-note", Content: document.FromText("body a")}, 1)
	b, _ := r.notes.Create(ctx, &domain.Note{Title: "a-note"}, 1)
	_, _ = r.notes.Create(ctx, &domain.Note{Title: "foreign"}, 2)
	_, err := r.notes.Update(ctx, a.ID, &domain.NotePatch{Title: strPtr("b-note!")}, 1)
	require.NoError(t, err)
	// b's create and a's update may share a millisecond; pin b well before a
	r.setUpdatedAt(t, b.ID, time.Now().Add(-time.Hour))

	list, err := r.notes.ListSummaries(ctx, 1, domain.NoteListOptions{SortBy: domain.NoteSortUpdatedAt, SortDesc: true})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, "body a", list[0].ContentText)
	assert.NotNil(t, list[0].Tags)

	list, err = r.notes.ListSummaries(ctx, 1, domain.NoteListOptions{SortBy: domain.NoteSortTitle})
	require.NoError(t, err)
	assert.Equal(t, b.ID, list[0].ID)

	tag, _ := r.tags.Create(ctx, &domain.Tag{Title: "only-b"}, 1)
	require.NoError(t, r.noteTags.Attach(ctx, b.ID, tag.ID, 1))
	list, err = r.notes.ListSummaries(ctx, 1, domain.NoteListOptions{TagID: tag.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	// a tag id of another owner filters everything out
	list, err = r.notes.ListSummaries(ctx, 2, domain.NoteListOptions{TagID: tag.ID})
	require.NoError(t, err)
	assert.Len(t, list, 0)
}

func TestNoteTagRepository_SweepAndOwners(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	note, _ := r.notes.Create(ctx, &domain.Note{}, 1)
	tag, _ := r.tags.Create(ctx, &domain.Tag{Title: "x"}, 1)
	_, _ = r.tags.Create(ctx, &domain.Tag{Title: "y"}, 3)
	require.NoError(t, r.noteTags.Attach(ctx, note.ID, tag.ID, 1))

	// simulate a manual edit that left a dangling row behind
	require.NoError(t, r.dao.DB(ctx).Exec("DELETE FROM tag WHERE id = ?", tag.ID).Error)

	removed, err := r.noteTags.SweepDangling(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	owners, err := r.noteTags.Owners(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 3}, owners)
}

func TestDao_WriteSeq(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	before := r.dao.WriteSeq()
	n, err := r.notes.Create(ctx, &domain.Note{Title: "x"}, 1)
	require.NoError(t, err)
	afterCreate := r.dao.WriteSeq()
	assert.Greater(t, afterCreate, before)

	// failed writes still count
	_, err = r.notes.Update(ctx, n.ID, &domain.NotePatch{Title: strPtr("y"), BaseVersion: i64Ptr(7)}, 1)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.Greater(t, r.dao.WriteSeq(), afterCreate)
}
