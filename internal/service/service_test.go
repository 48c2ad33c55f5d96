package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/haierkeys/fast-note-kb-service/internal/domain"
	"github.com/haierkeys/fast-note-kb-service/internal/dto"
	"github.com/haierkeys/fast-note-kb-service/pkg/code"
	"github.com/haierkeys/fast-note-kb-service/pkg/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockNoteRepo struct {
	domain.NoteRepository
	notes     map[string]*domain.Note
	updateErr error
	summaries []*domain.NoteSummary
	lastOpts  domain.NoteListOptions
	patches   []*domain.NotePatch
}

func (m *mockNoteRepo) Create(ctx context.Context, n *domain.Note, uid int64) (*domain.Note, error) {
	n.ID, n.UID, n.Version = "n1", uid, 1
	if n.Content == nil {
		n.Content = document.Empty()
	}
	n.ContentText = document.PlainText(n.Content)
	return n, nil
}

func (m *mockNoteRepo) GetByID(ctx context.Context, id string, uid int64) (*domain.Note, error) {
	if n, ok := m.notes[id]; ok && n.UID == uid {
		return n, nil
	}
	return nil, domain.ErrNoteNotFound
}

func (m *mockNoteRepo) Update(ctx context.Context, id string, patch *domain.NotePatch, uid int64) (*domain.Note, error) {
	m.patches = append(m.patches, patch)
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	n, err := m.GetByID(ctx, id, uid)
	if err != nil {
		return nil, err
	}
	n.Version++
	return n, nil
}

func (m *mockNoteRepo) ListSummaries(ctx context.Context, uid int64, opts domain.NoteListOptions) ([]*domain.NoteSummary, error) {
	m.lastOpts = opts
	return m.summaries, nil
}

type mockTagRepo struct {
	domain.TagRepository
	tags      map[string]*domain.Tag
	createErr error
}

func (m *mockTagRepo) Create(ctx context.Context, t *domain.Tag, uid int64) (*domain.Tag, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	t.ID, t.UID = "t1", uid
	return t, nil
}

func (m *mockTagRepo) GetByID(ctx context.Context, id string, uid int64) (*domain.Tag, error) {
	if t, ok := m.tags[id]; ok && t.UID == uid {
		return t, nil
	}
	return nil, domain.ErrTagNotFound
}

func (m *mockTagRepo) GetOrCreate(ctx context.Context, t *domain.Tag, uid int64) (*domain.Tag, bool, error) {
	for _, existing := range m.tags {
		if existing.UID == uid && domain.TagKey(existing.Title) == domain.TagKey(t.Title) {
			return existing, false, nil
		}
	}
	t.ID, t.UID = "created", uid
	m.tags[t.ID] = t
	return t, true, nil
}

type mockNoteTagRepo struct {
	domain.NoteTagRepository
	refs      map[string][]*domain.TagRef
	tags      []*domain.Tag
	attached  [][2]string
	attachErr error
	askedIDs  []string
}

func (m *mockNoteTagRepo) Attach(ctx context.Context, noteID, tagID string, uid int64) error {
	if m.attachErr != nil {
		return m.attachErr
	}
	m.attached = append(m.attached, [2]string{noteID, tagID})
	return nil
}

func (m *mockNoteTagRepo) TagsForNote(ctx context.Context, noteID string, uid int64) ([]*domain.Tag, error) {
	return m.tags, nil
}

func (m *mockNoteTagRepo) TagRefsForNotes(ctx context.Context, ids []string, uid int64) (map[string][]*domain.TagRef, error) {
	m.askedIDs = ids
	return m.refs, nil
}

func assertCode(t *testing.T, err error, want *code.Code, status int) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, want)
	var c *code.Code
	require.True(t, errors.As(err, &c))
	assert.Equal(t, status, c.StatusCode())
}

func TestNoteService_Create(t *testing.T) {
	svc := NewNoteService(&mockNoteRepo{}, &mockNoteTagRepo{}, nil)

	n, err := svc.Create(context.Background(), 1, &dto.NoteCreateRequest{Title: "Untitled"})
	require.NoError(t, err)
	assert.Equal(t, "", n.ContentText)
	assert.Equal(t, int64(1), n.Version)
	assert.NotNil(t, n.Tags)

	_, err = svc.Create(context.Background(), 1, &dto.NoteCreateRequest{Content: &document.Node{Type: "paragraph"}})
	assertCode(t, err, code.ErrorInvalidDocument, http.StatusBadRequest)
}

func TestNoteService_Update(t *testing.T) {
	note := &domain.Note{ID: "n1", UID: 1, Version: 1, Content: document.Empty(), CreatedAt: time.Now(), UpdatedAt: time.Now()}

	tests := []struct {
		name      string
		uid       int64
		req       *dto.NoteUpdateRequest
		updateErr error
		want      *code.Code
		status    int
	}{
		{"empty patch", 1, &dto.NoteUpdateRequest{ID: "n1"}, nil, code.ErrorNoteEmptyPatch, http.StatusBadRequest},
		{"conflict", 1, &dto.NoteUpdateRequest{ID: "n1", Content: document.FromText("x")}, domain.ErrVersionConflict, code.ErrorNoteVersionConflict, http.StatusConflict},
		{"foreign note", 2, &dto.NoteUpdateRequest{ID: "n1", Content: document.FromText("x")}, nil, code.ErrorNoteNotFound, http.StatusNotFound},
		{"storage failure", 1, &dto.NoteUpdateRequest{ID: "n1", Content: document.FromText("x")}, errors.New("disk full"), code.ErrorDBQuery, http.StatusInternalServerError},
		{"bad document", 1, &dto.NoteUpdateRequest{ID: "n1", Content: &document.Node{}}, nil, code.ErrorInvalidDocument, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockNoteRepo{notes: map[string]*domain.Note{"n1": note}, updateErr: tt.updateErr}
			svc := NewNoteService(repo, &mockNoteTagRepo{}, nil)
			_, err := svc.Update(context.Background(), tt.uid, tt.req)
			assertCode(t, err, tt.want, tt.status)
		})
	}
}

func TestNoteService_UpdatePassesBaseVersion(t *testing.T) {
	repo := &mockNoteRepo{notes: map[string]*domain.Note{"n1": {ID: "n1", UID: 1, Version: 4, Content: document.Empty()}}}
	svc := NewNoteService(repo, &mockNoteTagRepo{tags: []*domain.Tag{{ID: "t", Title: "Ideas", Color: "blue"}}}, nil)

	base := int64(4)
	out, err := svc.Update(context.Background(), 1, &dto.NoteUpdateRequest{ID: "n1", Content: document.FromText("a"), BaseVersion: &base})
	require.NoError(t, err)
	require.Len(t, repo.patches, 1)
	assert.Equal(t, int64(4), *repo.patches[0].BaseVersion)
	require.Len(t, out.Tags, 1)
	assert.Equal(t, "Ideas", out.Tags[0].Title)
}

func TestTagService(t *testing.T) {
	ctx := context.Background()

	svc := NewTagService(&mockTagRepo{}, nil)
	_, err := svc.Create(ctx, 1, &dto.TagCreateRequest{Title: "   "})
	assertCode(t, err, code.ErrorTagTitleEmpty, http.StatusBadRequest)

	_, err = svc.Update(ctx, 1, &dto.TagUpdateRequest{ID: "t1"})
	assertCode(t, err, code.ErrorInvalidParams, http.StatusBadRequest)

	blank := " "
	_, err = svc.Update(ctx, 1, &dto.TagUpdateRequest{ID: "t1", Title: &blank})
	assertCode(t, err, code.ErrorTagTitleEmpty, http.StatusBadRequest)

	dup := NewTagService(&mockTagRepo{createErr: domain.ErrTagTitleExists}, nil)
	_, err = dup.Create(ctx, 1, &dto.TagCreateRequest{Title: "Ideas"})
	assertCode(t, err, code.ErrorTagTitleExists, http.StatusConflict)
}

func TestListingService_MergesTags(t *testing.T) {
	now := time.Now()
	notes := &mockNoteRepo{summaries: []*domain.NoteSummary{
		{ID: "a", Title: "A", CreatedAt: now, UpdatedAt: now, Tags: []*domain.TagRef{}},
		{ID: "b", Title: "B", CreatedAt: now, UpdatedAt: now, Tags: []*domain.TagRef{}},
	}}
	links := &mockNoteTagRepo{refs: map[string][]*domain.TagRef{
		"a": {{ID: "t1", Title: "Ideas", Color: "blue"}},
	}}
	svc := NewListingService(notes, links, nil, nil)

	out, err := svc.ListNotesWithTags(context.Background(), 1, &dto.NoteListRequest{SortBy: "title", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []string{"a", "b"}, links.askedIDs)
	require.Len(t, out[0].Tags, 1)
	assert.Equal(t, "Ideas", out[0].Tags[0].Title)
	assert.NotNil(t, out[1].Tags)
	assert.Len(t, out[1].Tags, 0)

	assert.Equal(t, domain.NoteSortTitle, notes.lastOpts.SortBy)
	assert.False(t, notes.lastOpts.SortDesc)
}

func TestListOptions_Defaults(t *testing.T) {
	opts := listOptions(&dto.NoteListRequest{})
	assert.Equal(t, domain.NoteSortUpdatedAt, opts.SortBy)
	assert.True(t, opts.SortDesc)

	opts = listOptions(&dto.NoteListRequest{SortBy: "path", TagID: "t"})
	assert.Equal(t, domain.NoteSortUpdatedAt, opts.SortBy)
	assert.Equal(t, "t", opts.TagID)
}

func TestNoteTagService_NotesForForeignTag(t *testing.T) {
	notes := &mockNoteRepo{}
	tags := &mockTagRepo{tags: map[string]*domain.Tag{"t1": {ID: "t1", UID: 2}}}
	listing := NewListingService(notes, &mockNoteTagRepo{}, nil, nil)
	svc := NewNoteTagService(&mockNoteTagRepo{}, tags, NewTagService(tags, nil), listing, nil)

	_, err := svc.NotesForTag(context.Background(), 1, "t1")
	assertCode(t, err, code.ErrorTagNotFound, http.StatusNotFound)
	assert.Empty(t, notes.lastOpts.TagID)

	out, err := svc.NotesForTag(context.Background(), 2, "t1")
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Equal(t, "t1", notes.lastOpts.TagID)
}

func TestNoteTagService_AttachByTitle(t *testing.T) {
	tags := &mockTagRepo{tags: map[string]*domain.Tag{"t1": {ID: "t1", UID: 1, Title: "Ideas", Color: "blue"}}}
	links := &mockNoteTagRepo{}
	svc := NewNoteTagService(links, tags, NewTagService(tags, nil), nil, nil)

	tag, err := svc.AttachByTitle(context.Background(), 1, &dto.NoteTagByTitleRequest{ID: "n1", Title: "ideas"})
	require.NoError(t, err)
	assert.Equal(t, "t1", tag.ID)

	tag, err = svc.AttachByTitle(context.Background(), 1, &dto.NoteTagByTitleRequest{ID: "n1", Title: "New", Color: "red"})
	require.NoError(t, err)
	assert.Equal(t, "created", tag.ID)
	assert.Equal(t, [][2]string{{"n1", "t1"}, {"n1", "created"}}, links.attached)

	links.attachErr = domain.ErrNoteNotFound
	_, err = svc.AttachByTitle(context.Background(), 1, &dto.NoteTagByTitleRequest{ID: "gone", Title: "Ideas"})
	assertCode(t, err, code.ErrorNoteNotFound, http.StatusNotFound)
}
