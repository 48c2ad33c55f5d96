package service

import (
	"context"
	"errors"

	"github.com/haierkeys/fast-note-kb-service/internal/domain"
	"github.com/haierkeys/fast-note-kb-service/internal/dto"
	"github.com/haierkeys/fast-note-kb-service/pkg/code"
	"github.com/haierkeys/fast-note-kb-service/pkg/document"
	"github.com/haierkeys/fast-note-kb-service/pkg/logger"

	"go.uber.org/zap"
)

// NoteService 笔记业务服务接口
type NoteService interface {
	Create(ctx context.Context, uid int64, params *dto.NoteCreateRequest) (*dto.NoteDTO, error)
	Get(ctx context.Context, uid int64, id string) (*dto.NoteDTO, error)
	Update(ctx context.Context, uid int64, params *dto.NoteUpdateRequest) (*dto.NoteDTO, error)
	Delete(ctx context.Context, uid int64, id string) error
}

type noteService struct {
	noteRepo    domain.NoteRepository
	noteTagRepo domain.NoteTagRepository
	logger      *zap.Logger
}

// NewNoteService 创建笔记服务
func NewNoteService(noteRepo domain.NoteRepository, noteTagRepo domain.NoteTagRepository, lg *zap.Logger) NoteService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &noteService{noteRepo: noteRepo, noteTagRepo: noteTagRepo, logger: lg}
}

func validateDocument(doc *document.Node) error {
	if doc == nil {
		return nil
	}
	if err := doc.Validate(); err != nil {
		return code.ErrorInvalidDocument.WithDetails(err.Error())
	}
	return nil
}

func (s *noteService) Create(ctx context.Context, uid int64, params *dto.NoteCreateRequest) (*dto.NoteDTO, error) {
	if err := validateDocument(params.Content); err != nil {
		return nil, err
	}
	note, err := s.noteRepo.Create(ctx, &domain.Note{Title: params.Title, Content: params.Content}, uid)
	if err != nil {
		return nil, toCodeError(s.logger, uid, "NoteService.Create", err)
	}
	s.logger.Debug("note created", zap.Int64(logger.FieldUID, uid), zap.String(logger.FieldNoteID, note.ID))
	return dto.NoteFromDomain(note, nil)
}

func (s *noteService) Get(ctx context.Context, uid int64, id string) (*dto.NoteDTO, error) {
	note, err := s.noteRepo.GetByID(ctx, id, uid)
	if err != nil {
		return nil, toCodeError(s.logger, uid, "NoteService.Get", err)
	}
	return s.withTags(ctx, uid, note)
}

func (s *noteService) withTags(ctx context.Context, uid int64, note *domain.Note) (*dto.NoteDTO, error) {
	tags, err := s.noteTagRepo.TagsForNote(ctx, note.ID, uid)
	if err != nil {
		return nil, toCodeError(s.logger, uid, "NoteService.tags", err)
	}
	refs := make([]*domain.TagRef, 0, len(tags))
	for _, t := range tags {
		refs = append(refs, t.Ref())
	}
	return dto.NoteFromDomain(note, refs)
}

// Update applies a partial update. With baseVersion set, a stale write is refused
// with ErrorNoteVersionConflict instead of overwriting the newer content.
func (s *noteService) Update(ctx context.Context, uid int64, params *dto.NoteUpdateRequest) (*dto.NoteDTO, error) {
	patch := &domain.NotePatch{
		Title:       params.Title,
		Content:     params.Content,
		BaseVersion: params.BaseVersion,
	}
	if patch.IsEmpty() {
		return nil, code.ErrorNoteEmptyPatch
	}
	if err := validateDocument(patch.Content); err != nil {
		return nil, err
	}

	note, err := s.noteRepo.Update(ctx, params.ID, patch, uid)
	switch {
	case err == nil:
		noteSaves.WithLabelValues(saveOK).Inc()
	case errors.Is(err, domain.ErrVersionConflict):
		noteSaves.WithLabelValues(saveConflict).Inc()
		s.logger.Info("note save conflict",
			zap.Int64(logger.FieldUID, uid),
			zap.String(logger.FieldNoteID, params.ID))
	case errors.Is(err, domain.ErrNotFound):
		noteSaves.WithLabelValues(saveNotFound).Inc()
	default:
		noteSaves.WithLabelValues(saveError).Inc()
	}
	if err != nil {
		return nil, toCodeError(s.logger, uid, "NoteService.Update", err)
	}
	return s.withTags(ctx, uid, note)
}

func (s *noteService) Delete(ctx context.Context, uid int64, id string) error {
	if err := s.noteRepo.Delete(ctx, id, uid); err != nil {
		return toCodeError(s.logger, uid, "NoteService.Delete", err)
	}
	s.logger.Debug("note deleted", zap.Int64(logger.FieldUID, uid), zap.String(logger.FieldNoteID, id))
	return nil
}
