package service

import (
	"context"

	"github.com/haierkeys/fast-note-kb-service/internal/domain"
	"github.com/haierkeys/fast-note-kb-service/internal/dto"
	"github.com/haierkeys/fast-note-kb-service/pkg/logger"

	"go.uber.org/zap"
)

// NoteTagService 笔记标签关联服务接口
type NoteTagService interface {
	Attach(ctx context.Context, uid int64, noteID, tagID string) error
	AttachByTitle(ctx context.Context, uid int64, params *dto.NoteTagByTitleRequest) (*dto.TagDTO, error)
	Detach(ctx context.Context, uid int64, noteID, tagID string) error
	TagsForNote(ctx context.Context, uid int64, noteID string) ([]*dto.TagRefDTO, error)
	NotesForTag(ctx context.Context, uid int64, tagID string) ([]*dto.NoteSummaryDTO, error)
}

type noteTagService struct {
	noteTagRepo domain.NoteTagRepository
	tagRepo     domain.TagRepository
	tagService  TagService
	listing     ListingService
	logger      *zap.Logger
}

// NewNoteTagService 创建笔记标签关联服务
func NewNoteTagService(noteTagRepo domain.NoteTagRepository, tagRepo domain.TagRepository, tagSvc TagService, listing ListingService, lg *zap.Logger) NoteTagService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &noteTagService{
		noteTagRepo: noteTagRepo,
		tagRepo:     tagRepo,
		tagService:  tagSvc,
		listing:     listing,
		logger:      lg,
	}
}

func (s *noteTagService) Attach(ctx context.Context, uid int64, noteID, tagID string) error {
	if err := s.noteTagRepo.Attach(ctx, noteID, tagID, uid); err != nil {
		return toCodeError(s.logger, uid, "NoteTagService.Attach", err)
	}
	s.logger.Debug("tag attached",
		zap.Int64(logger.FieldUID, uid),
		zap.String(logger.FieldNoteID, noteID),
		zap.String(logger.FieldTagID, tagID))
	return nil
}

// AttachByTitle finds or creates the tag, then attaches it. A tag created for a note
// that turns out to be missing is kept; it is an ordinary empty tag.
func (s *noteTagService) AttachByTitle(ctx context.Context, uid int64, params *dto.NoteTagByTitleRequest) (*dto.TagDTO, error) {
	tag, _, err := s.tagService.GetOrCreate(ctx, uid, params.Title, params.Color)
	if err != nil {
		return nil, err
	}
	if err := s.Attach(ctx, uid, params.ID, tag.ID); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *noteTagService) Detach(ctx context.Context, uid int64, noteID, tagID string) error {
	if err := s.noteTagRepo.Detach(ctx, noteID, tagID, uid); err != nil {
		return toCodeError(s.logger, uid, "NoteTagService.Detach", err)
	}
	return nil
}

func (s *noteTagService) TagsForNote(ctx context.Context, uid int64, noteID string) ([]*dto.TagRefDTO, error) {
	tags, err := s.noteTagRepo.TagsForNote(ctx, noteID, uid)
	if err != nil {
		return nil, toCodeError(s.logger, uid, "NoteTagService.TagsForNote", err)
	}
	return dto.TagRefsFromTags(tags), nil
}

func (s *noteTagService) NotesForTag(ctx context.Context, uid int64, tagID string) ([]*dto.NoteSummaryDTO, error) {
	if _, err := s.tagRepo.GetByID(ctx, tagID, uid); err != nil {
		return nil, toCodeError(s.logger, uid, "NoteTagService.NotesForTag", err)
	}
	return s.listing.ListNotesWithTags(ctx, uid, &dto.NoteListRequest{TagID: tagID})
}
