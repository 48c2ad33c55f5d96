package service

import (
	"context"
	"strings"

	"github.com/haierkeys/fast-note-kb-service/internal/domain"
	"github.com/haierkeys/fast-note-kb-service/internal/dto"
	"github.com/haierkeys/fast-note-kb-service/pkg/code"

	"go.uber.org/zap"
)

// TagService 标签业务服务接口
type TagService interface {
	Create(ctx context.Context, uid int64, params *dto.TagCreateRequest) (*dto.TagDTO, error)
	Update(ctx context.Context, uid int64, params *dto.TagUpdateRequest) (*dto.TagDTO, error)
	Delete(ctx context.Context, uid int64, id string) error
	List(ctx context.Context, uid int64) ([]*dto.TagDTO, error)
	GetOrCreate(ctx context.Context, uid int64, title, color string) (*dto.TagDTO, bool, error)
}

type tagService struct {
	tagRepo domain.TagRepository
	logger  *zap.Logger
}

// NewTagService 创建标签服务
func NewTagService(tagRepo domain.TagRepository, lg *zap.Logger) TagService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &tagService{tagRepo: tagRepo, logger: lg}
}

func (s *tagService) Create(ctx context.Context, uid int64, params *dto.TagCreateRequest) (*dto.TagDTO, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, code.ErrorTagTitleEmpty
	}
	tag, err := s.tagRepo.Create(ctx, &domain.Tag{Title: params.Title, Color: params.Color}, uid)
	if err != nil {
		return nil, toCodeError(s.logger, uid, "TagService.Create", err)
	}
	return dto.TagFromDomain(tag)
}

func (s *tagService) Update(ctx context.Context, uid int64, params *dto.TagUpdateRequest) (*dto.TagDTO, error) {
	if params.Title == nil && params.Color == nil {
		return nil, code.ErrorInvalidParams.WithDetails("title or color is required")
	}
	if params.Title != nil && strings.TrimSpace(*params.Title) == "" {
		return nil, code.ErrorTagTitleEmpty
	}
	tag, err := s.tagRepo.Update(ctx, params.ID, params.Title, params.Color, uid)
	if err != nil {
		return nil, toCodeError(s.logger, uid, "TagService.Update", err)
	}
	return dto.TagFromDomain(tag)
}

// Delete never reports whether the tag existed
func (s *tagService) Delete(ctx context.Context, uid int64, id string) error {
	if err := s.tagRepo.Delete(ctx, id, uid); err != nil {
		return toCodeError(s.logger, uid, "TagService.Delete", err)
	}
	return nil
}

func (s *tagService) List(ctx context.Context, uid int64) ([]*dto.TagDTO, error) {
	tags, err := s.tagRepo.List(ctx, uid)
	if err != nil {
		return nil, toCodeError(s.logger, uid, "TagService.List", err)
	}
	return dto.TagsFromDomain(tags)
}

func (s *tagService) GetOrCreate(ctx context.Context, uid int64, title, color string) (*dto.TagDTO, bool, error) {
	if strings.TrimSpace(title) == "" {
		return nil, false, code.ErrorTagTitleEmpty
	}
	tag, created, err := s.tagRepo.GetOrCreate(ctx, &domain.Tag{Title: title, Color: color}, uid)
	if err != nil {
		return nil, false, toCodeError(s.logger, uid, "TagService.GetOrCreate", err)
	}
	out, err := dto.TagFromDomain(tag)
	return out, created, err
}
