package service

import (
	"context"
	"fmt"

	"github.com/haierkeys/fast-note-kb-service/internal/domain"
	"github.com/haierkeys/fast-note-kb-service/internal/dto"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ListingService 笔记列表查询服务
type ListingService interface {
	// ListNotesWithTags returns the owner's notes, each with its tags flattened
	ListNotesWithTags(ctx context.Context, uid int64, params *dto.NoteListRequest) ([]*dto.NoteSummaryDTO, error)
}

type listingService struct {
	noteRepo    domain.NoteRepository
	noteTagRepo domain.NoteTagRepository
	writes      domain.WriteSequencer
	logger      *zap.Logger
	sf          singleflight.Group
}

// NewListingService 创建列表服务
// Identical concurrent listings share one query only when writes is set; nil disables sharing.
func NewListingService(noteRepo domain.NoteRepository, noteTagRepo domain.NoteTagRepository, writes domain.WriteSequencer, lg *zap.Logger) ListingService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &listingService{noteRepo: noteRepo, noteTagRepo: noteTagRepo, writes: writes, logger: lg}
}

func listOptions(params *dto.NoteListRequest) domain.NoteListOptions {
	opts := domain.NoteListOptions{SortBy: domain.NoteSortUpdatedAt, SortDesc: true}
	if params == nil {
		return opts
	}
	opts.TagID = params.TagID
	switch domain.NoteSort(params.SortBy) {
	case domain.NoteSortCreatedAt, domain.NoteSortTitle, domain.NoteSortUpdatedAt:
		opts.SortBy = domain.NoteSort(params.SortBy)
	}
	if params.SortOrder == "asc" {
		opts.SortDesc = false
	}
	return opts
}

func (s *listingService) ListNotesWithTags(ctx context.Context, uid int64, params *dto.NoteListRequest) ([]*dto.NoteSummaryDTO, error) {
	opts := listOptions(params)
	if s.writes == nil {
		out, err := s.list(ctx, uid, opts)
		if err != nil {
			return nil, toCodeError(s.logger, uid, "ListingService.ListNotesWithTags", err)
		}
		return out, nil
	}

	// the write sequence is part of the key: a caller never joins a query that began
	// before a write it has already seen complete
	key := fmt.Sprintf("%d|%d|%s|%s|%t", s.writes.WriteSeq(), uid, opts.TagID, opts.SortBy, opts.SortDesc)

	v, err, shared := s.sf.Do(key, func() (any, error) {
		return s.list(ctx, uid, opts)
	})
	if shared {
		listingCoalesced.Inc()
	}
	if err != nil {
		return nil, toCodeError(s.logger, uid, "ListingService.ListNotesWithTags", err)
	}
	return v.([]*dto.NoteSummaryDTO), nil
}

func (s *listingService) list(ctx context.Context, uid int64, opts domain.NoteListOptions) ([]*dto.NoteSummaryDTO, error) {
	notes, err := s.noteRepo.ListSummaries(ctx, uid, opts)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.ID)
	}
	refs, err := s.noteTagRepo.TagRefsForNotes(ctx, ids, uid)
	if err != nil {
		return nil, err
	}
	for _, n := range notes {
		if r, ok := refs[n.ID]; ok {
			n.Tags = r
		}
	}
	return dto.NoteSummariesFromDomain(notes)
}
