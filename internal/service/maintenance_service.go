package service

import (
	"context"

	"github.com/haierkeys/fast-note-kb-service/internal/domain"

	"go.uber.org/zap"
)

// MaintenanceService 后台维护服务
type MaintenanceService interface {
	// SweepNoteTags removes associations whose note or tag is gone
	SweepNoteTags(ctx context.Context) (int64, error)
	// RefreshStats recomputes store-wide totals and publishes them as gauges
	RefreshStats(ctx context.Context) (*domain.OwnerStats, int, error)
}

type maintenanceService struct {
	noteRepo    domain.NoteRepository
	tagRepo     domain.TagRepository
	noteTagRepo domain.NoteTagRepository
	logger      *zap.Logger
}

// NewMaintenanceService 创建维护服务
func NewMaintenanceService(noteRepo domain.NoteRepository, tagRepo domain.TagRepository, noteTagRepo domain.NoteTagRepository, lg *zap.Logger) MaintenanceService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &maintenanceService{noteRepo: noteRepo, tagRepo: tagRepo, noteTagRepo: noteTagRepo, logger: lg}
}

func (s *maintenanceService) SweepNoteTags(ctx context.Context) (int64, error) {
	n, err := s.noteTagRepo.SweepDangling(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("dangling note tags removed", zap.Int64("count", n))
	}
	return n, nil
}

// RefreshStats returns the summed totals (UID is 0) and the number of owners
func (s *maintenanceService) RefreshStats(ctx context.Context) (*domain.OwnerStats, int, error) {
	owners, err := s.noteTagRepo.Owners(ctx)
	if err != nil {
		return nil, 0, err
	}
	total := &domain.OwnerStats{}
	for _, uid := range owners {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		notes, err := s.noteRepo.Count(ctx, uid)
		if err != nil {
			return nil, 0, err
		}
		tags, err := s.tagRepo.Count(ctx, uid)
		if err != nil {
			return nil, 0, err
		}
		links, err := s.noteTagRepo.Count(ctx, uid)
		if err != nil {
			return nil, 0, err
		}
		total.Notes += notes
		total.Tags += tags
		total.Links += links
	}

	notesGauge.Set(float64(total.Notes))
	tagsGauge.Set(float64(total.Tags))
	noteTagsGauge.Set(float64(total.Links))
	ownersGauge.Set(float64(len(owners)))
	return total, len(owners), nil
}
