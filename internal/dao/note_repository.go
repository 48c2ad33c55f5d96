package dao

import (
	"context"
	"time"

	"github.com/haierkeys/fast-note-kb-service/internal/domain"
	"github.com/haierkeys/fast-note-kb-service/internal/model"
	"github.com/haierkeys/fast-note-kb-service/pkg/document"
	"github.com/haierkeys/fast-note-kb-service/pkg/timex"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type noteRepository struct {
	*Dao
}

// NewNoteRepository 创建笔记仓储
func NewNoteRepository(d *Dao) domain.NoteRepository {
	return &noteRepository{Dao: d}
}

var noteSortColumns = map[domain.NoteSort]string{
	domain.NoteSortUpdatedAt: "updated_at",
	domain.NoteSortCreatedAt: "created_at",
	domain.NoteSortTitle:     "title",
}

func (r *noteRepository) Create(ctx context.Context, note *domain.Note, uid int64) (*domain.Note, error) {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.Content == nil {
		note.Content = document.Empty()
	}
	raw, err := note.Content.Marshal()
	if err != nil {
		return nil, err
	}

	now := timex.Now()
	m := &model.Note{
		ID:          note.ID,
		UID:         uid,
		Title:       note.Title,
		Content:     string(raw),
		ContentText: document.PlainText(note.Content),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = r.ExecuteWrite(ctx, uid, func(tx *gorm.DB) error {
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	return r.modelToDomain(m)
}

func (r *noteRepository) GetByID(ctx context.Context, id string, uid int64) (*domain.Note, error) {
	m, err := r.find(r.Primary(ctx), id, uid)
	if err != nil {
		return nil, err
	}
	return r.modelToDomain(m)
}

func (r *noteRepository) find(db *gorm.DB, id string, uid int64) (*model.Note, error) {
	var m model.Note
	err := db.Where("id = ? AND uid = ?", id, uid).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Update writes with "WHERE version = <read version>" so that of two writers starting
// from the same version only one can succeed.
func (r *noteRepository) Update(ctx context.Context, id string, patch *domain.NotePatch, uid int64) (*domain.Note, error) {
	var result *model.Note
	err := r.ExecuteWrite(ctx, uid, func(tx *gorm.DB) error {
		m, err := r.find(tx, id, uid)
		if err != nil {
			return err
		}
		if patch.BaseVersion != nil && *patch.BaseVersion != m.Version {
			return domain.ErrVersionConflict
		}

		now := timex.Now()
		if !now.Std().After(m.UpdatedAt.Std()) {
			now = timex.Time(m.UpdatedAt.Std().Add(time.Millisecond))
		}
		updates := map[string]any{
			"version":    m.Version + 1,
			"updated_at": now,
		}
		if patch.Title != nil {
			updates["title"] = *patch.Title
		}
		if patch.Content != nil {
			raw, err := patch.Content.Marshal()
			if err != nil {
				return err
			}
			updates["content"] = string(raw)
			updates["content_text"] = document.PlainText(patch.Content)
		}

		res := tx.Model(&model.Note{}).
			Where("id = ? AND uid = ? AND version = ?", id, uid, m.Version).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrVersionConflict
		}

		result, err = r.find(tx, id, uid)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.modelToDomain(result)
}

func (r *noteRepository) Delete(ctx context.Context, id string, uid int64) error {
	return r.ExecuteWrite(ctx, uid, func(tx *gorm.DB) error {
		if _, err := r.find(tx, id, uid); err != nil {
			return err
		}
		if err := tx.Where("note_id = ? AND uid = ?", id, uid).Delete(&model.NoteTag{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND uid = ?", id, uid).Delete(&model.Note{}).Error
	})
}

func (r *noteRepository) ListSummaries(ctx context.Context, uid int64, opts domain.NoteListOptions) ([]*domain.NoteSummary, error) {
	column, ok := noteSortColumns[opts.SortBy]
	if !ok {
		column = noteSortColumns[domain.NoteSortUpdatedAt]
	}

	q := r.DB(ctx).Model(&model.Note{}).
		Select("id", "title", "content_text", "version", "created_at", "updated_at").
		Where("uid = ?", uid)
	if opts.TagID != "" {
		sub := r.DB(ctx).Model(&model.NoteTag{}).Select("note_id").Where("tag_id = ? AND uid = ?", opts.TagID, uid)
		q = q.Where("id IN (?)", sub)
	}
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: opts.SortDesc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: opts.SortDesc})

	var ms []*model.Note
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}

	res := make([]*domain.NoteSummary, 0, len(ms))
	for _, m := range ms {
		res = append(res, &domain.NoteSummary{
			ID:          m.ID,
			Title:       m.Title,
			ContentText: m.ContentText,
			Version:     m.Version,
			CreatedAt:   m.CreatedAt.Std(),
			UpdatedAt:   m.UpdatedAt.Std(),
			Tags:        []*domain.TagRef{},
		})
	}
	return res, nil
}

func (r *noteRepository) Count(ctx context.Context, uid int64) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&model.Note{}).Where("uid = ?", uid).Count(&n).Error
	return n, err
}

func (r *noteRepository) modelToDomain(m *model.Note) (*domain.Note, error) {
	doc, err := document.Parse([]byte(m.Content))
	if err != nil {
		return nil, errors.Wrapf(err, "note %s has a malformed document", m.ID)
	}
	return &domain.Note{
		ID:          m.ID,
		UID:         m.UID,
		Title:       m.Title,
		Content:     doc,
		ContentText: m.ContentText,
		Version:     m.Version,
		CreatedAt:   m.CreatedAt.Std(),
		UpdatedAt:   m.UpdatedAt.Std(),
	}, nil
}
