package dao

import (
	"context"

	"github.com/haierkeys/fast-note-kb-service/internal/domain"
	"github.com/haierkeys/fast-note-kb-service/internal/model"
	"github.com/haierkeys/fast-note-kb-service/pkg/timex"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type tagRepository struct {
	*Dao
}

// NewTagRepository 创建标签仓储
func NewTagRepository(d *Dao) domain.TagRepository {
	return &tagRepository{Dao: d}
}

func (r *tagRepository) Create(ctx context.Context, tag *domain.Tag, uid int64) (*domain.Tag, error) {
	var result *model.Tag
	err := r.ExecuteWrite(ctx, uid, func(tx *gorm.DB) error {
		m, err := r.insert(tx, tag, uid)
		result = m
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.modelToDomain(result), nil
}

// insert checks the normalized title inside tx before writing; the unique index is the backstop
func (r *tagRepository) insert(tx *gorm.DB, tag *domain.Tag, uid int64) (*model.Tag, error) {
	key := domain.TagKey(tag.Title)
	exists, err := r.titleTaken(tx, key, "", uid)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrTagTitleExists
	}

	if tag.ID == "" {
		tag.ID = uuid.NewString()
	}
	color := tag.Color
	if color == "" {
		color = domain.DefaultTagColor
	}
	now := timex.Now()
	m := &model.Tag{
		ID:        tag.ID,
		UID:       uid,
		Title:     domain.CleanTagTitle(tag.Title),
		TitleKey:  key,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Create(m).Error; err != nil {
		if isDuplicate(err) {
			return nil, domain.ErrTagTitleExists
		}
		return nil, err
	}
	return m, nil
}

func (r *tagRepository) titleTaken(tx *gorm.DB, key, exceptID string, uid int64) (bool, error) {
	q := tx.Model(&model.Tag{}).Where("uid = ? AND title_key = ?", uid, key)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *tagRepository) find(db *gorm.DB, query string, args ...any) (*model.Tag, error) {
	var m model.Tag
	err := db.Where(query, args...).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTagNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *tagRepository) GetByID(ctx context.Context, id string, uid int64) (*domain.Tag, error) {
	m, err := r.find(r.Primary(ctx), "id = ? AND uid = ?", id, uid)
	if err != nil {
		return nil, err
	}
	return r.modelToDomain(m), nil
}

func (r *tagRepository) GetByTitle(ctx context.Context, title string, uid int64) (*domain.Tag, error) {
	m, err := r.find(r.Primary(ctx), "uid = ? AND title_key = ?", uid, domain.TagKey(title))
	if err != nil {
		return nil, err
	}
	return r.modelToDomain(m), nil
}

func (r *tagRepository) GetOrCreate(ctx context.Context, tag *domain.Tag, uid int64) (*domain.Tag, bool, error) {
	var (
		result  *model.Tag
		created bool
	)
	err := r.ExecuteWrite(ctx, uid, func(tx *gorm.DB) error {
		m, err := r.find(tx, "uid = ? AND title_key = ?", uid, domain.TagKey(tag.Title))
		if err == nil {
			result = m
			return nil
		}
		if !errors.Is(err, domain.ErrTagNotFound) {
			return err
		}
		result, err = r.insert(tx, tag, uid)
		created = err == nil
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return r.modelToDomain(result), created, nil
}

func (r *tagRepository) Update(ctx context.Context, id string, title, color *string, uid int64) (*domain.Tag, error) {
	var result *model.Tag
	err := r.ExecuteWrite(ctx, uid, func(tx *gorm.DB) error {
		m, err := r.find(tx, "id = ? AND uid = ?", id, uid)
		if err != nil {
			return err
		}

		updates := map[string]any{"updated_at": timex.Now()}
		if title != nil {
			key := domain.TagKey(*title)
			taken, err := r.titleTaken(tx, key, id, uid)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrTagTitleExists
			}
			updates["title"] = domain.CleanTagTitle(*title)
			updates["title_key"] = key
		}
		if color != nil {
			updates["color"] = *color
		}

		if err := tx.Model(m).Where("uid = ?", uid).Updates(updates).Error; err != nil {
			if isDuplicate(err) {
				return domain.ErrTagTitleExists
			}
			return err
		}
		result, err = r.find(tx, "id = ? AND uid = ?", id, uid)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.modelToDomain(result), nil
}

// Delete is a no-op for an absent or foreign tag
func (r *tagRepository) Delete(ctx context.Context, id string, uid int64) error {
	return r.ExecuteWrite(ctx, uid, func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ? AND uid = ?", id, uid).Delete(&model.NoteTag{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND uid = ?", id, uid).Delete(&model.Tag{}).Error
	})
}

func (r *tagRepository) List(ctx context.Context, uid int64) ([]*domain.Tag, error) {
	var ms []*model.Tag
	if err := r.DB(ctx).Where("uid = ?", uid).Order("title_key").Order("id").Find(&ms).Error; err != nil {
		return nil, err
	}
	res := make([]*domain.Tag, 0, len(ms))
	for _, m := range ms {
		res = append(res, r.modelToDomain(m))
	}
	return res, nil
}

func (r *tagRepository) Count(ctx context.Context, uid int64) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&model.Tag{}).Where("uid = ?", uid).Count(&n).Error
	return n, err
}

func (r *tagRepository) modelToDomain(m *model.Tag) *domain.Tag {
	if m == nil {
		return nil
	}
	return &domain.Tag{
		ID:        m.ID,
		UID:       m.UID,
		Title:     m.Title,
		Color:     m.Color,
		CreatedAt: m.CreatedAt.Std(),
		UpdatedAt: m.UpdatedAt.Std(),
	}
}
