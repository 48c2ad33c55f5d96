package dao

import (
	"context"
	"fmt"

	"github.com/haierkeys/fast-note-kb-service/internal/domain"
	"github.com/haierkeys/fast-note-kb-service/internal/model"
	"github.com/haierkeys/fast-note-kb-service/pkg/timex"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// keeps IN lists under the SQLite variable limit
const inChunkSize = 500

type noteTagRepository struct {
	*Dao
}

// NewNoteTagRepository 创建笔记标签关联仓储
func NewNoteTagRepository(d *Dao) domain.NoteTagRepository {
	return &noteTagRepository{Dao: d}
}

func (r *noteTagRepository) ownsNote(tx *gorm.DB, noteID string, uid int64) error {
	return r.owns(tx, &model.Note{}, noteID, uid, domain.ErrNoteNotFound)
}

func (r *noteTagRepository) ownsTag(tx *gorm.DB, tagID string, uid int64) error {
	return r.owns(tx, &model.Tag{}, tagID, uid, domain.ErrTagNotFound)
}

func (r *noteTagRepository) owns(tx *gorm.DB, m any, id string, uid int64, missing error) error {
	var n int64
	if err := tx.Model(m).Where("id = ? AND uid = ?", id, uid).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}

func (r *noteTagRepository) Attach(ctx context.Context, noteID, tagID string, uid int64) error {
	return r.ExecuteWrite(ctx, uid, func(tx *gorm.DB) error {
		if err := r.ownsNote(tx, noteID, uid); err != nil {
			return err
		}
		if err := r.ownsTag(tx, tagID, uid); err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.NoteTag{
			NoteID:    noteID,
			TagID:     tagID,
			UID:       uid,
			CreatedAt: timex.Now(),
		}).Error
	})
}

func (r *noteTagRepository) Detach(ctx context.Context, noteID, tagID string, uid int64) error {
	return r.ExecuteWrite(ctx, uid, func(tx *gorm.DB) error {
		if err := r.ownsNote(tx, noteID, uid); err != nil {
			return err
		}
		return tx.Where("note_id = ? AND tag_id = ? AND uid = ?", noteID, tagID, uid).Delete(&model.NoteTag{}).Error
	})
}

func (r *noteTagRepository) TagsForNote(ctx context.Context, noteID string, uid int64) ([]*domain.Tag, error) {
	db := r.DB(ctx)
	if err := r.ownsNote(db, noteID, uid); err != nil {
		return nil, err
	}

	var ms []*model.Tag
	err := db.Model(&model.Tag{}).
		Joins(fmt.Sprintf("JOIN %[1]s ON %[1]s.tag_id = %[2]s.id", model.TableNameNoteTag, model.TableNameTag)).
		Where(fmt.Sprintf("%s.note_id = ? AND %[1]s.uid = ? AND %s.uid = ?", model.TableNameNoteTag, model.TableNameTag), noteID, uid, uid).
		Order(model.TableNameTag + ".title_key").
		Order(model.TableNameTag + ".id").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	res := make([]*domain.Tag, 0, len(ms))
	for _, m := range ms {
		res = append(res, &domain.Tag{
			ID:        m.ID,
			UID:       m.UID,
			Title:     m.Title,
			Color:     m.Color,
			CreatedAt: m.CreatedAt.Std(),
			UpdatedAt: m.UpdatedAt.Std(),
		})
	}
	return res, nil
}

type tagRefRow struct {
	NoteID string
	ID     string
	Title  string
	Color  string
}

func (r *noteTagRepository) TagRefsForNotes(ctx context.Context, noteIDs []string, uid int64) (map[string][]*domain.TagRef, error) {
	out := make(map[string][]*domain.TagRef, len(noteIDs))
	for start := 0; start < len(noteIDs); start += inChunkSize {
		end := min(start+inChunkSize, len(noteIDs))

		var rows []tagRefRow
		err := r.DB(ctx).Table(model.TableNameNoteTag).
			Select(fmt.Sprintf("%[1]s.note_id AS note_id, %[2]s.id AS id, %[2]s.title AS title, %[2]s.color AS color", model.TableNameNoteTag, model.TableNameTag)).
			Joins(fmt.Sprintf("JOIN %[2]s ON %[2]s.id = %[1]s.tag_id", model.TableNameNoteTag, model.TableNameTag)).
			Where(fmt.Sprintf("%[1]s.note_id IN ? AND %[1]s.uid = ? AND %[2]s.uid = ?", model.TableNameNoteTag, model.TableNameTag), noteIDs[start:end], uid, uid).
			Order(model.TableNameTag + ".title_key").
			Order(model.TableNameTag + ".id").
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			out[row.NoteID] = append(out[row.NoteID], &domain.TagRef{ID: row.ID, Title: row.Title, Color: row.Color})
		}
	}
	return out, nil
}

func (r *noteTagRepository) Count(ctx context.Context, uid int64) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&model.NoteTag{}).Where("uid = ?", uid).Count(&n).Error
	return n, err
}

// SweepDangling deletes rows whose note or tag no longer exists or belongs to another owner
func (r *noteTagRepository) SweepDangling(ctx context.Context) (int64, error) {
	var removed int64
	err := r.ExecuteWrite(ctx, 0, func(tx *gorm.DB) error {
		notes := tx.Session(&gorm.Session{NewDB: true}).Model(&model.Note{}).
			Select("id").Where(fmt.Sprintf("%s.uid = %s.uid", model.TableNameNote, model.TableNameNoteTag))
		tags := tx.Session(&gorm.Session{NewDB: true}).Model(&model.Tag{}).
			Select("id").Where(fmt.Sprintf("%s.uid = %s.uid", model.TableNameTag, model.TableNameNoteTag))
		res := tx.Where("note_id NOT IN (?) OR tag_id NOT IN (?)", notes, tags).Delete(&model.NoteTag{})
		removed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, errors.Wrap(err, "sweep dangling note tags")
	}
	return removed, nil
}

func (r *noteTagRepository) Owners(ctx context.Context) ([]int64, error) {
	var uids []int64
	err := r.DB(ctx).
		Raw(fmt.Sprintf("SELECT uid FROM %s UNION SELECT uid FROM %s", model.TableNameNote, model.TableNameTag)).
		Scan(&uids).Error
	return uids, err
}
