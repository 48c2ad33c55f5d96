package upgrade

import (
	"context"

	"github.com/haierkeys/fast-note-kb-service/internal/domain"
	"github.com/haierkeys/fast-note-kb-service/internal/model"
	"github.com/haierkeys/fast-note-kb-service/pkg/document"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// batchSize rows loaded per round
const batchSize = 200

// DerivedColumnsMigrate fills columns the service derives on write for rows that were
// inserted by other means (imports, manual edits): note content and content_text, tag title_key.
type DerivedColumnsMigrate struct{}

func (m *DerivedColumnsMigrate) Version() string {
	return "0.1.0"
}

func (m *DerivedColumnsMigrate) Description() string {
	return "Backfill note content_text and tag title_key"
}

// Up 执行升级
func (m *DerivedColumnsMigrate) Up(ctx context.Context, db *gorm.DB, logger *zap.Logger) error {
	notes, err := m.backfillNotes(ctx, db, logger)
	if err != nil {
		return err
	}
	tags, err := m.backfillTags(ctx, db)
	if err != nil {
		return err
	}
	logger.Info("DerivedColumnsMigrate Up - Completed",
		zap.Int("notes", notes),
		zap.Int("tags", tags))
	return nil
}

func (m *DerivedColumnsMigrate) backfillNotes(ctx context.Context, db *gorm.DB, logger *zap.Logger) (int, error) {
	empty, err := document.Empty().Marshal()
	if err != nil {
		return 0, err
	}

	var rows []*model.Note
	updated := 0
	err = db.WithContext(ctx).
		Where("content_text = ''").
		FindInBatches(&rows, batchSize, func(tx *gorm.DB, _ int) error {
			for _, n := range rows {
				content := n.Content
				doc, perr := document.Parse([]byte(content))
				if content == "" || perr != nil {
					if content != "" {
						logger.Warn("DerivedColumnsMigrate - unreadable note content replaced", zap.String("id", n.ID), zap.Error(perr))
					}
					content, doc = string(empty), document.Empty()
				}
				text := document.PlainText(doc)
				if text == "" && content == n.Content {
					continue
				}
				if err := tx.Model(&model.Note{}).Where("id = ?", n.ID).
					Updates(map[string]any{"content": content, "content_text": text}).Error; err != nil {
					return err
				}
				updated++
			}
			return nil
		}).Error
	return updated, err
}

func (m *DerivedColumnsMigrate) backfillTags(ctx context.Context, db *gorm.DB) (int, error) {
	var rows []*model.Tag
	updated := 0
	err := db.WithContext(ctx).
		Where("title_key = ''").
		FindInBatches(&rows, batchSize, func(tx *gorm.DB, _ int) error {
			for _, t := range rows {
				if err := tx.Model(&model.Tag{}).Where("id = ?", t.ID).
					Update("title_key", domain.TagKey(t.Title)).Error; err != nil {
					return err
				}
				updated++
			}
			return nil
		}).Error
	return updated, err
}
