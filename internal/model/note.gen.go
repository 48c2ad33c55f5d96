package model

import "github.com/haierkeys/fast-note-kb-service/pkg/timex"

const TableNameNote = "note"

// Note mapped from table <note>
type Note struct {
	ID          string     `gorm:"column:id;primaryKey;size:36" json:"id" form:"id"`
	UID         int64      `gorm:"column:uid;not null;index:idx_note_uid_updated,priority:1" json:"uid" form:"uid"`
	Title       string     `gorm:"column:title;size:255;not null;default:''" json:"title" form:"title"`
	Content     string     `gorm:"column:content;type:text;not null" json:"content" form:"content"`
	ContentText string     `gorm:"column:content_text;type:text;not null" json:"contentText" form:"contentText"`
	Version     int64      `gorm:"column:version;not null;default:1" json:"version" form:"version"`
	CreatedAt   timex.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt   timex.Time `gorm:"column:updated_at;autoUpdateTime:false;index:idx_note_uid_updated,priority:2" json:"updatedAt" form:"updatedAt"`
}

// TableName Note's table name
func (*Note) TableName() string {
	return TableNameNote
}
