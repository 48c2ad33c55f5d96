package model

import "github.com/haierkeys/fast-note-kb-service/pkg/timex"

const TableNameNoteTag = "note_tag"

// NoteTag mapped from table <note_tag>
type NoteTag struct {
	NoteID    string     `gorm:"column:note_id;primaryKey;size:36" json:"noteId" form:"noteId"`
	TagID     string     `gorm:"column:tag_id;primaryKey;size:36;index:idx_note_tag_tag" json:"tagId" form:"tagId"`
	UID       int64      `gorm:"column:uid;not null;index:idx_note_tag_uid" json:"uid" form:"uid"`
	CreatedAt timex.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt" form:"createdAt"`
}

// TableName NoteTag's table name
func (*NoteTag) TableName() string {
	return TableNameNoteTag
}
