package model

import "github.com/haierkeys/fast-note-kb-service/pkg/timex"

const TableNameTag = "tag"

// Tag mapped from table <tag>
type Tag struct {
	ID        string     `gorm:"column:id;primaryKey;size:36" json:"id" form:"id"`
	UID       int64      `gorm:"column:uid;not null;uniqueIndex:idx_tag_uid_title_key,priority:1" json:"uid" form:"uid"`
	Title     string     `gorm:"column:title;size:255;not null" json:"title" form:"title"`
	TitleKey  string     `gorm:"column:title_key;size:191;not null;uniqueIndex:idx_tag_uid_title_key,priority:2" json:"titleKey" form:"titleKey"`
	Color     string     `gorm:"column:color;size:32;not null;default:'gray'" json:"color" form:"color"`
	CreatedAt timex.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName Tag's table name
func (*Tag) TableName() string {
	return TableNameTag
}
