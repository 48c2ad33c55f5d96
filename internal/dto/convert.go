package dto

import (
	"time"

	"github.com/haierkeys/fast-note-kb-service/internal/domain"
	"github.com/haierkeys/fast-note-kb-service/pkg/timex"

	"github.com/jinzhu/copier"
)

var copyOption = copier.Option{
	Converters: []copier.TypeConverter{
		{
			SrcType: time.Time{},
			DstType: timex.Time{},
			Fn: func(src interface{}) (interface{}, error) {
				return timex.Time(src.(time.Time)), nil
			},
		},
	},
}

// NoteFromDomain 领域模型转 DTO
func NoteFromDomain(n *domain.Note, tags []*domain.TagRef) (*NoteDTO, error) {
	out := &NoteDTO{}
	if err := copier.CopyWithOption(out, n, copyOption); err != nil {
		return nil, err
	}
	// the document tree is shared, not deep-copied
	out.Content = n.Content
	out.Tags = TagRefsFromDomain(tags)
	return out, nil
}

// NoteSummariesFromDomain never returns nil, so an empty listing encodes as []
func NoteSummariesFromDomain(list []*domain.NoteSummary) ([]*NoteSummaryDTO, error) {
	out := make([]*NoteSummaryDTO, 0, len(list))
	for _, s := range list {
		d := &NoteSummaryDTO{}
		if err := copier.CopyWithOption(d, s, copyOption); err != nil {
			return nil, err
		}
		d.Tags = TagRefsFromDomain(s.Tags)
		out = append(out, d)
	}
	return out, nil
}

// TagFromDomain 标签领域模型转 DTO
func TagFromDomain(t *domain.Tag) (*TagDTO, error) {
	out := &TagDTO{}
	if err := copier.CopyWithOption(out, t, copyOption); err != nil {
		return nil, err
	}
	return out, nil
}

// TagsFromDomain 批量转换
func TagsFromDomain(list []*domain.Tag) ([]*TagDTO, error) {
	out := make([]*TagDTO, 0, len(list))
	for _, t := range list {
		d, err := TagFromDomain(t)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// TagRefsFromDomain never returns nil
func TagRefsFromDomain(refs []*domain.TagRef) []*TagRefDTO {
	out := make([]*TagRefDTO, 0, len(refs))
	for _, r := range refs {
		out = append(out, &TagRefDTO{ID: r.ID, Title: r.Title, Color: r.Color})
	}
	return out
}

// TagRefsFromTags flattens full tags
func TagRefsFromTags(tags []*domain.Tag) []*TagRefDTO {
	out := make([]*TagRefDTO, 0, len(tags))
	for _, t := range tags {
		out = append(out, &TagRefDTO{ID: t.ID, Title: t.Title, Color: t.Color})
	}
	return out
}
