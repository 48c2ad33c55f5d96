package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound the record is absent or owned by someone else
	ErrNotFound = errors.New("record not found")
	// ErrNoteNotFound 笔记不存在
	ErrNoteNotFound = fmt.Errorf("note: %w", ErrNotFound)
	// ErrTagNotFound 标签不存在
	ErrTagNotFound = fmt.Errorf("tag: %w", ErrNotFound)
	// ErrVersionConflict the note changed since the caller's base version
	ErrVersionConflict = errors.New("note version conflict")
	// ErrTagTitleExists another tag of the owner already has this normalized title
	ErrTagTitleExists = errors.New("tag title already exists")
)
