package code

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code *Code
		want int
	}{
		{Success, http.StatusOK},
		{ErrorNotUserAuthToken, http.StatusUnauthorized},
		{ErrorInvalidUserAuthToken, http.StatusUnauthorized},
		{ErrorNoteNotFound, http.StatusNotFound},
		{ErrorTagNotFound, http.StatusNotFound},
		{ErrorTagTitleExists, http.StatusConflict},
		{ErrorNoteVersionConflict, http.StatusConflict},
		{ErrorInvalidParams, http.StatusBadRequest},
		{ErrorDBQuery, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.StatusCode(), tt.code.Msg())
	}
}

func TestCode_WithDoesNotMutateRegistered(t *testing.T) {
	c := ErrorDBQuery.WithDetails("boom").WithData(1)

	assert.False(t, ErrorDBQuery.HaveDetails())
	assert.False(t, ErrorDBQuery.HaveData())
	assert.Equal(t, []string{"boom"}, c.Details())
	assert.Equal(t, 1, c.Data())
	assert.True(t, errors.Is(c, ErrorDBQuery))
	assert.False(t, errors.Is(c, ErrorTagNotFound))
}

func TestLang(t *testing.T) {
	assert.Equal(t, "Tag already exists", ErrorTagTitleExists.Lang.GetMessageIn("en"))
	assert.Equal(t, "标签已存在", ErrorTagTitleExists.Lang.GetMessageIn("zh-CN"))
	assert.Equal(t, "Tag already exists", ErrorTagTitleExists.Lang.GetMessageIn("fr"))
	assert.Equal(t, "", NormalizeLang("fr"))
}

func TestGlobalDefaultLang(t *testing.T) {
	// codes registered during package init render in the fallback language
	assert.Equal(t, "Success", sussCodes[Success.Code()])
	assert.Equal(t, "Note not found", codes[ErrorNoteNotFound.Code()])

	t.Cleanup(func() { lng.Store(FALLBACK_LNG) })

	assert.NoError(t, SetGlobalDefaultLang("zh-CN"))
	assert.Equal(t, "zh_cn", GetGlobalDefaultLang())
	assert.Equal(t, "笔记不存在", ErrorNoteNotFound.Lang.GetMessage())

	assert.Error(t, SetGlobalDefaultLang("fr"))
	assert.Equal(t, FALLBACK_LNG, GetGlobalDefaultLang())
}
