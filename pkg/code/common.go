package code

import "net/http"

var (
	Success = NewSuss(1, lang{en: "Success", zh_cn: "成功"})
	Created = NewSuss(2, lang{en: "Created", zh_cn: "创建成功"}).HTTP(http.StatusCreated)

	Failed                    = NewError(400, lang{en: "Failed", zh_cn: "失败"})
	ErrorServerInternal       = NewError(500, lang{en: "Internal server error", zh_cn: "服务器内部错误"})
	ErrorNotFoundAPI          = NewError(404, lang{en: "API not found", zh_cn: "接口不存在"}).HTTP(http.StatusNotFound)
	ErrorInvalidParams        = NewError(1001, lang{en: "Invalid parameters", zh_cn: "参数错误"}).HTTP(http.StatusBadRequest)
	ErrorTooManyRequests      = NewError(1002, lang{en: "Too many requests", zh_cn: "请求过多"}).HTTP(http.StatusTooManyRequests)
	ErrorDBQuery              = NewError(1003, lang{en: "Database query failed", zh_cn: "数据库查询失败"})
	ErrorNotUserAuthToken     = NewError(1101, lang{en: "Authentication token missing", zh_cn: "缺少认证令牌"}).HTTP(http.StatusUnauthorized)
	ErrorInvalidUserAuthToken = NewError(1102, lang{en: "Authentication token invalid or expired", zh_cn: "认证令牌无效或已过期"}).HTTP(http.StatusUnauthorized)
	ErrorTokenGenerate        = NewError(1103, lang{en: "Failed to generate token", zh_cn: "生成令牌失败"})

	ErrorNoteNotFound        = NewError(2001, lang{en: "Note not found", zh_cn: "笔记不存在"}).HTTP(http.StatusNotFound)
	ErrorNoteVersionConflict = NewError(2002, lang{en: "Note was changed elsewhere, reload before saving", zh_cn: "笔记已在其他地方修改，请刷新后再保存"}).HTTP(http.StatusConflict)
	ErrorInvalidDocument     = NewError(2003, lang{en: "Invalid note document", zh_cn: "笔记文档格式错误"}).HTTP(http.StatusBadRequest)
	ErrorNoteEmptyPatch      = NewError(2004, lang{en: "Nothing to update", zh_cn: "没有需要更新的内容"}).HTTP(http.StatusBadRequest)

	ErrorTagNotFound    = NewError(3001, lang{en: "Tag not found", zh_cn: "标签不存在"}).HTTP(http.StatusNotFound)
	ErrorTagTitleExists = NewError(3002, lang{en: "Tag already exists", zh_cn: "标签已存在"}).HTTP(http.StatusConflict)
	ErrorTagTitleEmpty  = NewError(3003, lang{en: "Tag title is required", zh_cn: "标签名称不能为空"}).HTTP(http.StatusBadRequest)
)
