package logger

// 统一的日志字段命名常量
// Shared log field names, so log queries work across packages
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldUID 用户 ID 字段
	FieldUID = "uid"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldNoteID 笔记 ID 字段
	FieldNoteID = "noteId"

	// FieldTagID 标签 ID 字段
	FieldTagID = "tagId"

	// FieldVersion 笔记版本字段
	FieldVersion = "version"

	// FieldAttempt 重试次数字段
	FieldAttempt = "attempt"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldTask 任务名称字段
	FieldTask = "task"
)
