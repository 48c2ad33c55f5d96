// Package timex provides a time type that stores as DATETIME and serializes as RFC 3339
// Package timex 提供以 DATETIME 存储、以 RFC 3339 序列化的时间类型
package timex

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Layout database text layout, used when the driver returns DATETIME as string
// Layout 数据库文本格式，驱动以字符串返回 DATETIME 时使用
const Layout = "2006-01-02 15:04:05.000"

// Time wraps time.Time for gorm columns
// Time 包装 time.Time 用于 gorm 字段
type Time time.Time

// Now returns the current time truncated to milliseconds
// Now 返回截断到毫秒的当前时间
func Now() Time {
	return Time(time.Now().Truncate(time.Millisecond))
}

// Std returns the standard library value
func (t Time) Std() time.Time {
	return time.Time(t)
}

func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Time) Unix() int64 {
	return time.Time(t).Unix()
}

func (t Time) UnixMilli() int64 {
	return time.Time(t).UnixMilli()
}

func (t Time) UnixMicro() int64 {
	return time.Time(t).UnixMicro()
}

func (t Time) UnixNano() int64 {
	return time.Time(t).UnixNano()
}

func (t Time) String() string {
	return time.Time(t).Format(time.RFC3339Nano)
}

// MarshalJSON writes RFC 3339 with milliseconds, null for the zero value
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + time.Time(t).UTC().Format("2006-01-02T15:04:05.000Z07:00") + `"`), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*t = Time{}
		return nil
	}
	parsed, err := time.Parse(`"`+time.RFC3339Nano+`"`, s)
	if err != nil {
		return err
	}
	*t = Time(parsed)
	return nil
}

// Value implements driver.Valuer
// Value 实现 driver.Valuer 接口
func (t Time) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return time.Time(t), nil
}

// Scan implements sql.Scanner
// Scan 实现 sql.Scanner 接口
func (t *Time) Scan(v any) error {
	switch val := v.(type) {
	case nil:
		*t = Time{}
	case time.Time:
		*t = Time(val)
	case string:
		return t.parse(val)
	case []byte:
		return t.parse(string(val))
	default:
		return fmt.Errorf("timex: cannot scan %T into Time", v)
	}
	return nil
}

func (t *Time) parse(s string) error {
	for _, layout := range []string{Layout, time.DateTime, time.RFC3339Nano} {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			*t = Time(parsed)
			return nil
		}
	}
	return fmt.Errorf("timex: cannot parse %q", s)
}
