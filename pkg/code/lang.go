package code

import (
	"errors"
	"strings"
	"sync/atomic"
)

// lang stores English and Chinese text
// lang 类型，用来存储英文和中文文本
type lang struct {
	en    string // English // 英文
	zh_cn string // Chinese // 中文
}

const FALLBACK_LNG = "en"

var supportedLanguages = []string{"en", "zh_cn"}

// default language for messages rendered outside a request; empty until SetGlobalDefaultLang
var lng atomic.Value

// GetMessage returns the message in the global default language
// GetMessage 返回全局默认语言的消息
func (l lang) GetMessage() string {
	return l.GetMessageIn(GetGlobalDefaultLang())
}

// GetMessageIn returns the message in the given language, falling back to English
// GetMessageIn 返回指定语言的消息，缺失时回退到英文
func (l lang) GetMessageIn(language string) string {
	switch NormalizeLang(language) {
	case "zh_cn":
		if l.zh_cn != "" {
			return l.zh_cn
		}
	}
	return l.en
}

// NormalizeLang maps "zh-CN", "zh", "ZH_cn" and similar to a supported key, or "" if unknown
func NormalizeLang(language string) string {
	language = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(language), "-", "_"))
	switch {
	case language == "":
		return ""
	case strings.HasPrefix(language, "zh"):
		return "zh_cn"
	case strings.HasPrefix(language, "en"):
		return "en"
	}
	return ""
}

// GetSupportedLanguages returns all supported languages
func GetSupportedLanguages() []string {
	return append([]string{}, supportedLanguages...)
}

// SetGlobalDefaultLang sets the global default language
// 设置全局默认语言
func SetGlobalDefaultLang(language string) error {
	if l := NormalizeLang(language); l != "" {
		lng.Store(l)
		return nil
	}
	lng.Store(FALLBACK_LNG)
	return errors.New("unsupported language type, set defaulting to " + FALLBACK_LNG)
}

// GetGlobalDefaultLang gets the global default language
// 获取全局默认语言
func GetGlobalDefaultLang() string {
	if s, ok := lng.Load().(string); ok {
		return s
	}
	return FALLBACK_LNG
}
