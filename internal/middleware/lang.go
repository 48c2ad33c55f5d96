package middleware

import (
	"github.com/haierkeys/fast-note-kb-service/pkg/app"
	"github.com/haierkeys/fast-note-kb-service/pkg/code"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// LangWithTranslator 创建带翻译器的语言中间件
// 语言只写入当前请求的上下文，不修改全局默认语言
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var lang string
		if s, exist := c.GetQuery("lang"); exist {
			lang = s
		} else if s = c.GetHeader("lang"); s != "" {
			lang = s
		} else if s = c.GetHeader("Accept-Language"); s != "" {
			lang = s
		}

		lang = code.NormalizeLang(lang)
		c.Set(app.LangKey, lang)

		if uni != nil {
			trans, found := uni.GetTranslator(translatorLocale(app.GetLang(c)))
			if !found {
				trans, _ = uni.GetTranslator("en")
			}
			c.Set("trans", trans)
		}

		c.Next()
	}
}

// translatorLocale maps a response language to the locale name used by the translators
func translatorLocale(lang string) string {
	if code.NormalizeLang(lang) == "zh_cn" {
		return "zh"
	}
	return "en"
}
