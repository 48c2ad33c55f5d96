// Package validator wires go-playground/validator into gin with translated messages
// Package validator 将 go-playground/validator 接入 gin 并提供翻译后的错误信息
package validator

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// CustomValidator implements binding.StructValidator
// CustomValidator 实现 binding.StructValidator 接口
type CustomValidator struct {
	once     sync.Once
	validate *validator.Validate
}

var _ binding.StructValidator = (*CustomValidator)(nil)

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

func (v *CustomValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	value := reflect.ValueOf(obj)
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil
	}
	v.lazyinit()
	return v.validate.Struct(obj)
}

func (v *CustomValidator) Engine() any {
	v.lazyinit()
	return v.validate
}

func (v *CustomValidator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New()
		v.validate.SetTagName("binding")
		v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form", "uri"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return ""
		})
	})
}

var (
	tagColorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[a-z]+(-[a-z0-9]+)*)$`)
	sortFields      = map[string]bool{"updatedAt": true, "createdAt": true, "title": true}
)

// IsTagColor reports whether s is a named color token or a #rgb / #rrggbb value
func IsTagColor(s string) bool {
	return tagColorPattern.MatchString(s)
}

// custom validation tags and their messages
var customRules = []struct {
	tag  string
	fn   validator.Func
	en   string
	zhCN string
}{
	{
		tag:  "tagcolor",
		fn:   func(fl validator.FieldLevel) bool { return IsTagColor(fl.Field().String()) },
		en:   "{0} must be a color name or a #rgb / #rrggbb value",
		zhCN: "{0}必须是颜色名称或 #rgb / #rrggbb 格式",
	},
	{
		tag:  "sortfield",
		fn:   func(fl validator.FieldLevel) bool { return sortFields[fl.Field().String()] },
		en:   "{0} must be one of updatedAt, createdAt, title",
		zhCN: "{0}必须是 updatedAt、createdAt、title 之一",
	},
	{
		tag:  "notblank",
		fn:   func(fl validator.FieldLevel) bool { return strings.TrimSpace(fl.Field().String()) != "" },
		en:   "{0} must not be blank",
		zhCN: "{0}不能为空",
	},
}

// Setup installs the custom validator as gin's binding validator, registers custom
// rules and returns a translator holding en and zh messages.
// Setup 安装自定义验证器并返回包含中英文翻译的 UniversalTranslator
func Setup() (*ut.UniversalTranslator, error) {
	cv := NewCustomValidator()
	binding.Validator = cv
	validate := cv.Engine().(*validator.Validate)

	uni := ut.New(en.New(), en.New(), zh.New())
	enTrans, _ := uni.GetTranslator("en")
	zhTrans, _ := uni.GetTranslator("zh")

	if err := en_translations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}
	if err := zh_translations.RegisterDefaultTranslations(validate, zhTrans); err != nil {
		return nil, err
	}

	for _, rule := range customRules {
		if err := validate.RegisterValidation(rule.tag, rule.fn); err != nil {
			return nil, err
		}
		if err := registerTranslation(validate, enTrans, rule.tag, rule.en); err != nil {
			return nil, err
		}
		if err := registerTranslation(validate, zhTrans, rule.tag, rule.zhCN); err != nil {
			return nil, err
		}
	}
	return uni, nil
}

func registerTranslation(v *validator.Validate, trans ut.Translator, tag, text string) error {
	return v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error {
			return t.Add(tag, text, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}
