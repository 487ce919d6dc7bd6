package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	clockPattern     = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$|^24:00$`)
	accessKeyPattern = regexp.MustCompile(`^[A-Za-z0-9]{8}$`)
)

// Register 在 gin 的绑定引擎上注册自定义规则：
//   - shift_date  YYYY-MM-DD 日历日期
//   - clock       HH:MM（允许 24:00）
//   - access_key  8 位字母数字密钥
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin 绑定引擎不是 validator/v10")
	}
	return register(v)
}

// New 返回注册了自定义规则的独立实例
func New() *validator.Validate {
	v := validator.New()
	_ = register(v)
	return v
}

func register(v *validator.Validate) error {
	// 错误信息使用 json 字段名
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		"shift_date": validateDate,
		"clock":      validateClock,
		"access_key": validateAccessKey,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("注册校验规则 %s 失败: %w", tag, err)
		}
	}
	return nil
}

func validateDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 10 {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func validateClock(fl validator.FieldLevel) bool {
	return clockPattern.MatchString(fl.Field().String())
}

func validateAccessKey(fl validator.FieldLevel) bool {
	return accessKeyPattern.MatchString(fl.Field().String())
}

// Message 将绑定错误转为面向用户的简短中文说明
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "请求参数格式错误"
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s 为必填项", field)
	case "shift_date":
		return fmt.Sprintf("%s 必须为 YYYY-MM-DD 格式的日期", field)
	case "clock":
		return fmt.Sprintf("%s 必须为 HH:MM 格式的时间", field)
	case "access_key":
		return fmt.Sprintf("%s 必须为 8 位字母数字", field)
	case "uuid":
		return fmt.Sprintf("%s 不是合法的 ID", field)
	case "min", "max":
		return fmt.Sprintf("%s 超出允许范围（%s=%s）", field, fe.Tag(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s 必须为 %s 之一", field, fe.Param())
	default:
		return fmt.Sprintf("%s 校验失败", field)
	}
}
