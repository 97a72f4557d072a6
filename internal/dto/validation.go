package dto

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"academia/backend/internal/model"
)

// RegisterValidators 向 gin 使用的 validator 注册自定义规则
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("academic_year", func(fl validator.FieldLevel) bool {
		return model.ValidYear(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("academic_session", func(fl validator.FieldLevel) bool {
		return model.ValidSession(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("notblank", validators.NotBlank)
}

// ValidationDetails 将校验错误转为可读的字段说明
func ValidationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out = append(out, fmt.Sprintf("%s is required", fe.Field()))
		case "notblank":
			out = append(out, fmt.Sprintf("%s must not be blank", fe.Field()))
		case "email":
			out = append(out, fmt.Sprintf("%s must be a valid email", fe.Field()))
		case "academic_year":
			out = append(out, fmt.Sprintf("%s must be one of 1st Year, 2nd Year, 3rd Year", fe.Field()))
		case "academic_session":
			out = append(out, fmt.Sprintf("%s must look like 2024-2027", fe.Field()))
		case "datetime":
			out = append(out, fmt.Sprintf("%s must be a date (YYYY-MM-DD)", fe.Field()))
		default:
			out = append(out, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
	}
	return out
}
