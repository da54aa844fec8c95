package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/SMC-TutorBooking/internal/domain"
)

// New создает валидатор с тегами предметной области:
//
//	teaching_mode - online | home-visit | group (без учета регистра)
//	weekday       - название дня недели (без учета регистра)
//	time_window   - "HH:MM - HH:MM"
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("teaching_mode", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseTeachingMode(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseWeekDay(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("time_window", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseTimeWindow(fl.Field().String())
		return err == nil
	})

	return v
}

// Describe превращает ошибки валидатора в короткое сообщение "Field: tag"
func Describe(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	parts := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
