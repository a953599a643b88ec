package usecase

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator"
	"github.com/rbroggi/studyhub/internal/core/model"
)

var (
	nicknamePattern  = regexp.MustCompile(`^[a-z0-9_-]{3,20}$`)
	studyPathPattern = regexp.MustCompile(`^[a-z0-9_-]{2,20}$`)
)

// newValidate builds the struct validator shared by the use-cases, with the custom
// nickname and study-path slug rules registered.
func newValidate() *validator.Validate {
	v := validator.New()
	// RegisterValidation only fails on an empty tag name.
	_ = v.RegisterValidation("nickname", func(fl validator.FieldLevel) bool {
		return nicknamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("studypath", func(fl validator.FieldLevel) bool {
		return studyPathPattern.MatchString(fl.Field().String())
	})
	return v
}

// validateStruct runs tag validation and converts the first violation into a
// model.ValidationError so callers can tell malformed input apart from state errors.
func validateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var violations validator.ValidationErrors
	if errors.As(err, &violations) && len(violations) > 0 {
		first := violations[0]
		return model.Invalid(strings.ToLower(first.Field()), "failed on the "+first.ActualTag()+" rule")
	}
	return err
}
