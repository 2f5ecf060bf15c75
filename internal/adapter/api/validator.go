package api

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"profilehub/internal/domain/repository"
	"profilehub/pkg/utils"
)

type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator reports fields by their json (or form) name and knows the
// sortby tag used on list queries.
func NewValidator() *CustomValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation("sortby", validateSortBy)

	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func validateSortBy(fl validator.FieldLevel) bool {
	fields, err := utils.ParseSortBy(fl.Field().String())
	if err != nil {
		return false
	}
	for _, f := range fields {
		if _, ok := repository.SortableFields[f.Field]; !ok {
			return false
		}
	}
	return true
}
