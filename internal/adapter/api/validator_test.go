package api

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Mobile string `json:"mobile" validate:"required"`
	SortBy string `query:"sortBy" validate:"omitempty,sortby"`
}

func TestValidator_FieldNamesAndSortBy(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&sample{})
	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "mobile", verrs[0].Field())

	assert.NoError(t, v.Validate(&sample{Mobile: "1", SortBy: "name:desc,createdAt"}))

	err = v.Validate(&sample{Mobile: "1", SortBy: "password:asc"})
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "sortBy", verrs[0].Field())
}
