package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submissionForm struct {
	Points   int64  `json:"points" validate:"gt=0"`
	ImageURL string `json:"image_url" validate:"required,url"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(&submissionForm{Points: 10, ImageURL: "https://cdn.example.com/a.jpg"}))

	err := ValidateStruct(&submissionForm{Points: 0})
	require.Error(t, err)

	var fields Errors
	require.True(t, errors.As(err, &fields))
	assert.Len(t, fields, 2)
	assert.Equal(t, "gt", fields.Fields()["points"])
	assert.Equal(t, "required", fields.Fields()["image_url"])
	assert.Contains(t, err.Error(), "field 'points' failed validation: gt=0")
}

func TestValidateStruct_RejectsNonStruct(t *testing.T) {
	assert.Error(t, ValidateStruct(42))
	assert.NoError(t, ValidateStruct(nil))
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, ValidateVar("https://cdn.example.com/a.jpg", "required,url"))
	assert.Error(t, ValidateVar("not a url", "required,url"))
}
