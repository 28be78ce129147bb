package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/validation"
)

type signup struct {
	Username string `form:"username" validate:"required,max=150,username"`
	Email    string `form:"email" validate:"omitempty,email"`
	Password string `form:"password1" validate:"required,min=8"`
	Confirm  string `form:"password2" validate:"eqfield=Password"`
}

func TestStructValid(t *testing.T) {
	err := validation.Struct(&signup{Username: "leo.t", Password: "long enough", Confirm: "long enough"})
	assert.NoError(t, err)
}

func TestStructFieldErrors(t *testing.T) {
	err := validation.Struct(&signup{Username: "bad name!", Email: "nope", Password: "short", Confirm: "other"})
	require.Error(t, err)

	fe := validation.Fields(err)
	require.NotNil(t, fe)
	assert.Equal(t, "Use only letters, digits and @/./+/-/_ characters.", fe["username"])
	assert.Equal(t, "Enter a valid email address.", fe["email"])
	assert.Equal(t, "Ensure this value has at least 8 characters.", fe["password1"])
	assert.Equal(t, "The two values do not match.", fe["password2"])
}

func TestRequired(t *testing.T) {
	fe := validation.Fields(validation.Struct(&signup{}))
	assert.Equal(t, "This field is required.", fe["username"])
	assert.Equal(t, "This field is required.", fe["password1"])
}

func TestFieldsOnOtherErrors(t *testing.T) {
	assert.Nil(t, validation.Fields(errors.New("boom")))
	assert.Nil(t, validation.Fields(nil))
}

func TestAddKeepsFirstMessage(t *testing.T) {
	fe := validation.FieldErrors{}
	fe.Add("text", "first")
	fe.Add("text", "second")
	assert.Equal(t, "first", fe["text"])
	assert.Contains(t, fe.Error(), "text: first")
}
