package response_test

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/consumption-tracker/internal/http/response"
)

func TestStatusOKWithData(t *testing.T) {
	resp := response.StatusOKWithData(map[string]any{"key": "value"})

	assert.Equal(t, response.StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestError(t *testing.T) {
	resp := response.Error(response.CodeInvalidCredentials, "invalid email or password")

	assert.Equal(t, response.StatusError, resp.Status)
	assert.Equal(t, "invalid_credentials", resp.ErrorCode)
	assert.Equal(t, "invalid email or password", resp.Error)
}

func TestValidationError(t *testing.T) {
	type request struct {
		Email    string  `validate:"required,email"`
		Password string  `validate:"required,min=8"`
		Value    float64 `validate:"gt=0"`
	}

	v := validator.New()
	err := v.Struct(request{Email: "not-an-email", Password: "short", Value: -1})
	require.Error(t, err)

	resp := response.ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, response.StatusError, resp.Status)
	assert.Equal(t, response.CodeValidationError, resp.ErrorCode)
	assert.Equal(t, "field email must be a valid email address", resp.Details["email"])
	assert.Equal(t, "field password is shorter than 8 characters", resp.Details["password"])
	assert.Equal(t, "field value must be greater than 0", resp.Details["value"])
}
