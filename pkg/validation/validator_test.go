package validation

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/require"
)

type signupPayload struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Username string `json:"username" binding:"required,uname"`
}

func TestToDetails(t *testing.T) {
	Init()

	t.Run("aggregates all failing fields under their json names", func(t *testing.T) {
		err := binding.Validator.ValidateStruct(&signupPayload{
			Email:    "not-an-email",
			Password: "short",
			Username: "ab",
		})
		require.Error(t, err)

		details := ToDetails(err)
		require.Equal(t, "is required", details["full_name"])
		require.Equal(t, "must be a valid email", details["email"])
		require.Equal(t, "must be at least 8 characters", details["password"])
		require.Equal(t, "must be 3-30 letters and numbers", details["username"])
	})

	t.Run("valid payload produces no error", func(t *testing.T) {
		err := binding.Validator.ValidateStruct(&signupPayload{
			FullName: "Alice Carter",
			Email:    "a@x.com",
			Password: "password123",
			Username: "alice",
		})
		require.NoError(t, err)
	})

	t.Run("nil error gives nil details", func(t *testing.T) {
		require.Nil(t, ToDetails(nil))
	})

	t.Run("unknown errors fall back to a payload message", func(t *testing.T) {
		details := ToDetails(errors.New("unexpected EOF"))
		require.Equal(t, map[string]string{"payload": "invalid payload"}, details)
	})
}
