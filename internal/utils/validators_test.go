package utils

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_errors "github.com/foodbridge-dev/foodbridge/internal/errors"
)

func TestContentValidator(t *testing.T) {
	v := NewContentValidator(100)

	t.Run("Plain text passes through", func(t *testing.T) {
		got, err := v.Content("hello there")
		require.NoError(t, err)
		assert.Equal(t, "hello there", got)
	})

	t.Run("Markup is stripped", func(t *testing.T) {
		got, err := v.Content("<script>alert(1)</script>hi")
		require.NoError(t, err)
		assert.Equal(t, "hi", got)
	})

	t.Run("Blank content rejected", func(t *testing.T) {
		_, err := v.Content("   \t\n ")
		require.Error(t, err)
		assert.True(t, internal_errors.HasCode(err, internal_errors.CodeEmptyContent))
	})

	t.Run("Too long rejected", func(t *testing.T) {
		_, err := v.Content(strings.Repeat("a", 101))
		require.Error(t, err)
		var errWithStatus *internal_errors.ErrorWithStatusCode
		require.ErrorAs(t, err, &errWithStatus)
		assert.Equal(t, http.StatusBadRequest, errWithStatus.StatusCode)
	})

	t.Run("Length counted in runes", func(t *testing.T) {
		_, err := v.Content(strings.Repeat("я", 100))
		require.NoError(t, err)
	})
}

func TestPostValidator(t *testing.T) {
	v := &PostValidator{}

	require.NoError(t, v.Fields("Bread", "5 loaves", "Main St"))
	require.Error(t, v.Fields("", "5 loaves", "Main St"))
	require.Error(t, v.Fields("Bread", "  ", "Main St"))
	require.Error(t, v.Fields("Bread", "5 loaves", ""))
}

func TestRegistrationValidator(t *testing.T) {
	v := &RegistrationValidator{}

	t.Run("Name", func(t *testing.T) {
		require.NoError(t, v.Name("al"))
		require.Error(t, v.Name("a"))
		require.Error(t, v.Name(strings.Repeat("a", 51)))
	})

	t.Run("Email", func(t *testing.T) {
		require.NoError(t, v.Email("alice@example.com"))
		require.Error(t, v.Email("not-an-email"))
		require.Error(t, v.Email(""))
	})

	t.Run("Password", func(t *testing.T) {
		require.NoError(t, v.Password("secret1"))
		require.Error(t, v.Password("short"))
	})
}
