package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tallacworks/titan-crm/pkg/models"
)

func TestFullName(t *testing.T) {
	t.Run("explicit_full_name_wins", func(t *testing.T) {
		got := fullName(models.CreateUserRequest{
			FirstName: strPtr("Pat"),
			LastName:  strPtr("Jones"),
			FullName:  strPtr("Patricia Jones"),
		})
		assert.Equal(t, "Patricia Jones", *got)
	})

	t.Run("derived_from_parts", func(t *testing.T) {
		got := fullName(models.CreateUserRequest{
			FirstName: strPtr("Pat"),
			LastName:  strPtr("Jones"),
		})
		assert.Equal(t, "Pat Jones", *got)
	})

	t.Run("first_name_only", func(t *testing.T) {
		got := fullName(models.CreateUserRequest{FirstName: strPtr("Pat")})
		assert.Equal(t, "Pat", *got)
	})

	t.Run("blank_full_name_falls_back", func(t *testing.T) {
		got := fullName(models.CreateUserRequest{
			FullName: strPtr("   "),
			LastName: strPtr("Jones"),
		})
		assert.Equal(t, "Jones", *got)
	})

	t.Run("nothing_given", func(t *testing.T) {
		assert.Nil(t, fullName(models.CreateUserRequest{}))
	})
}
