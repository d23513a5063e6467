package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tallacworks/titan-crm/pkg/models"
)

func strPtr(s string) *string { return &s }

func TestCoalesceCompanyRequest(t *testing.T) {
	t.Run("aliases_fill_canonical_fields", func(t *testing.T) {
		req := models.CompanyRequest{
			Name:       strPtr("Acme Trucking"),
			Industries: strPtr("Trucking"),
		}
		coalesceCompanyRequest(&req)

		assert.Equal(t, "Acme Trucking", *req.CompanyName)
		assert.Equal(t, "Trucking", *req.Industry)
	})

	t.Run("canonical_fields_win", func(t *testing.T) {
		req := models.CompanyRequest{
			CompanyName: strPtr("Canonical Co"),
			Name:        strPtr("Alias Co"),
			Industry:    strPtr("Logistics"),
			Industries:  strPtr("Trucking"),
		}
		coalesceCompanyRequest(&req)

		assert.Equal(t, "Canonical Co", *req.CompanyName)
		assert.Equal(t, "Logistics", *req.Industry)
	})

	t.Run("all_absent_stays_nil", func(t *testing.T) {
		var req models.CompanyRequest
		coalesceCompanyRequest(&req)

		assert.Nil(t, req.CompanyName)
		assert.Nil(t, req.Industry)
	})
}

func TestApplyCompanyAliases(t *testing.T) {
	co := models.Company{
		CompanyName: strPtr("Acme Trucking"),
		Industry:    strPtr("Trucking"),
	}
	applyCompanyAliases(&co)

	assert.Equal(t, co.CompanyName, co.Name)
	assert.Equal(t, co.Industry, co.Industries)
}
