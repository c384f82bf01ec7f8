package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidOrgSlug(t *testing.T) {
	valid := []string{"acme", "acme-store", "store-42", "a1-b2-c3"}
	for _, s := range valid {
		assert.True(t, ValidOrgSlug(s), "expected %q to be valid", s)
	}

	invalid := []string{
		"",
		"Acme-Store",
		"acme_store",
		"-acme",
		"acme-",
		"acme--store",
		"acme store",
		"acme;DROP TABLE organizations",
		strings.Repeat("a", 65),
	}
	for _, s := range invalid {
		assert.False(t, ValidOrgSlug(s), "expected %q to be invalid", s)
	}
}
