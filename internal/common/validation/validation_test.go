package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePrizeID(t *testing.T) {
	for _, ok := range []string{"A", "door-03.hoodie", "x_1"} {
		assert.NoError(t, ValidatePrizeID(ok), ok)
	}
	for _, bad := range []string{"", "-lead", "has space", "a/b", strings.Repeat("a", MaxPrizeIDLength+1)} {
		assert.Error(t, ValidatePrizeID(bad), bad)
	}
}

func TestValidateText(t *testing.T) {
	assert.Error(t, ValidateRequiredText("   ", 10))
	assert.NoError(t, ValidateRequiredText("Glühwein", 8), "length counts runes")
	assert.Error(t, ValidateRequiredText("Glühwein!", 8))
	assert.NoError(t, ValidateOptionalText("", 5))
	assert.Error(t, ValidatePositiveInt(0))
	assert.NoError(t, ValidatePositiveInt(3))
}
