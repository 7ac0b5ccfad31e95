package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxPrizeIDLength      = 64
	MaxPrizeNameLength    = 200
	MaxPrizeMessageLength = 1000
	MaxSponsorLength      = 100
)

// Prize ids end up in URLs and CSV exports.
var prizeIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidatePrizeID checks a catalog id.
func ValidatePrizeID(id string) error {
	if id == "" {
		return fmt.Errorf("is required")
	}
	if len(id) > MaxPrizeIDLength {
		return fmt.Errorf("cannot exceed %d characters", MaxPrizeIDLength)
	}
	if !prizeIDRegex.MatchString(id) {
		return fmt.Errorf("may only contain letters, digits, '.', '_' and '-'")
	}
	return nil
}

// ValidateRequiredText checks a non-blank value of at most max characters.
func ValidateRequiredText(value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("is required")
	}
	return ValidateOptionalText(value, max)
}

// ValidateOptionalText checks a value of at most max characters.
func ValidateOptionalText(value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("cannot exceed %d characters", max)
	}
	return nil
}

// ValidatePositiveInt checks value > 0.
func ValidatePositiveInt(value int) error {
	if value <= 0 {
		return fmt.Errorf("must be at least 1")
	}
	return nil
}
