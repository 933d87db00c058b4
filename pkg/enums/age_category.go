package enums

import "fmt"

// AgeCategory groups books by the reader age band they target.
type AgeCategory string

const (
	AgeCategoryBaby       AgeCategory = "baby"
	AgeCategoryPreschool  AgeCategory = "preschool"
	AgeCategoryElementary AgeCategory = "elementary"
	AgeCategoryPreteen    AgeCategory = "preteen"
)

var validAgeCategories = []AgeCategory{
	AgeCategoryBaby,
	AgeCategoryPreschool,
	AgeCategoryElementary,
	AgeCategoryPreteen,
}

// String implements fmt.Stringer.
func (a AgeCategory) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AgeCategory.
func (a AgeCategory) IsValid() bool {
	for _, candidate := range validAgeCategories {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAgeCategory converts raw input into an AgeCategory.
func ParseAgeCategory(value string) (AgeCategory, error) {
	for _, candidate := range validAgeCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid age category %q", value)
}
