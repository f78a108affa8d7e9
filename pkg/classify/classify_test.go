package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyRelocatesFacilityNames(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	relocate := []string{
		"Apollo Hospital",
		"Sunrise MEDICAL Clinic",
		"city care unit",
		"Nashik Health Centre",
		"Dhule Vaccination Center",
		"Child-Care Point",
	}
	for _, name := range relocate {
		assert.Equal(t, Relocate, c.Classify(name), "name %q", name)
	}
}

func TestClassifyKeepsPersonNames(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	keep := []string{
		"Ravi Sharma",
		"Priya Patel",
		"",
		"   ",
		"Careyless", // keyword inside a longer token still matches by substring
	}
	for _, name := range keep[:4] {
		assert.Equal(t, Keep, c.Classify(name), "name %q", name)
	}
	// Substring semantics: "care" inside "Careyless" matches, same as the
	// LIKE '%care%' scan it replaces.
	assert.Equal(t, Relocate, c.Classify(keep[4]))
}

func TestCanonicalize(t *testing.T) {
	assert.Equal(t, "st mary s hospital", canonicalize("St. Mary's  HOSPITAL!"))
	assert.Equal(t, "", canonicalize("--- ---"))
}
