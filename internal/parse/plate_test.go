package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePlate(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  ParsedPlate
		expectErr bool
	}{
		{
			name:     "Canonical five digit",
			raw:      "51B-123.45",
			expected: ParsedPlate{Province: "51", Series: "B", Number: "12345"},
		},
		{
			name:     "Lower case with spaces",
			raw:      " 51b 123 45 ",
			expected: ParsedPlate{Province: "51", Series: "B", Number: "12345"},
		},
		{
			name:     "Two letter series",
			raw:      "29LD-12345",
			expected: ParsedPlate{Province: "29", Series: "LD", Number: "12345"},
		},
		{
			name:     "Old four digit number",
			raw:      "51B-1234",
			expected: ParsedPlate{Province: "51", Series: "B", Number: "1234"},
		},
		{
			name:      "Free text",
			raw:       "xe cua ong Ba",
			expectErr: true,
		},
		{
			name:      "Empty",
			raw:       "",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParsePlate(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, parsed)
		})
	}
}

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "51B-123.45", NormalizePlate("51b12345"))
	assert.Equal(t, "43H-1234", NormalizePlate("43h 1234"))
	assert.Equal(t, "UNKNOWN PLATE", NormalizePlate(" unknown plate "))
}
