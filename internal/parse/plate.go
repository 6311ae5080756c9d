package parse

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	plateRe     = regexp.MustCompile(`^(\d{2})([A-Z]{1,2}\d??)(\d{4,5})$`)
	separatorRe = regexp.MustCompile(`[\s.\-_/]+`)
)

// ParsedPlate holds the parts of a licence plate number.
type ParsedPlate struct {
	Province string
	Series   string
	Number   string
}

// String renders the plate in the station's canonical form, e.g. 51B-123.45.
func (p ParsedPlate) String() string {
	number := p.Number
	if len(number) == 5 {
		number = number[:3] + "." + number[3:]
	}
	return p.Province + p.Series + "-" + number
}

// ParsePlate extracts province code, series and serial number from a raw plate.
// Case, spaces, dots and dashes in the input are ignored.
func ParsePlate(raw string) (ParsedPlate, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = separatorRe.ReplaceAllString(s, "")

	m := plateRe.FindStringSubmatch(s)
	if m == nil {
		return ParsedPlate{}, fmt.Errorf("unable to parse plate number: %q", raw)
	}
	return ParsedPlate{Province: m[1], Series: m[2], Number: m[3]}, nil
}

// NormalizePlate returns the canonical form of raw, or the trimmed upper-cased
// input when it is not a recognizable plate (old records hold free text).
func NormalizePlate(raw string) string {
	p, err := ParsePlate(raw)
	if err != nil {
		return strings.ToUpper(strings.TrimSpace(raw))
	}
	return p.String()
}
