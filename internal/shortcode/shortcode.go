// Package shortcode formats and parses metis short codes.
//
// A short code is the string <PREFIX>-<LETTER>-<NNNN>: the workspace prefix,
// a one-letter document type, and a zero-padded decimal number. Numbers are
// padded to four digits and grow naturally past 9999.
package shortcode

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/randalmurphal/metis/internal/document"
	"github.com/randalmurphal/metis/internal/errors"
)

// codePattern matches <PREFIX>-<LETTER>-<NNNN>.
var codePattern = regexp.MustCompile(`^([A-Z][A-Z0-9]{1,7})-([VSITA])-(\d+)$`)

// ShortCode is a parsed short code.
type ShortCode struct {
	Prefix string
	Type   document.Type
	Number uint32
}

// Format builds the short code string for a prefix, type, and number.
func Format(prefix string, t document.Type, number uint32) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, t.Letter(), number)
}

// String renders the short code back to its canonical form.
func (c ShortCode) String() string {
	return Format(c.Prefix, c.Type, c.Number)
}

// Parse decodes a short code string. Malformed strings fail with
// InvalidShortCode.
func Parse(code string) (ShortCode, error) {
	m := codePattern.FindStringSubmatch(code)
	if m == nil {
		return ShortCode{}, errors.ErrInvalidShortCode(code)
	}
	t, ok := document.TypeFromLetter(m[2])
	if !ok {
		return ShortCode{}, errors.ErrInvalidShortCode(code)
	}
	n, err := strconv.ParseUint(m[3], 10, 32)
	if err != nil {
		return ShortCode{}, errors.ErrInvalidShortCode(code)
	}
	return ShortCode{Prefix: m[1], Type: t, Number: uint32(n)}, nil
}

// Number extracts the numeric suffix of a short code, for counter recovery.
func Number(code string) (uint32, error) {
	parsed, err := Parse(code)
	if err != nil {
		return 0, err
	}
	return parsed.Number, nil
}

// IsValid reports whether code is a well-formed short code.
func IsValid(code string) bool {
	_, err := Parse(code)
	return err == nil
}
