package extraction

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrInvalidNumeral = errors.New("invalid numeral")

// ParseError reports a numeral that falls outside the accepted grammar.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Input, ErrInvalidNumeral)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidNumeral
}

// magnitude suffixes and the power of ten they stand for. Checked in order.
var magnitudes = []struct {
	suffix   string
	exponent int
}{
	{"億", 8},
	{"万", 4},
	{"千", 3},
	{"K", 3},
	{"k", 3},
	{"M", 6},
	{"m", 6},
}

var decimalPattern = regexp.MustCompile(`^\d+(?:\.\d+)?$`)

// ParseNumber converts a numeral such as "500", "20,000", "2.8万" or "1.3千"
// into its value. Scaling is done by shifting the decimal exponent, so
// "2.8万" is exactly 28000 rather than the product of two floats.
func ParseNumber(s string) (float64, error) {
	cleaned := strings.ReplaceAll(compact(Fold(s)), ",", "")

	for _, m := range magnitudes {
		if rest, ok := strings.CutSuffix(cleaned, m.suffix); ok {
			return parseDecimal(s, rest, m.exponent)
		}
	}
	return parseDecimal(s, cleaned, 0)
}

func parseDecimal(input, digits string, exponent int) (float64, error) {
	if !decimalPattern.MatchString(digits) {
		return 0, &ParseError{Input: input}
	}
	if exponent != 0 {
		digits += "e" + strconv.Itoa(exponent)
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, &ParseError{Input: input}
	}
	return v, nil
}

// FormatWithCommas renders n with comma thousands separators.
func FormatWithCommas(n int64) string {
	sign := ""
	u := uint64(n)
	if n < 0 {
		sign = "-"
		u = uint64(-(n + 1)) + 1
	}
	digits := strconv.FormatUint(u, 10)

	var b strings.Builder
	b.WriteString(sign)
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
