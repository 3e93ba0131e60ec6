package extraction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want float64
	}{
		{"500", 500},
		{"20,000", 20000},
		{"1,300,000", 1300000},
		{"2.8万", 28000},
		{"1.3千", 1300},
		{"12万", 120000},
		{"1.5億", 150000000},
		{"1.2K", 1200},
		{"3.4M", 3400000},
		{" 4 5 ", 45},
		{"５００", 500},
		{"２０，０００", 20000},
		{"0.1万", 1000},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseNumber(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNumber_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "万", "abc", "1.2.3", "-5", "12x", ".5"} {
		_, err := ParseNumber(in)
		require.Error(t, err, in)

		var perr *ParseError
		assert.True(t, errors.As(err, &perr), in)
		assert.ErrorIs(t, err, ErrInvalidNumeral)
	}
}

func TestParseNumber_CommaRoundTrip(t *testing.T) {
	t.Parallel()

	for _, n := range []int64{0, 7, 999, 1000, 12345, 999999, 1000000, 1300000, 987654321, 9007199254740991} {
		s := FormatWithCommas(n)
		got, err := ParseNumber(s)
		require.NoError(t, err, s)
		assert.Equal(t, float64(n), got, s)
	}
}

func TestFormatWithCommas(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", FormatWithCommas(0))
	assert.Equal(t, "999", FormatWithCommas(999))
	assert.Equal(t, "1,000", FormatWithCommas(1000))
	assert.Equal(t, "1,300,000", FormatWithCommas(1300000))
	assert.Equal(t, "-12,345", FormatWithCommas(-12345))
}
