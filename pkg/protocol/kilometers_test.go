package protocol

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKilometersLenient(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected uint64
		err      error
	}{
		{name: "plain", input: "100", expected: 100},
		{name: "zero", input: "0", expected: 0},
		{name: "upper bound", input: "16000", expected: 16000},
		{name: "trailing newline", input: "250\n", expected: 250},
		{name: "windows newline", input: "250\r\n", expected: 250},
		{name: "leading whitespace", input: " \t 77", expected: 77},
		{name: "plus sign", input: "+12", expected: 12},
		{name: "trailing garbage", input: "12abc", expected: 12},
		{name: "not a number", input: "hello", expected: 0},
		{name: "empty", input: "", expected: 0},
		{name: "only sign", input: "-", expected: 0},
		{name: "leading garbage", input: "km 500", expected: 0},
		{name: "above upper bound", input: "16001", err: ErrOutOfRange},
		{name: "negative", input: "-5", err: ErrOutOfRange},
		{name: "overflow", input: "99999999999999999999999999", err: ErrOutOfRange},
		{name: "negative overflow", input: "-99999999999999999999999999", err: ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			km, err := ParseKilometers([]byte(tt.input), false)
			if tt.err != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, km)
		})
	}
}

func TestParseKilometersStrict(t *testing.T) {
	km, err := ParseKilometers([]byte("  1500 \n"), true)
	require.NoError(t, err)
	assert.EqualValues(t, 1500, km)

	for _, input := range []string{"hello", "", "12abc", "-", "km 500"} {
		_, err := ParseKilometers([]byte(input), true)
		assert.True(t, errors.Is(err, ErrMalformed), "input %q", input)
	}

	_, err = ParseKilometers([]byte("20000"), true)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestParseDecimal(t *testing.T) {
	value, digits, rest := parseDecimal([]byte("-42 rest"))
	assert.EqualValues(t, -42, value)
	assert.Equal(t, 2, digits)
	assert.Equal(t, " rest", string(rest))

	value, digits, _ = parseDecimal([]byte("18446744073709551616"))
	assert.EqualValues(t, int64(math.MaxInt64), value)
	assert.Equal(t, 20, digits)

	value, _, _ = parseDecimal([]byte("-9223372036854775808"))
	assert.EqualValues(t, int64(math.MinInt64), value)
}
