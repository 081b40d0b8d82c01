package protocol

import (
	"bytes"
	"math"

	"github.com/pkg/errors"
)

const (
	// MaxMessageSize is the maximum amount of bytes read from a connection for a single message.
	MaxMessageSize = 31
	// MaxKilometers is the highest plausible distance a truck can travel in a month.
	MaxKilometers = 16000
)

var (
	// ReplyAccepted is sent to the client after the kilometers were added to the total.
	ReplyAccepted = []byte("KM received\n")
	// ReplyRejected is sent to the client if the message did not contain a valid distance.
	// The client is expected to send the message again.
	ReplyRejected = []byte("Corrupted message\n")
)

var (
	// ErrMalformed is returned in strict mode if the message is not a plain decimal number.
	ErrMalformed = errors.New("malformed message")
	// ErrOutOfRange is returned if the distance is negative or exceeds MaxKilometers.
	ErrOutOfRange = errors.New("distance out of range")
)

// ParseKilometers interprets a received message as a distance in kilometers.
//
// The message is parsed leniently: leading whitespace is skipped, an optional sign and the
// following decimal digits are read, everything after is ignored. A message without any
// digits is a distance of zero. In strict mode such messages, and messages with anything
// but whitespace after the digits, are rejected with ErrMalformed instead.
func ParseKilometers(data []byte, strict bool) (uint64, error) {
	value, digits, rest := parseDecimal(data)

	if strict && (digits == 0 || len(bytes.TrimSpace(rest)) != 0) {
		return 0, errors.Wrapf(ErrMalformed, "%q", data)
	}

	if value < 0 || value > MaxKilometers {
		return 0, errors.Wrapf(ErrOutOfRange, "%d", value)
	}

	return uint64(value), nil
}

// parseDecimal reads a signed decimal number from the beginning of data.
// It returns the value, the amount of digits read and the unparsed remainder.
// Values that do not fit into an int64 saturate.
func parseDecimal(data []byte) (value int64, digits int, rest []byte) {
	i := 0
	for i < len(data) && isSpace(data[i]) {
		i++
	}

	negative := false
	if i < len(data) && (data[i] == '+' || data[i] == '-') {
		negative = data[i] == '-'
		i++
	}

	var magnitude uint64
	overflow := false
	for ; i < len(data) && data[i] >= '0' && data[i] <= '9'; i++ {
		digits++
		if overflow {
			continue
		}

		d := uint64(data[i] - '0')
		if magnitude > (math.MaxUint64-d)/10 {
			overflow = true
			continue
		}
		magnitude = magnitude*10 + d
	}

	if digits == 0 {
		// nothing consumed, like a failed conversion
		return 0, 0, data
	}

	switch {
	case negative && (overflow || magnitude > math.MaxInt64):
		value = math.MinInt64
	case negative:
		value = -int64(magnitude)
	case overflow || magnitude > math.MaxInt64:
		value = math.MaxInt64
	default:
		value = int64(magnitude)
	}

	return value, digits, data[i:]
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
