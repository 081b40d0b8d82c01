package tally

import (
	"fmt"
	"math/big"

	"github.com/dustin/go-humanize"
)

// String returns a human readable summary of the snapshot.
func (s Snapshot) String() string {
	return fmt.Sprintf("total: %s km, messages: %s, connections (cur/max): %d/%d",
		commaUint64(s.TotalDistance),
		commaUint64(s.MessageCount),
		s.CurrentConnections,
		s.MaxConnections)
}

// commaUint64 formats the value with thousands separators over the full uint64 range.
func commaUint64(v uint64) string {
	return humanize.BigComma(new(big.Int).SetUint64(v))
}
