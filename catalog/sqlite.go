package catalog

import (
	"database/sql/driver"
	"fmt"

	"github.com/dustin/go-humanize"
	"modernc.org/sqlite"
)

// Extra scalar functions installed into every sqlite session, mainly for
// data display.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("fmt_byte_size", 1, fmtByteSize)
}

// fmt_byte_size(n) renders a byte count as a human-readable decimal size,
// e.g. fmt_byte_size(1500000) -> "1.5 MB".
func fmtByteSize(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case int64:
		if v < 0 {
			// Negating math.MinInt64 overflows; go through v+1 instead.
			return "-" + humanize.Bytes(uint64(-(v+1))+1), nil
		}
		return humanize.Bytes(uint64(v)), nil
	case float64:
		if v < 0 {
			return "-" + humanize.Bytes(uint64(-v)), nil
		}
		return humanize.Bytes(uint64(v)), nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("fmt_byte_size: expected a number, got %T", v)
	}
}
