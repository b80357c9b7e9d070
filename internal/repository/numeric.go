package repository

import (
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
)

// RM amounts live in numeric(15,0) columns holding integer cents. These
// helpers are the only crossing point between pgtype.Numeric and int64.

// NumericToInt64 converts a pgtype.Numeric to int64. Returns an error if the
// value is NULL or overflows int64. A negative exponent (fractional digits)
// truncates toward zero; numeric(15,0) columns never produce one.
func NumericToInt64(n pgtype.Numeric) (int64, error) {
	if !n.Valid {
		return 0, fmt.Errorf("numeric value is NULL")
	}

	// pgtype.Numeric stores value as Int * 10^Exp
	bi := new(big.Int).Set(n.Int)

	if n.Exp > 0 {
		multiplier := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil)
		bi.Mul(bi, multiplier)
	} else if n.Exp < 0 {
		divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-n.Exp)), nil)
		bi.Div(bi, divisor)
	}

	if !bi.IsInt64() {
		return 0, fmt.Errorf("numeric value %s overflows int64", bi.String())
	}

	return bi.Int64(), nil
}

// Int64ToNumeric converts an int64 cent amount to pgtype.Numeric for writing
// to a numeric(15,0) column.
func Int64ToNumeric(v int64) pgtype.Numeric {
	return pgtype.Numeric{
		Int:              big.NewInt(v),
		Exp:              0,
		NaN:              false,
		InfinityModifier: pgtype.Finite,
		Valid:            true,
	}
}
