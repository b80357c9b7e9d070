package repository

import (
	"math"
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericToInt64_Zero(t *testing.T) {
	v, err := NumericToInt64(Int64ToNumeric(0))
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}

func TestNumericToInt64_MinWithdrawCents(t *testing.T) {
	// RM10.00 as integer cents
	v, err := NumericToInt64(Int64ToNumeric(1000))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), v)
}

func TestNumericToInt64_MaxColumnValue(t *testing.T) {
	// numeric(15,0) max is 999_999_999_999_999
	maxVal := int64(999_999_999_999_999)
	v, err := NumericToInt64(Int64ToNumeric(maxVal))
	require.NoError(t, err)
	assert.Equal(t, maxVal, v)
}

func TestNumericToInt64_NullReturnsError(t *testing.T) {
	_, err := NumericToInt64(pgtype.Numeric{Valid: false})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "NULL")
}

func TestNumericToInt64_WithPositiveExponent(t *testing.T) {
	// 500 * 10^2 = 50000
	n := pgtype.Numeric{Int: big.NewInt(500), Exp: 2, Valid: true}
	v, err := NumericToInt64(n)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), v)
}

func TestNumericToInt64_WithNegativeExponentTruncates(t *testing.T) {
	// 50099 * 10^-2 = 500 (truncated)
	n := pgtype.Numeric{Int: big.NewInt(50099), Exp: -2, Valid: true}
	v, err := NumericToInt64(n)
	require.NoError(t, err)
	assert.Equal(t, int64(500), v)
}

func TestNumericToInt64_Overflow(t *testing.T) {
	overflow := new(big.Int).SetInt64(math.MaxInt64)
	overflow.Add(overflow, big.NewInt(1))
	_, err := NumericToInt64(pgtype.Numeric{Int: overflow, Exp: 0, Valid: true})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "overflows")
}

func TestInt64ToNumeric_Roundtrip(t *testing.T) {
	values := []int64{0, 1, -1, 1000, 999_999_999_999_999, math.MaxInt64, math.MinInt64}
	for _, v := range values {
		result, err := NumericToInt64(Int64ToNumeric(v))
		require.NoError(t, err, "value: %d", v)
		assert.Equal(t, v, result, "value: %d", v)
	}
}
