// internal/services/ledger_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitAmount(t *testing.T) {
	split := SplitAmount(100, 10)

	assert.Equal(t, 100.0, split.Amount)
	assert.Equal(t, 10.0, split.PlatformFee)
	assert.Equal(t, 90.0, split.SellerAmount)
}

func TestSplitAmountSumInvariant(t *testing.T) {
	cases := []struct {
		amount     float64
		feePercent float64
	}{
		{100, 10},
		{19.99, 10},
		{0.01, 10},
		{33.33, 7.5},
		{250.75, 12.25},
		{9999.99, 10},
		{42, 0},
		{42, 100},
	}

	for _, tc := range cases {
		split := SplitAmount(tc.amount, tc.feePercent)
		require.Equal(t, tc.amount, split.PlatformFee+split.SellerAmount,
			"fee %v + seller %v must equal amount %v", split.PlatformFee, split.SellerAmount, tc.amount)
		require.GreaterOrEqual(t, split.PlatformFee, 0.0)
	}
}

func TestSplitAmountRoundsFeeToCents(t *testing.T) {
	// 19.99 at 10% is 1.999; the fee leg rounds to 2.00 and the seller
	// absorbs the remainder.
	split := SplitAmount(19.99, 10)

	assert.Equal(t, 2.00, split.PlatformFee)
	assert.Equal(t, 17.99, split.SellerAmount)
}

func TestSplitAmountZeroFee(t *testing.T) {
	split := SplitAmount(50, 0)

	assert.Equal(t, 0.0, split.PlatformFee)
	assert.Equal(t, 50.0, split.SellerAmount)
}
