// internal/valuation/valuation_test.go
package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookswap/bookswap-backend/internal/models"
)

func TestEstimateAtKnownScenario(t *testing.T) {
	// condition=good, originalPrice=20, published 1975 at reference year 2025
	// (age 50 -> depreciation floor 0.4), 50 views + 10 favorites -> demand
	// score 0.1 -> market demand 0.55, pre-1980 rarity 1.2.
	got := EstimateAt(Input{
		Condition:       models.BookConditionGood,
		OriginalPrice:   20,
		PublicationYear: 1975,
		ViewCount:       50,
		FavoriteCount:   10,
	}, 2025)

	// 20 * (0.65*0.3 + 0.4*0.2 + 0.55*0.25 + 1.2*0.15 + 0.10) = 13.85
	assert.InDelta(t, 13.85, got, 0.0001)
}

func TestEstimateAtConditionScores(t *testing.T) {
	cases := []struct {
		condition models.BookCondition
		score     float64
	}{
		{models.BookConditionNew, 1.0},
		{models.BookConditionLikeNew, 0.85},
		{models.BookConditionGood, 0.65},
		{models.BookConditionFair, 0.45},
		{models.BookConditionPoor, 0.25},
		{models.BookCondition("unknown"), 0.5},
	}

	for _, tc := range cases {
		t.Run(string(tc.condition), func(t *testing.T) {
			got := EstimateAt(Input{
				Condition:       tc.condition,
				OriginalPrice:   100,
				PublicationYear: 2025,
			}, 2025)

			// age 0, no views/favorites: depreciation 1.0, demand 0.5,
			// rarity 1.0.
			want := 100 * (tc.score*0.30 + 1.0*0.20 + 0.5*0.25 + 1.0*0.15 + 0.10)
			assert.InDelta(t, want, got, 0.01)
		})
	}
}

func TestEstimateAtDefaultsAndFloors(t *testing.T) {
	// Missing original price defaults to 10; missing publication year means
	// age 0 and no rarity bonus.
	got := EstimateAt(Input{Condition: models.BookConditionGood}, 2025)
	want := 10 * (0.65*0.30 + 1.0*0.20 + 0.5*0.25 + 1.0*0.15 + 0.10)
	assert.InDelta(t, want, got, 0.01)

	// Depreciation bottoms out at 0.4 regardless of age.
	ancient := EstimateAt(Input{
		Condition:       models.BookConditionGood,
		OriginalPrice:   10,
		PublicationYear: 1700,
	}, 2025)
	withFloor := 10 * (0.65*0.30 + 0.4*0.20 + 0.5*0.25 + 1.2*0.15 + 0.10)
	assert.InDelta(t, withFloor, ancient, 0.01)
}

func TestEstimateAtDemandSaturates(t *testing.T) {
	low := EstimateAt(Input{
		Condition:     models.BookConditionNew,
		OriginalPrice: 50,
		ViewCount:     0,
		FavoriteCount: 0,
	}, 2025)
	saturated := EstimateAt(Input{
		Condition:     models.BookConditionNew,
		OriginalPrice: 50,
		ViewCount:     10000,
		FavoriteCount: 10000,
	}, 2025)
	beyond := EstimateAt(Input{
		Condition:     models.BookConditionNew,
		OriginalPrice: 50,
		ViewCount:     1000000,
		FavoriteCount: 1000000,
	}, 2025)

	assert.Greater(t, saturated, low)
	assert.Equal(t, saturated, beyond)
}

func TestEstimateAtBounds(t *testing.T) {
	// Maximum factor sum: condition 1.0, depreciation 1.0, demand 1.0,
	// rarity 1.2, base 0.10 -> 1.03 * originalPrice; always >= 0.
	inputs := []Input{
		{Condition: models.BookConditionNew, OriginalPrice: 100, PublicationYear: 1979, ViewCount: 100000, FavoriteCount: 100000},
		{Condition: models.BookConditionPoor, OriginalPrice: 0.01, PublicationYear: 1500},
		{},
	}

	for _, in := range inputs {
		got := EstimateAt(in, 2025)
		require.GreaterOrEqual(t, got, 0.0)
		price := in.OriginalPrice
		if price <= 0 {
			price = 10
		}
		require.LessOrEqual(t, got, 1.27*price)
	}
}

func TestEstimateAtDeterministic(t *testing.T) {
	in := Input{
		Condition:       models.BookConditionFair,
		OriginalPrice:   42.42,
		PublicationYear: 1990,
		ViewCount:       321,
		FavoriteCount:   12,
	}
	first := EstimateAt(in, 2025)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, EstimateAt(in, 2025))
	}
}

func TestForBookFallsBackThroughTradeValue(t *testing.T) {
	b := &models.Book{
		Condition:       models.BookConditionGood,
		OriginalPrice:   20,
		PublicationYear: 1975,
		ViewCount:       50,
		FavoriteCount:   10,
		Price:           9.99,
	}
	b.EstimatedValue = ForBook(b)
	assert.Equal(t, b.EstimatedValue, b.TradeValue())

	unvalued := &models.Book{Price: 9.99}
	assert.Equal(t, 9.99, unvalued.TradeValue())
}

func TestForBookIgnoresListedPrice(t *testing.T) {
	// Only the original retail price feeds the estimate; what the seller asks
	// for the listing is irrelevant.
	base := models.Book{
		Condition:       models.BookConditionLikeNew,
		OriginalPrice:   30,
		PublicationYear: 2015,
		ViewCount:       120,
		FavoriteCount:   8,
	}

	cheap := base
	cheap.Price = 1
	dear := base
	dear.Price = 500

	assert.Equal(t, ForBook(&cheap), ForBook(&dear))
}
