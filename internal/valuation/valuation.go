// internal/valuation/valuation.go

// Package valuation estimates the monetary worth of a listed book from its
// condition, age, demand and rarity signals. The computation is pure and
// deterministic for a fixed reference year.
package valuation

import (
	"math"
	"time"

	"github.com/bookswap/bookswap-backend/internal/models"
)

// Fixed factor weights. They must sum to 0.90; the remaining 0.10 is the
// unconditional base share of the original price.
const (
	conditionWeight = 0.30
	ageWeight       = 0.20
	demandWeight    = 0.25
	rarityWeight    = 0.15
	baseShare       = 0.10
)

const defaultOriginalPrice = 10.0

var conditionScores = map[models.BookCondition]float64{
	models.BookConditionNew:     1.0,
	models.BookConditionLikeNew: 0.85,
	models.BookConditionGood:    0.65,
	models.BookConditionFair:    0.45,
	models.BookConditionPoor:    0.25,
}

type Input struct {
	Condition       models.BookCondition
	OriginalPrice   float64
	PublicationYear int
	ViewCount       int64
	FavoriteCount   int64
}

// Estimate returns the estimated value for the current year.
func Estimate(in Input) float64 {
	return EstimateAt(in, time.Now().Year())
}

// EstimateAt computes the valuation against an explicit reference year,
// rounded to 2 decimal places. Output is never negative.
func EstimateAt(in Input, currentYear int) float64 {
	originalPrice := in.OriginalPrice
	if originalPrice <= 0 {
		originalPrice = defaultOriginalPrice
	}

	conditionScore, ok := conditionScores[in.Condition]
	if !ok {
		conditionScore = 0.5
	}

	age := 0
	if in.PublicationYear > 0 {
		age = currentYear - in.PublicationYear
	}
	ageDepreciation := math.Max(0.4, 1-float64(age)*0.05)

	demandScore := math.Min(1, (float64(in.ViewCount)*0.01+float64(in.FavoriteCount)*0.05)/10)
	marketDemand := 0.5 + demandScore*0.5 // range 0.5 to 1.0

	rarityScore := 1.0
	if in.PublicationYear > 0 && in.PublicationYear < 1980 {
		rarityScore = 1.2
	}

	estimated := originalPrice * (conditionScore*conditionWeight +
		ageDepreciation*ageWeight +
		marketDemand*demandWeight +
		rarityScore*rarityWeight +
		baseShare)

	return math.Round(estimated*100) / 100
}

// ForBook is a convenience wrapper over a listing's current attributes.
func ForBook(b *models.Book) float64 {
	return Estimate(Input{
		Condition:       b.Condition,
		OriginalPrice:   b.OriginalPrice,
		PublicationYear: b.PublicationYear,
		ViewCount:       b.ViewCount,
		FavoriteCount:   b.FavoriteCount,
	})
}
