// internal/models/book_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookTradeValue(t *testing.T) {
	withValuation := &Book{Price: 15, EstimatedValue: 12.5}
	assert.Equal(t, 12.5, withValuation.TradeValue())

	// Listings without a computed valuation trade at their asking price.
	priceOnly := &Book{Price: 15}
	assert.Equal(t, 15.0, priceOnly.TradeValue())
}

func TestBookStatusTerminal(t *testing.T) {
	assert.True(t, BookStatusSold.Terminal())
	assert.True(t, BookStatusExchanged.Terminal())

	assert.False(t, BookStatusAvailable.Terminal())
	assert.False(t, BookStatusReserved.Terminal())
	assert.False(t, BookStatusInactive.Terminal())
}
