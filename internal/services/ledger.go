// internal/services/ledger.go
package services

import "math"

// FeeSplit is the division of a purchase amount between the platform and the
// seller, computed once at transaction creation and never revisited.
type FeeSplit struct {
	Amount       float64
	PlatformFee  float64
	SellerAmount float64
}

// SplitAmount applies the platform fee percentage to a purchase amount.
// Both legs are rounded to cents with the seller side absorbing the rounding
// remainder, so PlatformFee + SellerAmount == Amount holds exactly.
func SplitAmount(amount, feePercent float64) FeeSplit {
	fee := math.Round(amount*feePercent) / 100
	return FeeSplit{
		Amount:       amount,
		PlatformFee:  fee,
		SellerAmount: amount - fee,
	}
}
