package entities

import "time"

// MaxRoyaltyBps is 100% expressed in basis points.
const MaxRoyaltyBps uint32 = 10000

// Asset is the per-asset record created once when the unique asset is
// fractionalized. TotalFractions never changes; AvailableFractions only
// shrinks through rage-quit burns.
type Asset struct {
	AssetID              string
	Name                 string
	Symbol               string
	URI                  string
	RoyaltyBps           uint32
	TotalFractions       uint64
	AvailableFractions   uint64
	AccumulatedRoyalties uint64
	DepositedRoyalties   uint64
	RageQuitEligible     bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ConservationReport compares the sum of all position balances of an asset
// with its available fractions.
type ConservationReport struct {
	AssetID            string
	AvailableFractions uint64
	PositionSum        uint64
	Holders            int
	Balanced           bool
}
