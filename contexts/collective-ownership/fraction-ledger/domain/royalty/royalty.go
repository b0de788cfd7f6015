// Package royalty computes holder shares of deposited royalties.
package royalty

import (
	"math/bits"
	"strings"

	"syndicate/contexts/collective-ownership/fraction-ledger/domain/entities"
)

type Mode string

const (
	// ModeCheckpoint pays each position floor(deposit * amount / total) for
	// every deposit made while it held amount. Repeat claims pay nothing new.
	//
	// This departs from the literal accumulated * amount / total rule: a
	// holder who receives fractions after a deposit has no share of it, so
	// claiming returns ErrZeroShare, and the seller keeps what was earned.
	ModeCheckpoint Mode = "checkpoint"
	// ModePool is the literal rule: each claim pays
	// floor(accumulated * amount / total) of the pool as it stands, whenever
	// the fractions were acquired.
	ModePool Mode = "pool"
)

// ParseMode returns the mode named by raw; empty selects ModeCheckpoint.
func ParseMode(raw string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeCheckpoint:
		return ModeCheckpoint, true
	case ModePool:
		return ModePool, true
	default:
		return "", false
	}
}

// MulDiv returns floor(a * b / c) using a 128-bit intermediate. Callers
// guarantee b <= c, so the quotient always fits in 64 bits.
func MulDiv(a uint64, b uint64, c uint64) uint64 {
	if c == 0 {
		return 0
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return ^uint64(0)
	}
	quotient, _ := bits.Div64(hi, lo, c)
	return quotient
}

// Settle accrues what position earned since its last checkpoint at its
// current amount. It must run before every change to position.Amount.
func Settle(position *entities.Position, asset entities.Asset) {
	if asset.DepositedRoyalties > position.RoyaltyCheckpoint && position.Amount > 0 {
		earned := MulDiv(asset.DepositedRoyalties-position.RoyaltyCheckpoint, position.Amount, asset.TotalFractions)
		position.RoyaltyOwed += earned
	}
	position.RoyaltyCheckpoint = asset.DepositedRoyalties
}

// Share returns the amount position may claim now. In checkpoint mode the
// position must be settled first.
func Share(mode Mode, asset entities.Asset, position entities.Position) uint64 {
	if mode == ModePool {
		return MulDiv(asset.AccumulatedRoyalties, position.Amount, asset.TotalFractions)
	}
	return position.RoyaltyOwed
}
