// Package power maintains holder voting power incrementally.
//
// A holder's power is the sum of Amount over the holder's active positions.
// Ledger commands record the active-balance change each touched holder
// experienced and apply it to the cached value; Sum recomputes the definition
// from scratch for audits.
package power

import (
	"math"
	"sort"

	"syndicate/contexts/collective-ownership/fraction-ledger/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/fraction-ledger/domain/errors"
)

// Change is the active-balance movement of one holder within one command.
type Change struct {
	Credit uint64
	Debit  uint64
}

// Changes collects per-holder movements for a single command.
type Changes map[string]Change

func (c Changes) Credit(holder string, amount uint64) {
	if amount == 0 {
		return
	}
	change := c[holder]
	change.Credit += amount
	c[holder] = change
}

func (c Changes) Debit(holder string, amount uint64) {
	if amount == 0 {
		return
	}
	change := c[holder]
	change.Debit += amount
	c[holder] = change
}

// Holders returns touched holders in a stable order.
func (c Changes) Holders() []string {
	holders := make([]string, 0, len(c))
	for holder := range c {
		holders = append(holders, holder)
	}
	sort.Strings(holders)
	return holders
}

// Apply moves current by change. Crossing zero or the uint64 ceiling means the
// cache disagrees with the positions and is reported, never clamped.
func Apply(current uint64, change Change) (uint64, error) {
	if change.Credit > math.MaxUint64-current {
		return 0, domainerrors.ErrPowerOutOfRange
	}
	next := current + change.Credit
	if change.Debit > next {
		return 0, domainerrors.ErrPowerOutOfRange
	}
	return next - change.Debit, nil
}

// Sum recomputes power from positions.
func Sum(positions []entities.Position) uint64 {
	var total uint64
	for _, position := range positions {
		total += position.VotingBalance()
	}
	return total
}
