package royalty

import (
	"math"
	"testing"

	"syndicate/contexts/collective-ownership/fraction-ledger/domain/entities"

	"github.com/stretchr/testify/assert"
)

func TestMulDivAvoidsIntermediateOverflow(t *testing.T) {
	assert.Equal(t, uint64(400), MulDiv(1000, 4, 10))
	assert.Equal(t, uint64(math.MaxUint64/2), MulDiv(math.MaxUint64, 1, 2))
	assert.Equal(t, uint64(math.MaxUint64-1), MulDiv(math.MaxUint64-1, math.MaxUint64, math.MaxUint64))
	assert.Equal(t, uint64(0), MulDiv(5, 5, 0))
}

func TestParseMode(t *testing.T) {
	mode, ok := ParseMode("")
	assert.True(t, ok)
	assert.Equal(t, ModeCheckpoint, mode)
	mode, ok = ParseMode(" Pool ")
	assert.True(t, ok)
	assert.Equal(t, ModePool, mode)
	_, ok = ParseMode("linear")
	assert.False(t, ok)
}

func TestSettleAccruesOnlyNewDeposits(t *testing.T) {
	asset := entities.Asset{TotalFractions: 10, DepositedRoyalties: 1000}
	position := entities.Position{Amount: 4, RoyaltyCheckpoint: 0}

	Settle(&position, asset)
	assert.Equal(t, uint64(400), position.RoyaltyOwed)
	assert.Equal(t, uint64(1000), position.RoyaltyCheckpoint)

	Settle(&position, asset)
	assert.Equal(t, uint64(400), position.RoyaltyOwed)

	asset.DepositedRoyalties = 1005
	Settle(&position, asset)
	assert.Equal(t, uint64(402), position.RoyaltyOwed)
	assert.Equal(t, uint64(1005), position.RoyaltyCheckpoint)
}

func TestShareByMode(t *testing.T) {
	asset := entities.Asset{TotalFractions: 10, AccumulatedRoyalties: 600, DepositedRoyalties: 1000}
	position := entities.Position{Amount: 4, RoyaltyOwed: 7}
	assert.Equal(t, uint64(240), Share(ModePool, asset, position))
	assert.Equal(t, uint64(7), Share(ModeCheckpoint, asset, position))
}
