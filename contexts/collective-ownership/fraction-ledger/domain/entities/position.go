package entities

import "time"

type PositionStatus string

const (
	PositionStatusActive PositionStatus = "active"
	PositionStatusVoted  PositionStatus = "voted"
	PositionStatusExited PositionStatus = "exited"
)

// Position is the balance a holder keeps in one asset.
//
// Amount holds only the undelegated remainder; a delegate receiver's Amount
// merges every delegated contribution with its directly held balance.
// DelegatedTo is set at most once over the position's lifetime.
type Position struct {
	AssetID            string
	Holder             string
	Amount             uint64
	IsDelegateReceiver bool
	DelegatedTo        string
	Status             PositionStatus
	LastActionAt       time.Time
	RoyaltyCheckpoint  uint64
	RoyaltyOwed        uint64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewPosition returns an empty active position whose royalty checkpoint starts
// at the asset's current deposit total.
func NewPosition(assetID string, holder string, checkpoint uint64, now time.Time) Position {
	return Position{
		AssetID:           assetID,
		Holder:            holder,
		Status:            PositionStatusActive,
		RoyaltyCheckpoint: checkpoint,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// HasActed reports whether the position was spent on a vote or burned by a
// rage quit. Acted positions are frozen.
func (p Position) HasActed() bool {
	return p.Status == PositionStatusVoted || p.Status == PositionStatusExited
}

func (p Position) HasDelegated() bool {
	return p.DelegatedTo != ""
}

// VotingBalance is the amount this position contributes to its holder's power.
func (p Position) VotingBalance() uint64 {
	if p.HasActed() {
		return 0
	}
	return p.Amount
}
