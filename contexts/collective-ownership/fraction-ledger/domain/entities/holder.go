package entities

import "time"

// HolderPower is the cached aggregate voting power of a holder: the sum of
// the holder's active position amounts across every asset.
type HolderPower struct {
	Holder    string
	Power     uint64
	UpdatedAt time.Time
}

// HolderExit records the one-time rage quit of a holder.
type HolderExit struct {
	Holder   string
	Assets   []string
	ExitedAt time.Time
}

// VoteMark is returned when a position is spent on a vote.
type VoteMark struct {
	AssetID     string
	Holder      string
	Amount      uint64
	PowerBefore uint64
	PowerAfter  uint64
	MarkedAt    time.Time
}

type RageQuitResult struct {
	Holder   string
	Assets   []string
	Burned   uint64
	ExitedAt time.Time
}

type RoyaltyClaim struct {
	AssetID   string
	Holder    string
	Share     uint64
	Remaining uint64
	ClaimedAt time.Time
}

type ValueDirection string

const (
	ValueDirectionIn  ValueDirection = "in"
	ValueDirectionOut ValueDirection = "out"
)

// ValueMovement is one collect or pay instruction handed to the value-transfer
// facility.
type ValueMovement struct {
	TransferID string
	Direction  ValueDirection
	Party      string
	Amount     uint64
	Reference  string
	CreatedAt  time.Time
}
