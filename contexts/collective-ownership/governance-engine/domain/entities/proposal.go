package entities

import "time"

type ProposalState string

const (
	ProposalStatePending   ProposalState = "pending"
	ProposalStateActive    ProposalState = "active"
	ProposalStateCanceled  ProposalState = "canceled"
	ProposalStateDefeated  ProposalState = "defeated"
	ProposalStateSucceeded ProposalState = "succeeded"
	ProposalStateExecuted  ProposalState = "executed"
)

// Terminal reports whether no operation can move a proposal out of s.
func (s ProposalState) Terminal() bool {
	switch s {
	case ProposalStateCanceled, ProposalStateDefeated, ProposalStateExecuted:
		return true
	default:
		return false
	}
}

// Proposal is a time-boxed governance decision. Quorum is captured at
// creation so later configuration changes do not rewrite outcomes.
type Proposal struct {
	ProposalID   uint64
	AssetID      string
	Proposer     string
	Description  string
	StartAt      time.Time
	EndAt        time.Time
	Quorum       uint64
	ForVotes     uint64
	AgainstVotes uint64
	Executed     bool
	Canceled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// State derives the lifecycle state at now. The window bounds are inclusive:
// a proposal is pending through StartAt and active through EndAt.
func (p Proposal) State(now time.Time) ProposalState {
	switch {
	case p.Canceled:
		return ProposalStateCanceled
	case p.Executed:
		return ProposalStateExecuted
	case !now.After(p.StartAt):
		return ProposalStatePending
	case !now.After(p.EndAt):
		return ProposalStateActive
	case p.ForVotes <= p.AgainstVotes || p.ForVotes < p.Quorum:
		return ProposalStateDefeated
	default:
		return ProposalStateSucceeded
	}
}

// VoteReceipt records one voter's vote on one proposal.
type VoteReceipt struct {
	ProposalID uint64
	Voter      string
	AssetID    string
	Support    bool
	Weight     uint64
	AssetVotes uint64
	CastAt     time.Time
}

type AssetEligibility struct {
	AssetID   string
	Eligible  bool
	UpdatedBy string
	UpdatedAt time.Time
}
