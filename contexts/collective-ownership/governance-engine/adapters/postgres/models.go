package postgresadapter

import (
	"math"
	"time"

	"syndicate/contexts/collective-ownership/governance-engine/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/governance-engine/domain/errors"
)

type proposalModel struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	AssetID      string    `gorm:"column:asset_id;index:idx_governance_proposals_asset"`
	Proposer     string    `gorm:"column:proposer"`
	Description  string    `gorm:"column:description"`
	StartAt      time.Time `gorm:"column:start_at"`
	EndAt        time.Time `gorm:"column:end_at"`
	Quorum       uint64    `gorm:"column:quorum"`
	ForVotes     uint64    `gorm:"column:for_votes"`
	AgainstVotes uint64    `gorm:"column:against_votes"`
	Executed     bool      `gorm:"column:executed"`
	Canceled     bool      `gorm:"column:canceled"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (proposalModel) TableName() string {
	return "governance_proposals"
}

func proposalModelFromEntity(proposal entities.Proposal) (proposalModel, error) {
	if err := checkRange(proposal.ProposalID, proposal.Quorum, proposal.ForVotes, proposal.AgainstVotes); err != nil {
		return proposalModel{}, err
	}
	return proposalModel{
		ID:           proposal.ProposalID,
		AssetID:      proposal.AssetID,
		Proposer:     proposal.Proposer,
		Description:  proposal.Description,
		StartAt:      proposal.StartAt.UTC(),
		EndAt:        proposal.EndAt.UTC(),
		Quorum:       proposal.Quorum,
		ForVotes:     proposal.ForVotes,
		AgainstVotes: proposal.AgainstVotes,
		Executed:     proposal.Executed,
		Canceled:     proposal.Canceled,
		CreatedAt:    proposal.CreatedAt.UTC(),
		UpdatedAt:    proposal.UpdatedAt.UTC(),
	}, nil
}

func (m proposalModel) toEntity() entities.Proposal {
	return entities.Proposal{
		ProposalID:   m.ID,
		AssetID:      m.AssetID,
		Proposer:     m.Proposer,
		Description:  m.Description,
		StartAt:      m.StartAt.UTC(),
		EndAt:        m.EndAt.UTC(),
		Quorum:       m.Quorum,
		ForVotes:     m.ForVotes,
		AgainstVotes: m.AgainstVotes,
		Executed:     m.Executed,
		Canceled:     m.Canceled,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

type receiptModel struct {
	ProposalID uint64    `gorm:"column:proposal_id;primaryKey;autoIncrement:false"`
	Voter      string    `gorm:"column:voter;primaryKey"`
	AssetID    string    `gorm:"column:asset_id"`
	Support    bool      `gorm:"column:support"`
	Weight     uint64    `gorm:"column:weight"`
	AssetVotes uint64    `gorm:"column:asset_votes"`
	CastAt     time.Time `gorm:"column:cast_at"`
}

func (receiptModel) TableName() string {
	return "governance_vote_receipts"
}

func (m receiptModel) toEntity() entities.VoteReceipt {
	return entities.VoteReceipt{
		ProposalID: m.ProposalID,
		Voter:      m.Voter,
		AssetID:    m.AssetID,
		Support:    m.Support,
		Weight:     m.Weight,
		AssetVotes: m.AssetVotes,
		CastAt:     m.CastAt.UTC(),
	}
}

type eligibilityModel struct {
	AssetID   string    `gorm:"column:asset_id;primaryKey"`
	Eligible  bool      `gorm:"column:eligible"`
	UpdatedBy string    `gorm:"column:updated_by"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (eligibilityModel) TableName() string {
	return "governance_asset_eligibility"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "governance_outbox"
}

func checkRange(values ...uint64) error {
	for _, value := range values {
		if value > math.MaxInt64 {
			return domainerrors.ErrValueOutOfRange
		}
	}
	return nil
}
