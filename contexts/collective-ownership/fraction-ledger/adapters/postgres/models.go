package postgresadapter

import (
	"math"
	"strings"
	"time"

	"syndicate/contexts/collective-ownership/fraction-ledger/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/fraction-ledger/domain/errors"
)

type assetModel struct {
	AssetID              string    `gorm:"column:asset_id;primaryKey"`
	Name                 string    `gorm:"column:name"`
	Symbol               string    `gorm:"column:symbol"`
	URI                  string    `gorm:"column:uri"`
	RoyaltyBps           uint32    `gorm:"column:royalty_bps"`
	TotalFractions       uint64    `gorm:"column:total_fractions"`
	AvailableFractions   uint64    `gorm:"column:available_fractions"`
	AccumulatedRoyalties uint64    `gorm:"column:accumulated_royalties"`
	DepositedRoyalties   uint64    `gorm:"column:deposited_royalties"`
	RageQuitEligible     bool      `gorm:"column:rage_quit_eligible"`
	CreatedAt            time.Time `gorm:"column:created_at"`
	UpdatedAt            time.Time `gorm:"column:updated_at"`
}

func (assetModel) TableName() string {
	return "ledger_assets"
}

func assetModelFromEntity(asset entities.Asset) (assetModel, error) {
	if err := checkRange(
		asset.TotalFractions,
		asset.AvailableFractions,
		asset.AccumulatedRoyalties,
		asset.DepositedRoyalties,
	); err != nil {
		return assetModel{}, err
	}
	return assetModel{
		AssetID:              asset.AssetID,
		Name:                 asset.Name,
		Symbol:               asset.Symbol,
		URI:                  asset.URI,
		RoyaltyBps:           asset.RoyaltyBps,
		TotalFractions:       asset.TotalFractions,
		AvailableFractions:   asset.AvailableFractions,
		AccumulatedRoyalties: asset.AccumulatedRoyalties,
		DepositedRoyalties:   asset.DepositedRoyalties,
		RageQuitEligible:     asset.RageQuitEligible,
		CreatedAt:            asset.CreatedAt.UTC(),
		UpdatedAt:            asset.UpdatedAt.UTC(),
	}, nil
}

func (m assetModel) toEntity() entities.Asset {
	return entities.Asset{
		AssetID:              m.AssetID,
		Name:                 m.Name,
		Symbol:               m.Symbol,
		URI:                  m.URI,
		RoyaltyBps:           m.RoyaltyBps,
		TotalFractions:       m.TotalFractions,
		AvailableFractions:   m.AvailableFractions,
		AccumulatedRoyalties: m.AccumulatedRoyalties,
		DepositedRoyalties:   m.DepositedRoyalties,
		RageQuitEligible:     m.RageQuitEligible,
		CreatedAt:            m.CreatedAt.UTC(),
		UpdatedAt:            m.UpdatedAt.UTC(),
	}
}

type positionModel struct {
	AssetID            string     `gorm:"column:asset_id;primaryKey"`
	Holder             string     `gorm:"column:holder;primaryKey"`
	Amount             uint64     `gorm:"column:amount"`
	IsDelegateReceiver bool       `gorm:"column:is_delegate_receiver"`
	DelegatedTo        *string    `gorm:"column:delegated_to"`
	Status             string     `gorm:"column:status"`
	LastActionAt       *time.Time `gorm:"column:last_action_at"`
	RoyaltyCheckpoint  uint64     `gorm:"column:royalty_checkpoint"`
	RoyaltyOwed        uint64     `gorm:"column:royalty_owed"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (positionModel) TableName() string {
	return "ledger_positions"
}

func positionModelFromEntity(position entities.Position) (positionModel, error) {
	if err := checkRange(position.Amount, position.RoyaltyCheckpoint, position.RoyaltyOwed); err != nil {
		return positionModel{}, err
	}
	row := positionModel{
		AssetID:            position.AssetID,
		Holder:             position.Holder,
		Amount:             position.Amount,
		IsDelegateReceiver: position.IsDelegateReceiver,
		Status:             string(position.Status),
		RoyaltyCheckpoint:  position.RoyaltyCheckpoint,
		RoyaltyOwed:        position.RoyaltyOwed,
		CreatedAt:          position.CreatedAt.UTC(),
		UpdatedAt:          position.UpdatedAt.UTC(),
	}
	if position.DelegatedTo != "" {
		delegatedTo := position.DelegatedTo
		row.DelegatedTo = &delegatedTo
	}
	if !position.LastActionAt.IsZero() {
		lastActionAt := position.LastActionAt.UTC()
		row.LastActionAt = &lastActionAt
	}
	return row, nil
}

func (m positionModel) toEntity() entities.Position {
	position := entities.Position{
		AssetID:            m.AssetID,
		Holder:             m.Holder,
		Amount:             m.Amount,
		IsDelegateReceiver: m.IsDelegateReceiver,
		Status:             entities.PositionStatus(m.Status),
		RoyaltyCheckpoint:  m.RoyaltyCheckpoint,
		RoyaltyOwed:        m.RoyaltyOwed,
		CreatedAt:          m.CreatedAt.UTC(),
		UpdatedAt:          m.UpdatedAt.UTC(),
	}
	if m.DelegatedTo != nil {
		position.DelegatedTo = *m.DelegatedTo
	}
	if m.LastActionAt != nil {
		position.LastActionAt = m.LastActionAt.UTC()
	}
	return position
}

type holderPowerModel struct {
	Holder    string    `gorm:"column:holder;primaryKey"`
	Power     uint64    `gorm:"column:power"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (holderPowerModel) TableName() string {
	return "ledger_holder_power"
}

type holderExitModel struct {
	Holder   string    `gorm:"column:holder;primaryKey"`
	Assets   string    `gorm:"column:assets"`
	ExitedAt time.Time `gorm:"column:exited_at"`
}

func (holderExitModel) TableName() string {
	return "ledger_holder_exits"
}

func (m holderExitModel) toEntity() entities.HolderExit {
	exit := entities.HolderExit{
		Holder:   m.Holder,
		ExitedAt: m.ExitedAt.UTC(),
	}
	if m.Assets != "" {
		exit.Assets = strings.Split(m.Assets, ",")
	}
	return exit
}

type valueTransferModel struct {
	TransferID string    `gorm:"column:transfer_id;primaryKey"`
	Direction  string    `gorm:"column:direction"`
	Party      string    `gorm:"column:party"`
	Amount     uint64    `gorm:"column:amount"`
	Reference  string    `gorm:"column:reference"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (valueTransferModel) TableName() string {
	return "ledger_value_transfers"
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
	return "ledger_outbox"
}

// checkRange rejects values the BIGINT columns cannot hold.
func checkRange(values ...uint64) error {
	for _, value := range values {
		if value > math.MaxInt64 {
			return domainerrors.ErrValueOutOfRange
		}
	}
	return nil
}
