package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"syndicate/contexts/collective-ownership/governance-engine/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/governance-engine/domain/errors"
	"syndicate/contexts/collective-ownership/governance-engine/ports"
	"syndicate/internal/platform/db"
	"syndicate/internal/shared/outbox"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const moduleName = "collective-ownership/governance-engine"

// Repository persists proposals, receipts and eligibility through gorm,
// joining the transaction carried by ctx when there is one.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(database *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     database,
		logger: logger,
	}
}

// AutoMigrate creates the governance tables from the gorm models.
func (r *Repository) AutoMigrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(
		&proposalModel{},
		&receiptModel{},
		&eligibilityModel{},
		&outboxModel{},
	); err != nil {
		return r.logError("governance_repo_automigrate_failed", err)
	}
	return nil
}

func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.RunInTx(ctx, r.db, fn)
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	return db.Conn(ctx, r.db)
}

func (r *Repository) CreateProposal(ctx context.Context, proposal entities.Proposal) (entities.Proposal, error) {
	proposal.ProposalID = 0
	row, err := proposalModelFromEntity(proposal)
	if err != nil {
		return entities.Proposal{}, err
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		return entities.Proposal{}, r.logError("governance_repo_create_proposal_failed", err, "asset_id", proposal.AssetID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetProposal(ctx context.Context, proposalID uint64) (entities.Proposal, error) {
	if err := checkRange(proposalID); err != nil {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	var row proposalModel
	err := r.conn(ctx).Where("id = ?", proposalID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proposal{}, domainerrors.ErrProposalNotFound
		}
		return entities.Proposal{}, r.logError("governance_repo_get_proposal_failed", err, "proposal_id", proposalID)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveProposal(ctx context.Context, proposal entities.Proposal) error {
	row, err := proposalModelFromEntity(proposal)
	if err != nil {
		return err
	}
	result := r.conn(ctx).
		Model(&proposalModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"for_votes":     row.ForVotes,
			"against_votes": row.AgainstVotes,
			"executed":      row.Executed,
			"canceled":      row.Canceled,
			"updated_at":    row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("governance_repo_save_proposal_failed", result.Error, "proposal_id", proposal.ProposalID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrProposalNotFound
	}
	return nil
}

func (r *Repository) ListProposals(ctx context.Context, assetID string) ([]entities.Proposal, error) {
	query := r.conn(ctx).Order("id ASC")
	if assetID = strings.TrimSpace(assetID); assetID != "" {
		query = query.Where("asset_id = ?", assetID)
	}
	var rows []proposalModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_proposals_failed", err, "asset_id", assetID)
	}
	items := make([]entities.Proposal, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetReceipt(ctx context.Context, proposalID uint64, voter string) (entities.VoteReceipt, bool, error) {
	var row receiptModel
	err := r.conn(ctx).
		Where("proposal_id = ? AND voter = ?", proposalID, strings.TrimSpace(voter)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoteReceipt{}, false, nil
		}
		return entities.VoteReceipt{}, false, r.logError("governance_repo_get_receipt_failed", err,
			"proposal_id", proposalID,
			"voter", voter,
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) InsertReceipt(ctx context.Context, receipt entities.VoteReceipt) error {
	if err := checkRange(receipt.Weight, receipt.AssetVotes); err != nil {
		return err
	}
	row := receiptModel{
		ProposalID: receipt.ProposalID,
		Voter:      receipt.Voter,
		AssetID:    receipt.AssetID,
		Support:    receipt.Support,
		Weight:     receipt.Weight,
		AssetVotes: receipt.AssetVotes,
		CastAt:     receipt.CastAt.UTC(),
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyVoted
		}
		return r.logError("governance_repo_insert_receipt_failed", err,
			"proposal_id", receipt.ProposalID,
			"voter", receipt.Voter,
		)
	}
	return nil
}

func (r *Repository) ListReceipts(ctx context.Context, proposalID uint64) ([]entities.VoteReceipt, error) {
	var rows []receiptModel
	if err := r.conn(ctx).
		Where("proposal_id = ?", proposalID).
		Order("voter ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_receipts_failed", err, "proposal_id", proposalID)
	}
	items := make([]entities.VoteReceipt, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetEligibility(ctx context.Context, assetID string) (entities.AssetEligibility, bool, error) {
	var row eligibilityModel
	err := r.conn(ctx).Where("asset_id = ?", strings.TrimSpace(assetID)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.AssetEligibility{}, false, nil
		}
		return entities.AssetEligibility{}, false, r.logError("governance_repo_get_eligibility_failed", err, "asset_id", assetID)
	}
	return entities.AssetEligibility{
		AssetID:   row.AssetID,
		Eligible:  row.Eligible,
		UpdatedBy: row.UpdatedBy,
		UpdatedAt: row.UpdatedAt.UTC(),
	}, true, nil
}

func (r *Repository) SaveEligibility(ctx context.Context, eligibility entities.AssetEligibility) error {
	row := eligibilityModel{
		AssetID:   eligibility.AssetID,
		Eligible:  eligibility.Eligible,
		UpdatedBy: eligibility.UpdatedBy,
		UpdatedAt: eligibility.UpdatedAt.UTC(),
	}
	err := r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "asset_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"eligible", "updated_by", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("governance_repo_save_eligibility_failed", err, "asset_id", eligibility.AssetID)
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("governance_repo_append_outbox_marshal_failed", err,
			"event_id", envelope.EventID,
			"event_type", envelope.EventType,
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		Status:       outbox.StatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	create := r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("governance_repo_append_outbox_insert_failed", create.Error, "outbox_id", row.OutboxID)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := r.conn(ctx).
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return r.logError("governance_repo_append_outbox_load_existing_failed", err, "outbox_id", row.OutboxID)
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.conn(ctx).
		Where("status = ?", outbox.StatusPending).
		Order("created_at ASC").
		Order("outbox_id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.conn(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outbox.StatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("governance_repo_mark_outbox_published_failed", result.Error, "outbox_id", outboxID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", moduleName,
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("governance repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.UnitOfWork = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
