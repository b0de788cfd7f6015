package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"syndicate/contexts/collective-ownership/fraction-ledger/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/fraction-ledger/domain/errors"
	"syndicate/contexts/collective-ownership/fraction-ledger/ports"
	"syndicate/internal/platform/db"
	"syndicate/internal/shared/outbox"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const moduleName = "collective-ownership/fraction-ledger"

// Repository persists the ledger through gorm. Every statement runs on the
// transaction carried by ctx when there is one, so ledger writes made on
// behalf of governance commit together with governance rows.
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

// AutoMigrate creates the ledger tables from the gorm models. Embedded sqlite
// deployments and tests use it; postgres runs the SQL migrations instead.
func (r *Repository) AutoMigrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(
		&assetModel{},
		&positionModel{},
		&holderPowerModel{},
		&holderExitModel{},
		&valueTransferModel{},
		&outboxModel{},
	); err != nil {
		return r.logError("ledger_repo_automigrate_failed", err)
	}
	return nil
}

func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.RunInTx(ctx, r.db, fn)
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	return db.Conn(ctx, r.db)
}

func (r *Repository) InsertAsset(ctx context.Context, asset entities.Asset) error {
	row, err := assetModelFromEntity(asset)
	if err != nil {
		return err
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAssetExists
		}
		return r.logError("ledger_repo_insert_asset_failed", err, "asset_id", asset.AssetID)
	}
	return nil
}

func (r *Repository) GetAsset(ctx context.Context, assetID string) (entities.Asset, error) {
	var row assetModel
	err := r.conn(ctx).
		Where("asset_id = ?", strings.TrimSpace(assetID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Asset{}, domainerrors.ErrAssetNotFound
		}
		return entities.Asset{}, r.logError("ledger_repo_get_asset_failed", err, "asset_id", assetID)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveAsset(ctx context.Context, asset entities.Asset) error {
	row, err := assetModelFromEntity(asset)
	if err != nil {
		return err
	}
	result := r.conn(ctx).
		Model(&assetModel{}).
		Where("asset_id = ?", row.AssetID).
		Updates(map[string]any{
			"available_fractions":   row.AvailableFractions,
			"accumulated_royalties": row.AccumulatedRoyalties,
			"deposited_royalties":   row.DepositedRoyalties,
			"updated_at":            row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("ledger_repo_save_asset_failed", result.Error, "asset_id", asset.AssetID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAssetNotFound
	}
	return nil
}

func (r *Repository) ListAssets(ctx context.Context) ([]entities.Asset, error) {
	var rows []assetModel
	if err := r.conn(ctx).Order("asset_id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_assets_failed", err)
	}
	items := make([]entities.Asset, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetPosition(ctx context.Context, assetID string, holder string) (entities.Position, bool, error) {
	var row positionModel
	err := r.conn(ctx).
		Where("asset_id = ? AND holder = ?", assetID, holder).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Position{}, false, nil
		}
		return entities.Position{}, false, r.logError("ledger_repo_get_position_failed", err,
			"asset_id", assetID,
			"holder", holder,
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SavePosition(ctx context.Context, position entities.Position) error {
	row, err := positionModelFromEntity(position)
	if err != nil {
		return err
	}
	create := r.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "asset_id"}, {Name: "holder"}},
		DoUpdates: clause.Assignments(map[string]any{
			"amount":               row.Amount,
			"is_delegate_receiver": row.IsDelegateReceiver,
			"delegated_to":         row.DelegatedTo,
			"status":               row.Status,
			"last_action_at":       row.LastActionAt,
			"royalty_checkpoint":   row.RoyaltyCheckpoint,
			"royalty_owed":         row.RoyaltyOwed,
			"updated_at":           row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("ledger_repo_save_position_failed", create.Error,
			"asset_id", position.AssetID,
			"holder", position.Holder,
		)
	}
	return nil
}

func (r *Repository) ListPositionsByAsset(ctx context.Context, assetID string) ([]entities.Position, error) {
	var rows []positionModel
	if err := r.conn(ctx).
		Where("asset_id = ?", assetID).
		Order("holder ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_positions_by_asset_failed", err, "asset_id", assetID)
	}
	return positionsToEntities(rows), nil
}

func (r *Repository) ListPositionsByHolder(ctx context.Context, holder string) ([]entities.Position, error) {
	var rows []positionModel
	if err := r.conn(ctx).
		Where("holder = ?", holder).
		Order("asset_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_positions_by_holder_failed", err, "holder", holder)
	}
	return positionsToEntities(rows), nil
}

func (r *Repository) GetPower(ctx context.Context, holder string) (entities.HolderPower, bool, error) {
	var row holderPowerModel
	err := r.conn(ctx).Where("holder = ?", holder).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.HolderPower{Holder: holder}, false, nil
		}
		return entities.HolderPower{}, false, r.logError("ledger_repo_get_power_failed", err, "holder", holder)
	}
	return entities.HolderPower{
		Holder:    row.Holder,
		Power:     row.Power,
		UpdatedAt: row.UpdatedAt.UTC(),
	}, true, nil
}

func (r *Repository) SavePower(ctx context.Context, power entities.HolderPower) error {
	if err := checkRange(power.Power); err != nil {
		return err
	}
	row := holderPowerModel{
		Holder:    power.Holder,
		Power:     power.Power,
		UpdatedAt: power.UpdatedAt.UTC(),
	}
	create := r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "holder"}},
		DoUpdates: clause.AssignmentColumns([]string{"power", "updated_at"}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("ledger_repo_save_power_failed", create.Error, "holder", power.Holder)
	}
	return nil
}

func (r *Repository) GetExit(ctx context.Context, holder string) (entities.HolderExit, bool, error) {
	var row holderExitModel
	err := r.conn(ctx).Where("holder = ?", holder).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.HolderExit{}, false, nil
		}
		return entities.HolderExit{}, false, r.logError("ledger_repo_get_exit_failed", err, "holder", holder)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveExit(ctx context.Context, exit entities.HolderExit) error {
	row := holderExitModel{
		Holder:   exit.Holder,
		Assets:   strings.Join(exit.Assets, ","),
		ExitedAt: exit.ExitedAt.UTC(),
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyRageQuit
		}
		return r.logError("ledger_repo_save_exit_failed", err, "holder", exit.Holder)
	}
	return nil
}

// Collect and Pay record value instructions in the same transaction as the
// ledger change that caused them; a settlement process drains the table.
func (r *Repository) Collect(ctx context.Context, payer string, amount uint64, reference string) error {
	return r.recordTransfer(ctx, entities.ValueDirectionIn, payer, amount, reference)
}

func (r *Repository) Pay(ctx context.Context, payee string, amount uint64, reference string) error {
	return r.recordTransfer(ctx, entities.ValueDirectionOut, payee, amount, reference)
}

func (r *Repository) recordTransfer(
	ctx context.Context,
	direction entities.ValueDirection,
	party string,
	amount uint64,
	reference string,
) error {
	if err := checkRange(amount); err != nil {
		return err
	}
	row := valueTransferModel{
		TransferID: uuid.NewString(),
		Direction:  string(direction),
		Party:      party,
		Amount:     amount,
		Reference:  reference,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		return r.logError("ledger_repo_record_value_transfer_failed", err,
			"direction", string(direction),
			"party", party,
			"reference", reference,
		)
	}
	return nil
}

// ListValueTransfers returns recorded value instructions, oldest first.
func (r *Repository) ListValueTransfers(ctx context.Context) ([]entities.ValueMovement, error) {
	var rows []valueTransferModel
	if err := r.conn(ctx).Order("created_at ASC").Order("transfer_id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_value_transfers_failed", err)
	}
	items := make([]entities.ValueMovement, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.ValueMovement{
			TransferID: row.TransferID,
			Direction:  entities.ValueDirection(row.Direction),
			Party:      row.Party,
			Amount:     row.Amount,
			Reference:  row.Reference,
			CreatedAt:  row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("ledger_repo_append_outbox_marshal_failed", err,
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
		return r.logError("ledger_repo_append_outbox_insert_failed", create.Error, "outbox_id", row.OutboxID)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := r.conn(ctx).
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return r.logError("ledger_repo_append_outbox_load_existing_failed", err, "outbox_id", row.OutboxID)
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
		return nil, r.logError("ledger_repo_list_pending_outbox_failed", err, "limit", limit)
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
		return r.logError("ledger_repo_mark_outbox_published_failed", result.Error, "outbox_id", outboxID)
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
	r.logger.Error("ledger repository operation failed", fields...)
	return err
}

func positionsToEntities(rows []positionModel) []entities.Position {
	items := make([]entities.Position, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.UnitOfWork = (*Repository)(nil)
var _ ports.ValueTransfer = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
