package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"syndicate/contexts/collective-ownership/fraction-ledger/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/fraction-ledger/domain/errors"
	"syndicate/contexts/collective-ownership/fraction-ledger/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	seq       uint64
	published bool
}

type positionKey struct {
	assetID string
	holder  string
}

type txKey struct{}

// PayHook observes a payout before it is recorded. Returning an error fails
// the payout.
type PayHook func(ctx context.Context, movement entities.ValueMovement) error

// Store keeps the whole ledger in memory. It implements every ledger port,
// including a unit of work that undoes its writes when the work fails.
//
// A unit of work holds gate exclusively until it finishes, so callers outside
// it never observe uncommitted writes.
type Store struct {
	gate sync.RWMutex
	mu   sync.RWMutex
	undo []func()

	assets    map[string]entities.Asset
	positions map[positionKey]entities.Position
	power     map[string]entities.HolderPower
	exits     map[string]entities.HolderExit
	outbox    map[string]outboxRecord
	outboxSeq uint64
	movements []entities.ValueMovement

	now         time.Time
	collectErr  error
	payErr      error
	payHook     PayHook
	collectHook PayHook
}

func NewStore() *Store {
	return &Store{
		assets:    make(map[string]entities.Asset),
		positions: make(map[positionKey]entities.Position),
		power:     make(map[string]entities.HolderPower),
		exits:     make(map[string]entities.HolderExit),
		outbox:    make(map[string]outboxRecord),
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.gate.Lock()
	defer s.gate.Unlock()

	s.mu.Lock()
	s.undo = make([]func(), 0, 8)
	s.mu.Unlock()
	committed := false
	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !committed {
			for i := len(s.undo) - 1; i >= 0; i-- {
				s.undo[i]()
			}
		}
		s.undo = nil
	}()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	return ctx.Value(txKey{}) == s
}

// read waits out any open unit of work unless ctx belongs to it.
func (s *Store) read(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.gate.RLock()
	return s.gate.RUnlock
}

func (s *Store) write(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.gate.Lock()
	return s.gate.Unlock
}

// journalLocked records how to revert a write made inside a unit of work.
func (s *Store) journalLocked(ctx context.Context, revert func()) {
	if s.inTx(ctx) {
		s.undo = append(s.undo, revert)
	}
}

func revertKey[K comparable, V any](m map[K]V, key K) func() {
	prev, existed := m[key]
	return func() {
		if existed {
			m[key] = prev
			return
		}
		delete(m, key)
	}
}

func (s *Store) InsertAsset(ctx context.Context, asset entities.Asset) error {
	defer s.write(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.assets[asset.AssetID]; exists {
		return domainerrors.ErrAssetExists
	}
	s.journalLocked(ctx, revertKey(s.assets, asset.AssetID))
	s.assets[asset.AssetID] = asset
	return nil
}

func (s *Store) GetAsset(ctx context.Context, assetID string) (entities.Asset, error) {
	defer s.read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.assets[strings.TrimSpace(assetID)]
	if !ok {
		return entities.Asset{}, domainerrors.ErrAssetNotFound
	}
	return asset, nil
}

func (s *Store) SaveAsset(ctx context.Context, asset entities.Asset) error {
	defer s.write(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.assets[asset.AssetID]; !exists {
		return domainerrors.ErrAssetNotFound
	}
	s.journalLocked(ctx, revertKey(s.assets, asset.AssetID))
	s.assets[asset.AssetID] = asset
	return nil
}

func (s *Store) ListAssets(ctx context.Context) ([]entities.Asset, error) {
	defer s.read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Asset, 0, len(s.assets))
	for _, asset := range s.assets {
		items = append(items, asset)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].AssetID < items[j].AssetID
	})
	return items, nil
}

func (s *Store) GetPosition(ctx context.Context, assetID string, holder string) (entities.Position, bool, error) {
	defer s.read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	position, ok := s.positions[positionKey{assetID: assetID, holder: holder}]
	return position, ok, nil
}

func (s *Store) SavePosition(ctx context.Context, position entities.Position) error {
	defer s.write(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	key := positionKey{assetID: position.AssetID, holder: position.Holder}
	s.journalLocked(ctx, revertKey(s.positions, key))
	s.positions[key] = position
	return nil
}

func (s *Store) ListPositionsByAsset(ctx context.Context, assetID string) ([]entities.Position, error) {
	defer s.read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Position, 0)
	for key, position := range s.positions {
		if key.assetID == assetID {
			items = append(items, position)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Holder < items[j].Holder
	})
	return items, nil
}

func (s *Store) ListPositionsByHolder(ctx context.Context, holder string) ([]entities.Position, error) {
	defer s.read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Position, 0)
	for key, position := range s.positions {
		if key.holder == holder {
			items = append(items, position)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].AssetID < items[j].AssetID
	})
	return items, nil
}

func (s *Store) GetPower(ctx context.Context, holder string) (entities.HolderPower, bool, error) {
	defer s.read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	power, ok := s.power[holder]
	if !ok {
		return entities.HolderPower{Holder: holder}, false, nil
	}
	return power, true, nil
}

func (s *Store) SavePower(ctx context.Context, power entities.HolderPower) error {
	defer s.write(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journalLocked(ctx, revertKey(s.power, power.Holder))
	s.power[power.Holder] = power
	return nil
}

// SetPower overwrites a cached power value. Tests use it to simulate drift.
func (s *Store) SetPower(holder string, value uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.power[holder] = entities.HolderPower{Holder: holder, Power: value, UpdatedAt: s.clockLocked()}
}

func (s *Store) GetExit(ctx context.Context, holder string) (entities.HolderExit, bool, error) {
	defer s.read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	exit, ok := s.exits[holder]
	return exit, ok, nil
}

func (s *Store) SaveExit(ctx context.Context, exit entities.HolderExit) error {
	defer s.write(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	exit.Assets = append([]string(nil), exit.Assets...)
	s.journalLocked(ctx, revertKey(s.exits, exit.Holder))
	s.exits[exit.Holder] = exit
	return nil
}

func (s *Store) Collect(ctx context.Context, payer string, amount uint64, reference string) error {
	return s.recordMovement(ctx, entities.ValueDirectionIn, payer, amount, reference)
}

func (s *Store) Pay(ctx context.Context, payee string, amount uint64, reference string) error {
	return s.recordMovement(ctx, entities.ValueDirectionOut, payee, amount, reference)
}

func (s *Store) recordMovement(
	ctx context.Context,
	direction entities.ValueDirection,
	party string,
	amount uint64,
	reference string,
) error {
	s.mu.RLock()
	movement := entities.ValueMovement{
		TransferID: uuid.NewString(),
		Direction:  direction,
		Party:      party,
		Amount:     amount,
		Reference:  reference,
		CreatedAt:  s.clockLocked(),
	}
	failure, hook := s.payErr, s.payHook
	if direction == entities.ValueDirectionIn {
		failure, hook = s.collectErr, s.collectHook
	}
	s.mu.RUnlock()

	if failure != nil {
		return failure
	}
	if hook != nil {
		if err := hook(ctx, movement); err != nil {
			return err
		}
	}

	defer s.write(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	recorded := len(s.movements)
	s.journalLocked(ctx, func() { s.movements = s.movements[:recorded] })
	s.movements = append(s.movements, movement)
	return nil
}

// FailPayments makes every subsequent Pay return err; nil restores success.
func (s *Store) FailPayments(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payErr = err
}

// FailCollections makes every subsequent Collect return err.
func (s *Store) FailCollections(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collectErr = err
}

func (s *Store) SetPayHook(hook PayHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payHook = hook
}

func (s *Store) SetCollectHook(hook PayHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collectHook = hook
}

// Movements returns recorded value movements in the order they happened.
func (s *Store) Movements() []entities.ValueMovement {
	defer s.read(context.Background())()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.ValueMovement(nil), s.movements...)
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clockLocked()
}

func (s *Store) clockLocked() time.Time {
	if s.now.IsZero() {
		return time.Now().UTC()
	}
	return s.now
}

// SetNow pins the store clock; the zero time returns to wall-clock time.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now.UTC()
}

func (s *Store) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.now.IsZero() {
		s.now = time.Now().UTC()
	}
	s.now = s.now.Add(d)
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	defer s.write(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	seq := s.outboxSeq
	s.journalLocked(ctx, func() {
		delete(s.outbox, outboxID)
		s.outboxSeq = seq
	})
	s.outboxSeq++
	s.outbox[outboxID] = outboxRecord{
		seq: s.outboxSeq,
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			CreatedAt:    envelope.OccurredAt.UTC(),
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	defer s.read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	rows := make([]outboxRecord, 0, len(s.outbox))
	for _, row := range s.outbox {
		if !row.published {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].seq < rows[j].seq
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.message)
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(ctx context.Context, outboxID string, _ time.Time) error {
	defer s.write(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[outboxID]
	if !ok {
		return nil
	}
	s.journalLocked(ctx, revertKey(s.outbox, outboxID))
	row.published = true
	s.outbox[outboxID] = row
	return nil
}

// PendingEventTypes lists unpublished event types, oldest first.
func (s *Store) PendingEventTypes() []string {
	rows, _ := s.ListPendingOutbox(context.Background(), math.MaxInt)
	types := make([]string, 0, len(rows))
	for _, row := range rows {
		types = append(types, row.EventType)
	}
	return types
}
