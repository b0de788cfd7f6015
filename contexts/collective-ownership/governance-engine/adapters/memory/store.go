package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"syndicate/contexts/collective-ownership/governance-engine/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/governance-engine/domain/errors"
	"syndicate/contexts/collective-ownership/governance-engine/ports"

	"github.com/google/uuid"
)

type receiptKey struct {
	proposalID uint64
	voter      string
}

type outboxRecord struct {
	message   ports.OutboxMessage
	seq       uint64
	published bool
}

type txKey struct{}

// Store keeps governance state in memory and implements every governance
// port except Ledger. A unit of work holds gate until it finishes and
// replays its undo log when it fails.
type Store struct {
	gate sync.RWMutex
	mu   sync.RWMutex
	undo []func()

	proposals   map[uint64]entities.Proposal
	receipts    map[receiptKey]entities.VoteReceipt
	eligibility map[string]entities.AssetEligibility
	outbox      map[string]outboxRecord
	lastID      uint64
	outboxSeq   uint64
	now         time.Time
}

func NewStore() *Store {
	return &Store{
		proposals:   make(map[uint64]entities.Proposal),
		receipts:    make(map[receiptKey]entities.VoteReceipt),
		eligibility: make(map[string]entities.AssetEligibility),
		outbox:      make(map[string]outboxRecord),
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

func (s *Store) CreateProposal(ctx context.Context, proposal entities.Proposal) (entities.Proposal, error) {
	defer s.write(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	lastID := s.lastID
	s.journalLocked(ctx, func() {
		delete(s.proposals, lastID+1)
		s.lastID = lastID
	})
	s.lastID++
	proposal.ProposalID = s.lastID
	s.proposals[proposal.ProposalID] = proposal
	return proposal, nil
}

func (s *Store) GetProposal(ctx context.Context, proposalID uint64) (entities.Proposal, error) {
	defer s.read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposal, ok := s.proposals[proposalID]
	if !ok {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return proposal, nil
}

func (s *Store) SaveProposal(ctx context.Context, proposal entities.Proposal) error {
	defer s.write(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[proposal.ProposalID]; !ok {
		return domainerrors.ErrProposalNotFound
	}
	s.journalLocked(ctx, revertKey(s.proposals, proposal.ProposalID))
	s.proposals[proposal.ProposalID] = proposal
	return nil
}

func (s *Store) ListProposals(ctx context.Context, assetID string) ([]entities.Proposal, error) {
	defer s.read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Proposal, 0, len(s.proposals))
	for _, proposal := range s.proposals {
		if assetID != "" && proposal.AssetID != assetID {
			continue
		}
		items = append(items, proposal)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProposalID < items[j].ProposalID
	})
	return items, nil
}

func (s *Store) GetReceipt(ctx context.Context, proposalID uint64, voter string) (entities.VoteReceipt, bool, error) {
	defer s.read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	receipt, ok := s.receipts[receiptKey{proposalID: proposalID, voter: voter}]
	return receipt, ok, nil
}

func (s *Store) InsertReceipt(ctx context.Context, receipt entities.VoteReceipt) error {
	defer s.write(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	key := receiptKey{proposalID: receipt.ProposalID, voter: receipt.Voter}
	if _, exists := s.receipts[key]; exists {
		return domainerrors.ErrAlreadyVoted
	}
	s.journalLocked(ctx, revertKey(s.receipts, key))
	s.receipts[key] = receipt
	return nil
}

func (s *Store) ListReceipts(ctx context.Context, proposalID uint64) ([]entities.VoteReceipt, error) {
	defer s.read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.VoteReceipt, 0)
	for key, receipt := range s.receipts {
		if key.proposalID == proposalID {
			items = append(items, receipt)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Voter < items[j].Voter
	})
	return items, nil
}

func (s *Store) GetEligibility(ctx context.Context, assetID string) (entities.AssetEligibility, bool, error) {
	defer s.read(ctx)()
	s.mu.RLock()
	defer s.mu.RUnlock()
	eligibility, ok := s.eligibility[assetID]
	return eligibility, ok, nil
}

func (s *Store) SaveEligibility(ctx context.Context, eligibility entities.AssetEligibility) error {
	defer s.write(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journalLocked(ctx, revertKey(s.eligibility, eligibility.AssetID))
	s.eligibility[eligibility.AssetID] = eligibility
	return nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.now.IsZero() {
		return time.Now().UTC()
	}
	return s.now
}

func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now.UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	defer s.write(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	outboxID := envelope.EventID
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
	rows := make([]outboxRecord, 0)
	for _, row := range s.outbox {
		if !row.published {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
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
	rows, _ := s.ListPendingOutbox(context.Background(), int(^uint(0)>>1))
	types := make([]string, 0, len(rows))
	for _, row := range rows {
		types = append(types, row.EventType)
	}
	return types
}
