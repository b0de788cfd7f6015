package fractionledger

import (
	"log/slog"

	httpadapter "syndicate/contexts/collective-ownership/fraction-ledger/adapters/http"
	"syndicate/contexts/collective-ownership/fraction-ledger/adapters/memory"
	"syndicate/contexts/collective-ownership/fraction-ledger/application/commands"
	"syndicate/contexts/collective-ownership/fraction-ledger/application/queries"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/royalty"
	"syndicate/contexts/collective-ownership/fraction-ledger/ports"
	"syndicate/internal/shared/sequencer"
)

type Module struct {
	Handler httpadapter.Handler
	Ledger  commands.LedgerUseCase
	Queries queries.LedgerQueries
	Store   *memory.Store
}

type Dependencies struct {
	Repo        ports.Repository
	Tx          ports.UnitOfWork
	Value       ports.ValueTransfer
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Sequencer   *sequencer.Sequencer
	RoyaltyMode royalty.Mode
	Metrics     ports.Metrics
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	ledger := commands.LedgerUseCase{
		Repo:        deps.Repo,
		Tx:          deps.Tx,
		Value:       deps.Value,
		Outbox:      deps.Outbox,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Sequencer:   deps.Sequencer,
		RoyaltyMode: deps.RoyaltyMode,
		Metrics:     deps.Metrics,
		Logger:      deps.Logger,
	}
	ledgerQueries := queries.LedgerQueries{
		Repo: deps.Repo,
	}
	return Module{
		Handler: httpadapter.Handler{
			Ledger:  ledger,
			Queries: ledgerQueries,
			Logger:  deps.Logger,
		},
		Ledger:  ledger,
		Queries: ledgerQueries,
	}
}

// NewInMemoryModule wires the ledger onto a single memory store that also
// acts as value-transfer facility, clock and outbox.
func NewInMemoryModule(seq *sequencer.Sequencer, mode royalty.Mode, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repo:        store,
		Tx:          store,
		Value:       store,
		Outbox:      store,
		Clock:       store,
		IDGen:       store,
		Sequencer:   seq,
		RoyaltyMode: mode,
		Logger:      logger,
	})
	module.Store = store
	return module
}
