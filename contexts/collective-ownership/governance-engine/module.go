package governanceengine

import (
	"log/slog"

	httpadapter "syndicate/contexts/collective-ownership/governance-engine/adapters/http"
	"syndicate/contexts/collective-ownership/governance-engine/adapters/memory"
	"syndicate/contexts/collective-ownership/governance-engine/application/commands"
	"syndicate/contexts/collective-ownership/governance-engine/application/queries"
	"syndicate/contexts/collective-ownership/governance-engine/domain/entities"
	"syndicate/contexts/collective-ownership/governance-engine/ports"
	"syndicate/internal/shared/sequencer"
)

type Module struct {
	Handler    httpadapter.Handler
	Governance commands.GovernanceUseCase
	Queries    queries.ProposalQueries
	Store      *memory.Store
}

type Dependencies struct {
	Repo      ports.Repository
	Tx        ports.UnitOfWork
	Ledger    ports.Ledger
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Sequencer *sequencer.Sequencer
	Settings  entities.Settings
	Metrics   ports.Metrics
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	governance := commands.GovernanceUseCase{
		Repo:      deps.Repo,
		Tx:        deps.Tx,
		Ledger:    deps.Ledger,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Sequencer: deps.Sequencer,
		Settings:  deps.Settings,
		Metrics:   deps.Metrics,
		Logger:    deps.Logger,
	}
	proposalQueries := queries.ProposalQueries{
		Repo:  deps.Repo,
		Clock: deps.Clock,
	}
	return Module{
		Handler: httpadapter.Handler{
			Governance: governance,
			Queries:    proposalQueries,
			Logger:     deps.Logger,
		},
		Governance: governance,
		Queries:    proposalQueries,
	}
}

// NewInMemoryModule wires governance onto a memory store. Passing a nil tx
// uses the store's own transactions; callers that share state with a ledger
// store pass a unit of work spanning both.
func NewInMemoryModule(
	ledger ports.Ledger,
	tx ports.UnitOfWork,
	clock ports.Clock,
	seq *sequencer.Sequencer,
	settings entities.Settings,
	logger *slog.Logger,
) Module {
	store := memory.NewStore()
	if tx == nil {
		tx = store
	}
	if clock == nil {
		clock = store
	}
	module := NewModule(Dependencies{
		Repo:      store,
		Tx:        tx,
		Ledger:    ledger,
		Outbox:    store,
		Clock:     clock,
		IDGen:     store,
		Sequencer: seq,
		Settings:  settings,
		Logger:    logger,
	})
	module.Store = store
	return module
}
