package commands

import (
	"context"
	"time"

	application "syndicate/contexts/collective-ownership/fraction-ledger/application"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/fraction-ledger/domain/errors"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/power"
)

// PowerRecompute compares the cached power of a holder with a full rescan.
type PowerRecompute struct {
	Holder     string
	Cached     uint64
	Recomputed uint64
}

func (r PowerRecompute) Drifted() bool {
	return r.Cached != r.Recomputed
}

// RecomputePower rescans every position of holder and stores the result as
// the cached power.
func (uc LedgerUseCase) RecomputePower(ctx context.Context, holder string) (PowerRecompute, error) {
	holder = normalizeID(holder)
	if holder == "" {
		return PowerRecompute{}, uc.rejected("recompute_power", domainerrors.ErrNullHolder)
	}

	var result PowerRecompute
	err := uc.execute(ctx, "recompute_power", func(ctx context.Context, now time.Time) error {
		cached, _, err := uc.Repo.GetPower(ctx, holder)
		if err != nil {
			return err
		}
		positions, err := uc.Repo.ListPositionsByHolder(ctx, holder)
		if err != nil {
			return err
		}
		recomputed := power.Sum(positions)
		if err := uc.Repo.SavePower(ctx, entities.HolderPower{
			Holder:    holder,
			Power:     recomputed,
			UpdatedAt: now,
		}); err != nil {
			return err
		}
		result = PowerRecompute{Holder: holder, Cached: cached.Power, Recomputed: recomputed}
		return nil
	})
	if err != nil {
		return PowerRecompute{}, err
	}

	if result.Drifted() {
		application.ResolveLogger(uc.Logger).Warn("voting power cache repaired",
			"event", "ledger_power_drift_repaired",
			"module", moduleName,
			"layer", "application",
			"holder", holder,
			"cached", result.Cached,
			"recomputed", result.Recomputed,
		)
	}
	return result, nil
}
