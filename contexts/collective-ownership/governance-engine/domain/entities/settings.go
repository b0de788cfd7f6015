package entities

import (
	"strings"
	"time"
)

// TallyMode selects what a vote adds to the tally.
type TallyMode string

const (
	// TallyModeAggregate counts the voter's whole voting power across all
	// assets at the moment the named position is spent.
	TallyModeAggregate TallyMode = "aggregate"
	// TallyModeAsset counts only the fractions of the named asset.
	TallyModeAsset TallyMode = "asset"
)

func ParseTallyMode(raw string) (TallyMode, bool) {
	switch TallyMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", TallyModeAggregate:
		return TallyModeAggregate, true
	case TallyModeAsset:
		return TallyModeAsset, true
	default:
		return "", false
	}
}

type Settings struct {
	VotingDelay  time.Duration
	VotingPeriod time.Duration
	Quorum       uint64
	TallyMode    TallyMode
	Admins       []string
}

func (s Settings) IsAdmin(identity string) bool {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return false
	}
	for _, admin := range s.Admins {
		if strings.TrimSpace(admin) == identity {
			return true
		}
	}
	return false
}
