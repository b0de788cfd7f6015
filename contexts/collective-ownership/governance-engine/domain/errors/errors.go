package errors

import "syndicate/internal/shared/fault"

var (
	ErrInvalidProposalID    = fault.New(fault.KindInvalidArgument, "proposal id must be greater than zero")
	ErrInvalidAssetID       = fault.New(fault.KindInvalidArgument, "asset id is required")
	ErrInvalidIdentity      = fault.New(fault.KindInvalidArgument, "caller identity is required")
	ErrProposalNotFound     = fault.New(fault.KindNotFound, "proposal not found")
	ErrAssetNotFound        = fault.New(fault.KindNotFound, "asset not found")
	ErrNotAdmin             = fault.New(fault.KindUnauthorized, "caller is not a governance administrator")
	ErrNotProposerOrAdmin   = fault.New(fault.KindUnauthorized, "only the proposer or an administrator can cancel")
	ErrAssetNotEligible     = fault.New(fault.KindInvariantViolation, "asset is not eligible for governance")
	ErrNoVotingPower        = fault.New(fault.KindInvariantViolation, "caller has no voting power")
	ErrProposalNotActive    = fault.New(fault.KindInvariantViolation, "proposal is not active")
	ErrProposalNotSucceeded = fault.New(fault.KindInvariantViolation, "proposal has not succeeded")
	ErrNotCancelable        = fault.New(fault.KindInvariantViolation, "proposal can only be canceled while pending or active")
	ErrZeroWeight           = fault.New(fault.KindInvariantViolation, "vote weight is zero")
	ErrTallyOverflow        = fault.New(fault.KindInvariantViolation, "vote tally overflow")
	ErrAlreadyVoted         = fault.New(fault.KindAlreadyDone, "voter already voted on this proposal")
	ErrConflict             = fault.New(fault.KindInvariantViolation, "governance write conflict")
	ErrValueOutOfRange      = fault.New(fault.KindInvariantViolation, "value exceeds storage range")
)
