package errors

import "syndicate/internal/shared/fault"

var (
	ErrInvalidAssetID      = fault.New(fault.KindInvalidArgument, "asset id is required")
	ErrNullHolder          = fault.New(fault.KindInvalidArgument, "holder is required")
	ErrZeroAmount          = fault.New(fault.KindInvalidArgument, "amount must be greater than zero")
	ErrInvalidRoyaltyRate  = fault.New(fault.KindInvalidArgument, "royalty rate must be between 0 and 10000 basis points")
	ErrSelfDelegation      = fault.New(fault.KindInvalidArgument, "cannot delegate to self")
	ErrAssetNotFound       = fault.New(fault.KindNotFound, "asset not found")
	ErrAssetExists         = fault.New(fault.KindInvariantViolation, "asset already exists")
	ErrInsufficientBalance = fault.New(fault.KindInvariantViolation, "insufficient fraction balance")
	ErrPositionActed       = fault.New(fault.KindInvariantViolation, "position already voted or exited")
	ErrDelegatedPosition   = fault.New(fault.KindInvariantViolation, "position has delegated fractions")
	ErrAlreadyDelegated    = fault.New(fault.KindInvariantViolation, "position already delegated")
	ErrNoVotingBalance     = fault.New(fault.KindInvariantViolation, "no fractions to vote with")
	ErrNothingToRageQuit   = fault.New(fault.KindInvariantViolation, "no rage-quit eligible fractions")
	ErrNoFractions         = fault.New(fault.KindInvariantViolation, "holder owns no fractions of asset")
	ErrNoRoyalties         = fault.New(fault.KindInvariantViolation, "no royalties accumulated")
	ErrZeroShare           = fault.New(fault.KindInvariantViolation, "royalty share rounds to zero")
	ErrRoyaltyOverflow     = fault.New(fault.KindInvariantViolation, "royalty balance overflow")
	ErrRoyaltyAccounting   = fault.New(fault.KindInvariantViolation, "royalty share exceeds accumulated balance")
	ErrPowerOutOfRange     = fault.New(fault.KindInvariantViolation, "voting power cache out of range")
	ErrReentrantCall       = fault.New(fault.KindInvariantViolation, "ledger called from inside a value transfer")
	ErrAlreadyRageQuit     = fault.New(fault.KindAlreadyDone, "holder already rage quit")
	ErrConflict            = fault.New(fault.KindInvariantViolation, "ledger write conflict")
	ErrValueOutOfRange     = fault.New(fault.KindInvariantViolation, "value exceeds storage range")
)
