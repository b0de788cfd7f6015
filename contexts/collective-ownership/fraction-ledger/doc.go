// Package fractionledger implements the fraction ledger inside the
// collective-ownership context.
//
// The module owns per-asset fraction balances, one-shot delegation, rage-quit
// burns, royalty accrual and claims, and the incrementally maintained voting
// power of every holder. Business rules live in the application/domain layers;
// storage, value transfer and event publication sit behind ports.
package fractionledger
