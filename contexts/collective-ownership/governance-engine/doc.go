// Package governanceengine implements the proposal lifecycle inside the
// collective-ownership context.
//
// The module owns per-asset governance eligibility, proposals, vote receipts
// and tallies. Proposal state is derived from the clock and the tally on every
// read. Voting power and vote marking come from the fraction ledger through
// the Ledger port.
package governanceengine
