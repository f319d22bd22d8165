// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting implements the ballot integrity core: ballot lifecycle,
voter eligibility, the vote casting protocol, tallying, export, and
verification.

# Service

Service is the single entry point. It is wired from three storage
interfaces so the HTTP handlers and the console subcommands share one
implementation:

	svc := voting.NewService(
		voting.NewSQLBallotStore(conn),
		voting.NewSQLEligibilityStore(conn),
		voting.NewSQLVoteStore(conn),
	)

# Casting Protocol

CastVote runs an ordered guard chain; each failure carries a distinct
sentinel classified with errors.Is:

	ballot exists        ErrNotFound
	ballot active        ErrInvalidState
	window open          ErrInvalidState
	choice declared      ErrInvalidInput
	voter eligible       ErrForbidden
	voter has not voted  ErrConflict

The HasVoted pre-check is advisory; the vote store's UNIQUE
(voter_id, ballot_id) constraint settles concurrent casts, so exactly one
of N simultaneous attempts for the same pair commits. A rejected cast
leaves no row behind.

# Integrity Tokens

Every committed vote carries a SHA-256 token over its length-prefixed
identifying fields (voter, ballot, choice, timestamp). Verify recomputes
the token from the stored fields; VerifyAll reports per-vote mismatches
for a whole ballot. The token detects post-commit tampering but does not
prove origin.

# Tallies

Tally counts committed votes for every declared option, zeroes included,
with percentages rounded to two decimals. Ties resolve to the option
declared first at ballot creation.
*/
package voting
