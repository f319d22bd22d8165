// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"time"

	"github.com/danielhkuo/ballotbox/models"
)

// The stores are the persistence boundary of the voting core. Handles are
// constructed by the caller and passed into NewService explicitly; nothing
// in this package keeps process-wide state.

// BallotStore owns ballot definitions and their lifecycle flag.
type BallotStore interface {
	// Create persists a new ballot.
	Create(b models.Ballot) error
	// Get returns the ballot, or nil when no ballot has that id.
	Get(id string) (*models.Ballot, error)
	// Close flips is_active off. Closing an already-closed or unknown
	// ballot is a no-op, not an error.
	Close(id string) error
	// List returns all ballots, most recently created first.
	List() ([]models.Ballot, error)
}

// EligibilityStore owns (voter, ballot) registration pairs. There is no
// removal operation: eligibility is permanent once granted.
type EligibilityStore interface {
	// Register grants eligibility. Re-registering is a no-op, never an error.
	Register(voterID, ballotID string, at time.Time) error
	// IsEligible reports whether the pair is registered.
	IsEligible(voterID, ballotID string) (bool, error)
}

// VoteStore owns committed votes. Its uniqueness constraint over
// (voter_id, ballot_id) is the authority on double voting.
type VoteStore interface {
	// Insert commits a vote. A second vote for the same (voter, ballot)
	// pair fails with ErrConflict regardless of call interleaving.
	Insert(v models.Vote) error
	// HasVoted reports whether a committed vote exists for the pair.
	HasVoted(voterID, ballotID string) (bool, error)
	// ListByBallot returns a ballot's committed votes, timestamp ascending.
	ListByBallot(ballotID string) ([]models.Vote, error)
}
