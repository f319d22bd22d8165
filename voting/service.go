// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballotbox/models"
)

// Service coordinates the voting core: ballot lifecycle, voter
// eligibility, the casting protocol, tallying, export, and verification.
type Service struct {
	ballots BallotStore
	voters  EligibilityStore
	votes   VoteStore
}

func NewService(ballots BallotStore, voters EligibilityStore, votes VoteStore) *Service {
	return &Service{ballots: ballots, voters: voters, votes: votes}
}

// newID returns a short opaque identifier.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// CreateBallot validates and persists a new ballot. Options must hold at
// least two distinct labels; their order is kept as given and drives the
// tally tie-break. The window is taken as given - a start after the end is
// allowed and simply yields a ballot that never accepts votes.
func (s *Service) CreateBallot(title, description string, options []string, startTime, endTime time.Time) (*models.Ballot, error) {
	if len(options) < 2 {
		return nil, fmt.Errorf("a ballot needs at least 2 options, got %d: %w", len(options), ErrInvalidInput)
	}
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		if seen[opt] {
			return nil, fmt.Errorf("duplicate option %q: %w", opt, ErrInvalidInput)
		}
		seen[opt] = true
	}

	ballot := models.Ballot{
		ID:          newID(),
		Title:       title,
		Description: description,
		Options:     options,
		StartTime:   startTime.UTC(),
		EndTime:     endTime.UTC(),
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.ballots.Create(ballot); err != nil {
		return nil, err
	}
	return &ballot, nil
}

// RegisterVoter grants a voter eligibility for a ballot. Idempotent:
// re-registering an already-eligible voter is a no-op.
func (s *Service) RegisterVoter(voterID, ballotID string) error {
	return s.voters.Register(voterID, ballotID, time.Now().UTC())
}

// GetBallot fetches a ballot by id.
func (s *Service) GetBallot(id string) (*models.Ballot, error) {
	ballot, err := s.ballots.Get(id)
	if err != nil {
		return nil, err
	}
	if ballot == nil {
		return nil, fmt.Errorf("ballot %q not found: %w", id, ErrNotFound)
	}
	return ballot, nil
}

// CloseBallot deactivates a ballot so no further votes are accepted.
// Idempotent. Ballots are only ever closed this way; end_time passing
// rejects casts but never flips the flag.
func (s *Service) CloseBallot(id string) error {
	return s.ballots.Close(id)
}

// ListBallots returns all ballots, most recently created first.
func (s *Service) ListBallots() ([]models.Ballot, error) {
	return s.ballots.List()
}

// CastVote runs the casting protocol: an ordered guard chain in which
// each failure carries a distinct error kind, then an atomic commit. The
// HasVoted pre-check is a cheap early rejection only; the vote store's
// uniqueness constraint settles races, so exactly one of N concurrent
// casts for the same (voter, ballot) pair commits. A rejected cast leaves
// no row behind.
func (s *Service) CastVote(ballotID, voterID, choice string) (*models.Vote, error) {
	ballot, err := s.ballots.Get(ballotID)
	if err != nil {
		return nil, err
	}
	if ballot == nil {
		return nil, fmt.Errorf("ballot %q not found: %w", ballotID, ErrNotFound)
	}

	if !ballot.IsActive {
		return nil, fmt.Errorf("ballot %q is closed: %w", ballotID, ErrInvalidState)
	}

	now := time.Now().UTC()
	if now.Before(ballot.StartTime) {
		return nil, fmt.Errorf("voting window has not opened yet: %w", ErrInvalidState)
	}
	if now.After(ballot.EndTime) {
		return nil, fmt.Errorf("voting window has closed: %w", ErrInvalidState)
	}

	declared := false
	for _, opt := range ballot.Options {
		if opt == choice {
			declared = true
			break
		}
	}
	if !declared {
		return nil, fmt.Errorf("invalid choice %q, valid options: %v: %w", choice, ballot.Options, ErrInvalidInput)
	}

	eligible, err := s.voters.IsEligible(voterID, ballotID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, fmt.Errorf("voter %q is not registered for ballot %q: %w", voterID, ballotID, ErrForbidden)
	}

	voted, err := s.votes.HasVoted(voterID, ballotID)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, fmt.Errorf("voter %q has already voted on ballot %q: %w", voterID, ballotID, ErrConflict)
	}

	vote := models.Vote{
		ID:        newID(),
		VoterID:   voterID,
		BallotID:  ballotID,
		Choice:    choice,
		Timestamp: now,
		Signature: Sign(voterID, ballotID, choice, now),
	}
	if err := s.votes.Insert(vote); err != nil {
		return nil, err
	}
	return &vote, nil
}

// Tally counts committed votes for every declared option, zero included.
// Votes whose choice is not declared (impossible through CastVote,
// possible through direct storage edits) are excluded from both counts
// and total.
func (s *Service) Tally(ballotID string) (*models.TallySummary, error) {
	ballot, err := s.GetBallot(ballotID)
	if err != nil {
		return nil, err
	}
	votes, err := s.votes.ListByBallot(ballotID)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(ballot.Options))
	for _, opt := range ballot.Options {
		counts[opt] = 0
	}
	total := 0
	for _, v := range votes {
		if _, ok := counts[v.Choice]; ok {
			counts[v.Choice]++
			total++
		}
	}

	percentages := make(map[string]float64, len(ballot.Options))
	for opt, count := range counts {
		if total > 0 {
			percentages[opt] = math.Round(100*float64(count)/float64(total)*100) / 100
		} else {
			percentages[opt] = 0.0
		}
	}

	// Ties resolve to the option declared first: only a strictly greater
	// count displaces the current leader.
	var winner *string
	if total > 0 {
		best := ballot.Options[0]
		for _, opt := range ballot.Options[1:] {
			if counts[opt] > counts[best] {
				best = opt
			}
		}
		winner = &best
	}

	return &models.TallySummary{
		BallotID:    ballotID,
		Title:       ballot.Title,
		TotalVotes:  total,
		Counts:      counts,
		Percentages: percentages,
		Winner:      winner,
	}, nil
}

// Export renders a ballot's results in the requested format: a JSON
// document holding the tally summary plus every vote row, or a CSV of the
// raw vote rows. Votes appear in timestamp order in both.
func (s *Service) Export(ballotID, format string) ([]byte, error) {
	summary, err := s.Tally(ballotID)
	if err != nil {
		return nil, err
	}
	votes, err := s.votes.ListByBallot(ballotID)
	if err != nil {
		return nil, err
	}

	switch format {
	case models.FormatJSON:
		doc := models.ExportDocument{
			Summary: *summary,
			Votes:   make([]models.ExportedVote, 0, len(votes)),
		}
		for _, v := range votes {
			doc.Votes = append(doc.Votes, models.ExportedVote{
				VoterID:   v.VoterID,
				BallotID:  v.BallotID,
				Choice:    v.Choice,
				Timestamp: v.Timestamp,
				Signature: v.Signature,
			})
		}
		return json.MarshalIndent(doc, "", "  ")

	case models.FormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		w.Write([]string{"voter_id", "ballot_id", "choice", "timestamp", "signature"})
		for _, v := range votes {
			w.Write([]string{v.VoterID, v.BallotID, v.Choice, v.Timestamp.UTC().Format(time.RFC3339Nano), v.Signature})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, fmt.Errorf("failed to write csv: %w", err)
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("unknown export format %q (use %q or %q): %w",
			format, models.FormatJSON, models.FormatCSV, ErrInvalidInput)
	}
}

// VerifyAll recomputes the integrity token of every committed vote on a
// ballot and reports mismatches vote-by-vote. An unknown ballot verifies
// an empty set.
func (s *Service) VerifyAll(ballotID string) (*models.VerificationReport, error) {
	votes, err := s.votes.ListByBallot(ballotID)
	if err != nil {
		return nil, err
	}

	report := &models.VerificationReport{
		BallotID: ballotID,
		Checked:  len(votes),
		Invalid:  []models.Vote{},
	}
	for _, v := range votes {
		if !Verify(v) {
			report.Invalid = append(report.Invalid, v)
		}
	}
	report.Valid = len(report.Invalid) == 0
	return report, nil
}
