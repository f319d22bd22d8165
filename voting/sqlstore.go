// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/models"
)

type scanner interface {
	Scan(dest ...any) error
}

// SQLBallotStore implements BallotStore on a SQL database.
type SQLBallotStore struct {
	db *sql.DB
}

func NewSQLBallotStore(conn *sql.DB) *SQLBallotStore {
	return &SQLBallotStore{db: conn}
}

func (s *SQLBallotStore) Create(b models.Ballot) error {
	options, err := json.Marshal(b.Options)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO ballots (id, title, description, options, start_time, end_time, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, b.ID, b.Title, b.Description, string(options),
		db.FormatTime(b.StartTime), db.FormatTime(b.EndTime), b.IsActive, db.FormatTime(b.CreatedAt))

	if err != nil {
		return fmt.Errorf("failed to insert ballot: %w", err)
	}
	return nil
}

func (s *SQLBallotStore) Get(id string) (*models.Ballot, error) {
	row := s.db.QueryRow(`
		SELECT id, title, description, options, start_time, end_time, is_active, created_at
		FROM ballots
		WHERE id = $1
	`, id)

	ballot, err := scanBallot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ballot: %w", err)
	}
	return ballot, nil
}

func (s *SQLBallotStore) Close(id string) error {
	_, err := s.db.Exec(`UPDATE ballots SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to close ballot: %w", err)
	}
	return nil
}

func (s *SQLBallotStore) List() ([]models.Ballot, error) {
	rows, err := s.db.Query(`
		SELECT id, title, description, options, start_time, end_time, is_active, created_at
		FROM ballots
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ballots: %w", err)
	}
	defer rows.Close()

	ballots := []models.Ballot{}
	for rows.Next() {
		ballot, err := scanBallot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ballot: %w", err)
		}
		ballots = append(ballots, *ballot)
	}
	return ballots, rows.Err()
}

func scanBallot(sc scanner) (*models.Ballot, error) {
	var b models.Ballot
	var options, startTime, endTime, createdAt string

	if err := sc.Scan(&b.ID, &b.Title, &b.Description, &options, &startTime, &endTime, &b.IsActive, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(options), &b.Options); err != nil {
		return nil, fmt.Errorf("failed to decode options: %w", err)
	}

	var err error
	if b.StartTime, err = db.ParseTime(startTime); err != nil {
		return nil, err
	}
	if b.EndTime, err = db.ParseTime(endTime); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = db.ParseTime(createdAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// SQLEligibilityStore implements EligibilityStore on a SQL database.
type SQLEligibilityStore struct {
	db *sql.DB
}

func NewSQLEligibilityStore(conn *sql.DB) *SQLEligibilityStore {
	return &SQLEligibilityStore{db: conn}
}

func (s *SQLEligibilityStore) Register(voterID, ballotID string, at time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO eligible_voters (voter_id, ballot_id, registered_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (voter_id, ballot_id) DO NOTHING
	`, voterID, ballotID, db.FormatTime(at))

	if err != nil {
		return fmt.Errorf("failed to register voter: %w", err)
	}
	return nil
}

func (s *SQLEligibilityStore) IsEligible(voterID, ballotID string) (bool, error) {
	var one int
	err := s.db.QueryRow(`
		SELECT 1 FROM eligible_voters WHERE voter_id = $1 AND ballot_id = $2
	`, voterID, ballotID).Scan(&one)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query eligibility: %w", err)
	}
	return true, nil
}

// SQLVoteStore implements VoteStore on a SQL database.
type SQLVoteStore struct {
	db *sql.DB
}

func NewSQLVoteStore(conn *sql.DB) *SQLVoteStore {
	return &SQLVoteStore{db: conn}
}

func (s *SQLVoteStore) Insert(v models.Vote) error {
	_, err := s.db.Exec(`
		INSERT INTO votes (id, voter_id, ballot_id, choice, timestamp, signature)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, v.ID, v.VoterID, v.BallotID, v.Choice, db.FormatTime(v.Timestamp), v.Signature)

	if err != nil {
		// A stale HasVoted pre-check still lands here; the unique index
		// over (voter_id, ballot_id) has the final word.
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("voter %q has already voted on ballot %q: %w", v.VoterID, v.BallotID, ErrConflict)
		}
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

func (s *SQLVoteStore) HasVoted(voterID, ballotID string) (bool, error) {
	var one int
	err := s.db.QueryRow(`
		SELECT 1 FROM votes WHERE voter_id = $1 AND ballot_id = $2
	`, voterID, ballotID).Scan(&one)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query vote: %w", err)
	}
	return true, nil
}

func (s *SQLVoteStore) ListByBallot(ballotID string) ([]models.Vote, error) {
	rows, err := s.db.Query(`
		SELECT id, voter_id, ballot_id, choice, timestamp, signature
		FROM votes
		WHERE ballot_id = $1
		ORDER BY timestamp
	`, ballotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		var timestamp string
		if err := rows.Scan(&v.ID, &v.VoterID, &v.BallotID, &v.Choice, &timestamp, &v.Signature); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		if v.Timestamp, err = db.ParseTime(timestamp); err != nil {
			return nil, fmt.Errorf("failed to parse vote timestamp: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}
