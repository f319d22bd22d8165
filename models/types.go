package models

import "time"

// Export format constants
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Request types

type CreateBallotRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Options       []string   `json:"options"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	DurationHours int        `json:"duration_hours,omitempty"`
}

type RegisterVoterRequest struct {
	VoterID string `json:"voter_id"`
}

type CastVoteRequest struct {
	VoterID string `json:"voter_id"`
	Choice  string `json:"choice"`
}

// Response types

type CreateBallotResponse struct {
	Ballot   Ballot `json:"ballot"`
	AdminKey string `json:"admin_key"`
}

type RegisterVoterResponse struct {
	VoterID  string `json:"voter_id"`
	BallotID string `json:"ballot_id"`
	Message  string `json:"message"`
}

type CloseBallotResponse struct {
	BallotID string `json:"ballot_id"`
	Message  string `json:"message"`
}

// Domain types

type Ballot struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Options     []string  `json:"options"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Vote struct {
	ID        string    `json:"id"`
	VoterID   string    `json:"voter_id"`
	BallotID  string    `json:"ballot_id"`
	Choice    string    `json:"choice"`
	Timestamp time.Time `json:"timestamp"`
	Signature string    `json:"signature"`
}

// Tally and audit types

type TallySummary struct {
	BallotID    string             `json:"ballot_id"`
	Title       string             `json:"title"`
	TotalVotes  int                `json:"total_votes"`
	Counts      map[string]int     `json:"counts"`
	Percentages map[string]float64 `json:"percentages"`
	Winner      *string            `json:"winner"`
}

// ExportedVote is the external shape of a vote row: the identifying fields
// the integrity token covers, without the internal row id.
type ExportedVote struct {
	VoterID   string    `json:"voter_id"`
	BallotID  string    `json:"ballot_id"`
	Choice    string    `json:"choice"`
	Timestamp time.Time `json:"timestamp"`
	Signature string    `json:"signature"`
}

type ExportDocument struct {
	Summary TallySummary   `json:"summary"`
	Votes   []ExportedVote `json:"votes"`
}

type VerificationReport struct {
	BallotID string `json:"ballot_id"`
	Checked  int    `json:"checked"`
	Invalid  []Vote `json:"invalid"`
	Valid    bool   `json:"valid"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
