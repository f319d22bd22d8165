// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/voting"
)

// SetupTestDB creates a fresh SQLite database in a per-test temp directory
// with the full schema. The file is removed with the test's temp dir.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "ballotbox_test.db") +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	conn, err := db.Open(db.TypeSQLite, dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn, db.TypeSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3324,
		DatabaseType:  db.TypeSQLite,
		AdminKeySalt:  "test-admin-salt",
		VoterHashSalt: "test-voter-salt",
	}
}

func newTestID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

// CreateTestBallot inserts a ballot and returns its ID and admin key.
// state should be "open", "closed", "upcoming", or "ended". An "ended"
// ballot is past its voting window but was never administratively closed.
func CreateTestBallot(t *testing.T, conn *sql.DB, cfg cliparse.Config, state string, options ...string) (ballotID, adminKey string) {
	t.Helper()

	if len(options) == 0 {
		options = []string{"yes", "no"}
	}

	now := time.Now().UTC()
	start := now.Add(-time.Hour)
	end := now.Add(24 * time.Hour)
	active := true

	switch state {
	case "open":
	case "closed":
		active = false
	case "upcoming":
		start = now.Add(time.Hour)
		end = now.Add(25 * time.Hour)
	case "ended":
		start = now.Add(-25 * time.Hour)
		end = now.Add(-time.Hour)
	default:
		t.Fatalf("Unknown ballot state %q", state)
	}

	ballotID = newTestID(8)
	adminKey = auth.GenerateAdminKey(ballotID, cfg.AdminKeySalt)

	encoded, err := json.Marshal(options)
	if err != nil {
		t.Fatalf("Failed to encode options: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO ballots (id, title, description, options, start_time, end_time, is_active, created_at)
		VALUES ($1, 'Test Ballot', 'A test ballot', $2, $3, $4, $5, $6)
	`, ballotID, string(encoded), db.FormatTime(start), db.FormatTime(end), active, db.FormatTime(now))
	if err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}

	return ballotID, adminKey
}

// RegisterTestVoter marks a voter as eligible for a ballot
func RegisterTestVoter(t *testing.T, conn *sql.DB, ballotID, voterID string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO eligible_voters (voter_id, ballot_id, registered_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (voter_id, ballot_id) DO NOTHING
	`, voterID, ballotID, db.FormatTime(time.Now()))
	if err != nil {
		t.Fatalf("Failed to register test voter: %v", err)
	}
}

// CastTestVote inserts a vote with a valid integrity token and returns the
// vote ID
func CastTestVote(t *testing.T, conn *sql.DB, ballotID, voterID, choice string) string {
	t.Helper()

	voteID := newTestID(8)
	ts := time.Now().UTC()
	signature := voting.Sign(voterID, ballotID, choice, ts)

	_, err := conn.Exec(`
		INSERT INTO votes (id, voter_id, ballot_id, choice, timestamp, signature)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, voteID, voterID, ballotID, choice, db.FormatTime(ts), signature)
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}

	return voteID
}

// CreateTestPermit inserts a permit and returns its ID.
// status should be "pending", "approved", "denied", or "expired".
func CreateTestPermit(t *testing.T, conn *sql.DB, permitType, applicant, address, status string) string {
	t.Helper()

	permitID := newTestID(10)
	now := db.FormatTime(time.Now())

	_, err := conn.Exec(`
		INSERT INTO permits (id, permit_type, applicant, address, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'Test permit', $5, $6, $7)
	`, permitID, permitType, applicant, address, status, now, now)
	if err != nil {
		t.Fatalf("Failed to create test permit: %v", err)
	}

	return permitID
}

// CreateTestDocument inserts a document and returns its ID
func CreateTestDocument(t *testing.T, conn *sql.DB, title, category, body string, isPublic bool) string {
	t.Helper()

	docID := newTestID(10)
	now := db.FormatTime(time.Now())

	_, err := conn.Exec(`
		INSERT INTO documents (id, title, category, body, tags, author, created_at, updated_at, is_public, version)
		VALUES ($1, $2, $3, $4, '', 'tester', $5, $6, $7, 1)
	`, docID, title, category, body, now, now, isPublic)
	if err != nil {
		t.Fatalf("Failed to create test document: %v", err)
	}

	return docID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
