// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The full-text index over documents exists only under SQLite; other
// backends serve searches through the LIKE fallback.
func CreateSchema(db *sql.DB, dbType string) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if dbType == TypeSQLite {
		if _, err := db.Exec(sqliteSearchSchema); err != nil {
			return fmt.Errorf("failed to create search index: %w", err)
		}
	}

	return nil
}

// All timestamps are stored as RFC3339Nano UTC text so that values covered
// by vote integrity tokens round-trip byte-for-byte on every backend.
const schema = `
-- Ballots
CREATE TABLE IF NOT EXISTS ballots (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    options TEXT NOT NULL,
    start_time TEXT NOT NULL,
    end_time TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ballots_created_at ON ballots(created_at);

-- Votes
CREATE TABLE IF NOT EXISTS votes (
    id TEXT PRIMARY KEY,
    voter_id TEXT NOT NULL,
    ballot_id TEXT NOT NULL REFERENCES ballots(id),
    choice TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    signature TEXT NOT NULL,
    UNIQUE (voter_id, ballot_id)
);

CREATE INDEX IF NOT EXISTS idx_votes_ballot_id ON votes(ballot_id);

-- Eligible Voters
CREATE TABLE IF NOT EXISTS eligible_voters (
    voter_id TEXT NOT NULL,
    ballot_id TEXT NOT NULL,
    registered_at TEXT NOT NULL,
    PRIMARY KEY (voter_id, ballot_id)
);

-- Permits
CREATE TABLE IF NOT EXISTS permits (
    id TEXT PRIMARY KEY,
    permit_type TEXT NOT NULL,
    applicant TEXT NOT NULL,
    address TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'denied', 'expired')),
    issued_at TEXT,
    expires_at TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    notes TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_permits_address ON permits(address);
CREATE INDEX IF NOT EXISTS idx_permits_status ON permits(status);

-- Permit Events
CREATE TABLE IF NOT EXISTS permit_events (
    id TEXT PRIMARY KEY,
    permit_id TEXT NOT NULL REFERENCES permits(id),
    event_type TEXT NOT NULL,
    actor TEXT,
    message TEXT,
    occurred_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_permit_events_permit_id ON permit_events(permit_id);

-- Documents
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    category TEXT NOT NULL,
    body TEXT NOT NULL,
    tags TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    is_public BOOLEAN NOT NULL DEFAULT FALSE,
    version INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_documents_category ON documents(category);

-- Document Revisions
CREATE TABLE IF NOT EXISTS document_revisions (
    document_id TEXT NOT NULL,
    version INTEGER NOT NULL,
    title TEXT NOT NULL,
    body TEXT NOT NULL,
    edited_by TEXT,
    edited_at TEXT NOT NULL,
    PRIMARY KEY (document_id, version)
);

-- FOIA Requests
CREATE TABLE IF NOT EXISTS foia_requests (
    id TEXT PRIMARY KEY,
    requester TEXT NOT NULL,
    description TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'processing', 'fulfilled', 'denied', 'withdrawn')),
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    response TEXT NOT NULL DEFAULT '',
    document_ids TEXT NOT NULL DEFAULT '[]'
);
`

// FTS5 index over documents, kept in sync by triggers. The documents table
// keeps its implicit rowid (TEXT primary key), which the content link needs.
const sqliteSearchSchema = `
CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts
    USING fts5(id UNINDEXED, title, body, tags, content='documents', content_rowid='rowid');

CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
    INSERT INTO documents_fts(rowid, id, title, body, tags)
    VALUES (new.rowid, new.id, new.title, new.body, new.tags);
END;

CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
    INSERT INTO documents_fts(documents_fts, rowid, id, title, body, tags)
    VALUES ('delete', old.rowid, old.id, old.title, old.body, old.tags);
END;

CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE ON documents BEGIN
    INSERT INTO documents_fts(documents_fts, rowid, id, title, body, tags)
    VALUES ('delete', old.rowid, old.id, old.title, old.body, old.tags);
    INSERT INTO documents_fts(rowid, id, title, body, tags)
    VALUES (new.rowid, new.id, new.title, new.body, new.tags);
END;
`
