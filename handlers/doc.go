// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the ballotbox API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - BallotHandler: Ballot lifecycle, voter rolls, casting, tallies, audits
  - PermitHandler: Permit applications, decisions, expiry, compliance
  - RecordsHandler: Public records, search, bundles, FOIA requests

Handlers are created via constructor functions that accept *sql.DB (and
Config where the handler needs salts or the database type):

	ballotHandler := handlers.NewBallotHandler(db, cfg)

# Ballot Lifecycle

Ballots open on creation and close by window expiry or administrative
action:

	POST /ballots              → CreateBallot (returns admin_key)
	POST /ballots/{id}/voters  → RegisterVoter (admin)
	POST /ballots/{id}/votes   → CastVote
	GET  /ballots/{id}/tally   → GetTally
	GET  /ballots/{id}/export  → ExportBallot (admin)
	GET  /ballots/{id}/verify  → VerifyBallot (admin)
	POST /ballots/{id}/close   → CloseBallot (admin)

Admin operations require the X-Admin-Key header. The ballot handler
translates voting package sentinel errors into HTTP statuses: not found
404, invalid input or state 400, forbidden 403, conflict 409.

# Permit Lifecycle

Permits progress pending → approved/denied, and approved permits expire:

	POST /permits               → ApplyPermit
	POST /permits/{id}/approve  → ApprovePermit
	POST /permits/{id}/deny     → DenyPermit
	POST /permits/{id}/expire   → ExpirePermit
	POST /permits/sweep         → SweepPermits

Every transition appends a permit_events row. ExpireOverduePermits is a
package-level function so the cron sweep in main can share the sweep
logic with the handler.

# Records and FOIA

Documents are versioned; every edit archives the outgoing version:

	POST /documents             → CreateDocument
	PUT  /documents/{id}        → UpdateDocument
	GET  /documents/search      → SearchDocuments (FTS5 under SQLite)
	GET  /documents/bundle      → BundleDocuments (ZIP + index.csv)
	POST /foia                  → SubmitFOIA
	POST /foia/{id}/fulfill     → FulfillFOIA
*/
package handlers
