// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ballotbox API server and CLI.

Ballotbox is a ballot integrity and tallying service for small civic
elections: registered voters cast exactly one vote inside a time window,
every vote carries a SHA-256 integrity token, and tallies, audit exports,
and per-vote verification are available over HTTP or the command line.
Two sibling services share the process: a permit lifecycle tracker with a
scheduled expiry sweep, and a public-records store with full-text search
and FOIA request handling.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... go run main.go

Or with flags:

	go run main.go -p 3324 -d "postgres://..."

When the first argument is a subcommand (create, register, vote, tally,
export, close, list, verify), the process runs that command against the
store and exits instead of serving.

# Configuration

Required settings:

  - ADMIN_KEY_SALT (--admin-salt): Secret for ballot admin key HMAC
  - VOTER_HASH_SALT (--voter-salt): Secret for voter id hashing in logs

Optional settings:

  - PORT (-p): Server port (default: 3324)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - DATABASE_URL (-d): SQLite DSN or PostgreSQL connection string;
    sqlite defaults to a local ballotbox.db file
  - PERMIT_SWEEP_SCHEDULE (--permit-sweep): Cron expression for the
    permit expiry sweep (default: @hourly, empty disables)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - voting: Ballot domain service (casting rules, integrity tokens, tallies)
  - handlers: HTTP request handlers (ballots, permits, records)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Key generation and validation
  - db: Connection setup and schema creation
  - cliparse: Configuration parsing
  - cli: Subcommand implementations

See package documentation for each component.
*/
package main
