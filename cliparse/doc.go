// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all server settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3324)
  - DatabaseURL: Connection string (defaults to a local sqlite file)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - AdminKeySalt: Secret for admin key HMAC (required)
  - VoterHashSalt: Secret for hashing voter IPs in logs (required)
  - PermitSweepSchedule: Cron spec for the permit expiry sweep (default: @hourly)

# CLI Flags

	-p, --port           Server port
	-d, --database-url   Database URL
	-t, --database-type  Database type (sqlite or postgres)
	--admin-salt         Admin key salt
	--voter-salt         Voter hash salt
	--permit-sweep       Permit sweep schedule (empty disables)

# Environment Variables

Flags fall back to environment variables:

	PORT                  → -p
	DATABASE_URL          → -d
	DATABASE_TYPE         → -t
	ADMIN_KEY_SALT        → --admin-salt
	VOTER_HASH_SALT       → --voter-salt
	PERMIT_SWEEP_SCHEDULE → --permit-sweep

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - ADMIN_KEY_SALT must be provided
  - VOTER_HASH_SALT must be provided
  - DATABASE_URL must be provided when DatabaseType is postgres

sqlite needs no URL; a missing one resolves to DefaultSQLiteDSN, a WAL-mode
file in the working directory.

# Store Flags

The CLI subcommands (create, vote, tally, ...) share only the database
half of the configuration. StoreFlags registers -d/-t on a subcommand's
FlagSet and Resolve applies the same fallback chain ParseFlags uses:

	fs := flag.NewFlagSet("tally", flag.ExitOnError)
	store := cliparse.StoreFlags(fs)
	fs.Parse(args)
	err := store.Resolve()

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(conn, cfg)
*/
package cliparse
