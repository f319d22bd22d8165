package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
)

// DefaultSQLiteDSN enables WAL and a busy timeout so concurrent writers
// queue instead of failing with SQLITE_BUSY.
const DefaultSQLiteDSN = "file:ballotbox.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// DefaultSweepSchedule is the cron spec for the permit expiry sweep.
const DefaultSweepSchedule = "@hourly"

type Config struct {
	Port                int
	DatabaseURL         string
	DatabaseType        string
	AdminKeySalt        string
	VoterHashSalt       string
	PermitSweepSchedule string
}

// StoreConfig is the database half of Config, shared with the CLI
// subcommands so `ballotbox tally -d ...` resolves its store the same
// way the server does.
type StoreConfig struct {
	DatabaseURL  string
	DatabaseType string
}

// StoreFlags registers the database flags on fs and returns the struct
// they populate. Call Resolve after fs.Parse.
func StoreFlags(fs *flag.FlagSet) *StoreConfig {
	var sc StoreConfig
	fs.StringVar(&sc.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&sc.DatabaseURL, "database-url", "", "Database URL")
	fs.StringVar(&sc.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&sc.DatabaseType, "database-type", "", "Database type (sqlite or postgres)")
	return &sc
}

// Resolve applies environment fallbacks and defaults. sqlite gets a
// local-file DSN when no URL is given; postgres has no sane default, so
// a missing URL is an error.
func (sc *StoreConfig) Resolve() error {
	if sc.DatabaseType == "" {
		sc.DatabaseType = os.Getenv("DATABASE_TYPE")
		if sc.DatabaseType == "" {
			sc.DatabaseType = "sqlite"
		}
	}
	if sc.DatabaseURL == "" {
		sc.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if sc.DatabaseURL == "" {
		if sc.DatabaseType != "sqlite" {
			return errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		sc.DatabaseURL = DefaultSQLiteDSN
	}
	return nil
}

// ParseFlags validates the server flags and fills in environment fallbacks
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("ballotbox", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.IntVar(&cfg.Port, "port", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseURL, "database-url", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.DatabaseType, "database-type", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.PermitSweepSchedule, "permit-sweep", "", "Permit expiry sweep schedule (cron spec, empty disables)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.StringVar(&cfg.VoterHashSalt, "voter-salt", "", "Voter hash salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3324 // default
		}
	}

	store := StoreConfig{DatabaseURL: cfg.DatabaseURL, DatabaseType: cfg.DatabaseType}
	if err := store.Resolve(); err != nil {
		return Config{}, err
	}
	cfg.DatabaseURL = store.DatabaseURL
	cfg.DatabaseType = store.DatabaseType

	// An explicit --permit-sweep "" disables the sweep, so "unset" has to
	// be told apart from "empty".
	sweepSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "permit-sweep" {
			sweepSet = true
		}
	})
	if !sweepSet {
		if v, ok := os.LookupEnv("PERMIT_SWEEP_SCHEDULE"); ok {
			cfg.PermitSweepSchedule = v
		} else {
			cfg.PermitSweepSchedule = DefaultSweepSchedule
		}
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.VoterHashSalt == "" {
		cfg.VoterHashSalt = os.Getenv("VOTER_HASH_SALT")
	}
	if cfg.VoterHashSalt == "" {
		return Config{}, errors.New("VOTER_HASH_SALT required")
	}

	return cfg, nil
}
