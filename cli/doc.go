// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cli implements the console subcommands of the ballotbox binary.

With a known subcommand as the first argument the binary operates the
voting core directly against the database instead of serving HTTP:

	ballotbox create <title> --options a,b[,...] [--description D]
	          [--start RFC3339] [--end RFC3339] [--duration-hours 24]
	ballotbox register <voter_id> <ballot_id>
	ballotbox vote <ballot_id> <voter_id> <choice>
	ballotbox tally <ballot_id>
	ballotbox export <ballot_id> [--format json|csv] [--output FILE]
	ballotbox close <ballot_id>
	ballotbox list
	ballotbox verify <ballot_id>

Every command accepts the shared store flags -d/--database-url and
-t/--database-type, with DATABASE_URL and DATABASE_TYPE as environment
fallbacks, resolved exactly like the server resolves them.

Positional arguments come first, flags after; the flag package stops
parsing at the first positional argument.

# Exit Codes

0 on success, 1 on a runtime failure (including a verify run that finds
invalid votes), 2 on a usage error.
*/
package cli
