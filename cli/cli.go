// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cli

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/voting"
)

// commands maps each subcommand to its implementation
var commands = map[string]func(args []string) int{
	"create":   runCreate,
	"register": runRegister,
	"vote":     runVote,
	"tally":    runTally,
	"export":   runExport,
	"close":    runClose,
	"list":     runList,
	"verify":   runVerify,
}

// IsCommand reports whether name is a known console subcommand.
func IsCommand(name string) bool {
	_, ok := commands[name]
	return ok
}

// Run executes a console subcommand and returns its exit code: 0 on
// success, 1 on a runtime failure, 2 on a usage error.
func Run(command string, args []string) int {
	fn, ok := commands[command]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", command)
		return 2
	}
	return fn(args)
}

// openService resolves the store flags and wires a voting service over the
// configured backend.
func openService(sc *cliparse.StoreConfig) (*voting.Service, *sql.DB, error) {
	if err := sc.Resolve(); err != nil {
		return nil, nil, err
	}
	conn, err := db.Open(sc.DatabaseType, sc.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, nil, err
	}
	if err := db.CreateSchema(conn, sc.DatabaseType); err != nil {
		conn.Close()
		return nil, nil, err
	}
	svc := voting.NewService(
		voting.NewSQLBallotStore(conn),
		voting.NewSQLEligibilityStore(conn),
		voting.NewSQLVoteStore(conn),
	)
	return svc, conn, nil
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fail(err)
	}
	return 0
}

// usage prints a usage line and returns the usage exit code. The flag
// package stops at the first positional argument, so every command takes
// its positionals first and flags after.
func usage(line string) int {
	fmt.Fprintln(os.Stderr, "Usage: ballotbox "+line)
	return 2
}

func runCreate(args []string) int {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	store := cliparse.StoreFlags(fs)
	optionsCSV := fs.String("options", "", "Comma-separated list of choices")
	description := fs.String("description", "", "Ballot description")
	start := fs.String("start", "", "Voting window start (RFC3339, default now)")
	end := fs.String("end", "", "Voting window end (RFC3339)")
	durationHours := fs.Int("duration-hours", 24, "Window length when --end is not given")

	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		return usage("create <title> --options a,b[,...]")
	}
	title := args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	options := []string{}
	for _, opt := range strings.Split(*optionsCSV, ",") {
		if opt = strings.TrimSpace(opt); opt != "" {
			options = append(options, opt)
		}
	}

	startTime := time.Now().UTC()
	if *start != "" {
		var err error
		if startTime, err = time.Parse(time.RFC3339, *start); err != nil {
			fmt.Fprintln(os.Stderr, "Invalid --start:", err)
			return 2
		}
	}
	endTime := startTime.Add(time.Duration(*durationHours) * time.Hour)
	if *end != "" {
		var err error
		if endTime, err = time.Parse(time.RFC3339, *end); err != nil {
			fmt.Fprintln(os.Stderr, "Invalid --end:", err)
			return 2
		}
	}

	svc, conn, err := openService(store)
	if err != nil {
		return fail(err)
	}
	defer conn.Close()

	ballot, err := svc.CreateBallot(title, *description, options, startTime, endTime)
	if err != nil {
		return fail(err)
	}
	return printJSON(ballot)
}

func runRegister(args []string) int {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	store := cliparse.StoreFlags(fs)

	if len(args) < 2 || strings.HasPrefix(args[0], "-") || strings.HasPrefix(args[1], "-") {
		return usage("register <voter_id> <ballot_id>")
	}
	voterID, ballotID := args[0], args[1]
	if err := fs.Parse(args[2:]); err != nil {
		return 2
	}

	svc, conn, err := openService(store)
	if err != nil {
		return fail(err)
	}
	defer conn.Close()

	if err := svc.RegisterVoter(voterID, ballotID); err != nil {
		return fail(err)
	}
	fmt.Printf("Registered voter %s for ballot %s\n", voterID, ballotID)
	return 0
}

func runVote(args []string) int {
	fs := flag.NewFlagSet("vote", flag.ContinueOnError)
	store := cliparse.StoreFlags(fs)

	if len(args) < 3 || strings.HasPrefix(args[0], "-") {
		return usage("vote <ballot_id> <voter_id> <choice>")
	}
	ballotID, voterID, choice := args[0], args[1], args[2]
	if err := fs.Parse(args[3:]); err != nil {
		return 2
	}

	svc, conn, err := openService(store)
	if err != nil {
		return fail(err)
	}
	defer conn.Close()

	vote, err := svc.CastVote(ballotID, voterID, choice)
	if err != nil {
		return fail(err)
	}
	return printJSON(vote)
}

func runTally(args []string) int {
	fs := flag.NewFlagSet("tally", flag.ContinueOnError)
	store := cliparse.StoreFlags(fs)

	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		return usage("tally <ballot_id>")
	}
	ballotID := args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	svc, conn, err := openService(store)
	if err != nil {
		return fail(err)
	}
	defer conn.Close()

	summary, err := svc.Tally(ballotID)
	if err != nil {
		return fail(err)
	}
	return printJSON(summary)
}

func runExport(args []string) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	store := cliparse.StoreFlags(fs)
	format := fs.String("format", models.FormatJSON, "Export format (json or csv)")
	output := fs.String("output", "", "Write to a file instead of stdout")

	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		return usage("export <ballot_id> [--format json|csv] [--output FILE]")
	}
	ballotID := args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	svc, conn, err := openService(store)
	if err != nil {
		return fail(err)
	}
	defer conn.Close()

	data, err := svc.Export(ballotID, *format)
	if err != nil {
		return fail(err)
	}

	if *output == "" {
		os.Stdout.Write(data)
		return 0
	}
	if err := os.WriteFile(*output, data, 0644); err != nil {
		return fail(err)
	}
	fmt.Printf("Exported ballot %s to %s\n", ballotID, *output)
	return 0
}

func runClose(args []string) int {
	fs := flag.NewFlagSet("close", flag.ContinueOnError)
	store := cliparse.StoreFlags(fs)

	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		return usage("close <ballot_id>")
	}
	ballotID := args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	svc, conn, err := openService(store)
	if err != nil {
		return fail(err)
	}
	defer conn.Close()

	if _, err := svc.GetBallot(ballotID); err != nil {
		return fail(err)
	}
	if err := svc.CloseBallot(ballotID); err != nil {
		return fail(err)
	}
	fmt.Printf("Ballot %s closed\n", ballotID)
	return 0
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	store := cliparse.StoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	svc, conn, err := openService(store)
	if err != nil {
		return fail(err)
	}
	defer conn.Close()

	ballots, err := svc.ListBallots()
	if err != nil {
		return fail(err)
	}
	if len(ballots) == 0 {
		fmt.Println("No ballots found.")
		return 0
	}

	now := time.Now().UTC()
	for _, b := range ballots {
		fmt.Printf("%s  %-8s  %s\n", b.ID, ballotState(b, now), b.Title)
	}
	return 0
}

// ballotState summarizes where a ballot sits in its lifecycle. "ended"
// means the window has passed without an administrative close.
func ballotState(b models.Ballot, now time.Time) string {
	switch {
	case !b.IsActive:
		return "closed"
	case now.Before(b.StartTime):
		return "upcoming"
	case now.After(b.EndTime):
		return "ended"
	default:
		return "open"
	}
}

func runVerify(args []string) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	store := cliparse.StoreFlags(fs)

	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		return usage("verify <ballot_id>")
	}
	ballotID := args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	svc, conn, err := openService(store)
	if err != nil {
		return fail(err)
	}
	defer conn.Close()

	report, err := svc.VerifyAll(ballotID)
	if err != nil {
		return fail(err)
	}
	if rc := printJSON(report); rc != 0 {
		return rc
	}
	if !report.Valid {
		return 1
	}
	return 0
}
