// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/handlers"
	"github.com/danielhkuo/ballotbox/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	ballotHandler := handlers.NewBallotHandler(db, cfg)
	permitHandler := handlers.NewPermitHandler(db)
	recordsHandler := handlers.NewRecordsHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Ballot management and voting (close, register, export, verify need X-Admin-Key)
	mux.HandleFunc("POST /ballots", middleware.WithLogging(ballotHandler.CreateBallot))
	mux.HandleFunc("GET /ballots", middleware.WithLogging(ballotHandler.ListBallots))
	mux.HandleFunc("GET /ballots/{id}", middleware.WithLogging(ballotHandler.GetBallot))
	mux.HandleFunc("POST /ballots/{id}/close", middleware.WithLogging(ballotHandler.CloseBallot))
	mux.HandleFunc("POST /ballots/{id}/voters", middleware.WithLogging(ballotHandler.RegisterVoter))
	mux.HandleFunc("POST /ballots/{id}/votes", middleware.WithLogging(ballotHandler.CastVote))
	mux.HandleFunc("GET /ballots/{id}/tally", middleware.WithLogging(ballotHandler.GetTally))
	mux.HandleFunc("GET /ballots/{id}/export", middleware.WithLogging(ballotHandler.ExportBallot))
	mux.HandleFunc("GET /ballots/{id}/verify", middleware.WithLogging(ballotHandler.VerifyBallot))

	// Permit lifecycle
	mux.HandleFunc("POST /permits", middleware.WithLogging(permitHandler.ApplyPermit))
	mux.HandleFunc("GET /permits", middleware.WithLogging(permitHandler.ListPermits))
	mux.HandleFunc("GET /permits/search", middleware.WithLogging(permitHandler.SearchPermits))
	mux.HandleFunc("GET /permits/export", middleware.WithLogging(permitHandler.ExportPermits))
	mux.HandleFunc("POST /permits/sweep", middleware.WithLogging(permitHandler.SweepPermits))
	mux.HandleFunc("GET /permits/{id}", middleware.WithLogging(permitHandler.GetPermit))
	mux.HandleFunc("POST /permits/{id}/approve", middleware.WithLogging(permitHandler.ApprovePermit))
	mux.HandleFunc("POST /permits/{id}/deny", middleware.WithLogging(permitHandler.DenyPermit))
	mux.HandleFunc("POST /permits/{id}/expire", middleware.WithLogging(permitHandler.ExpirePermit))
	mux.HandleFunc("GET /permits/{id}/compliance", middleware.WithLogging(permitHandler.GetCompliance))
	mux.HandleFunc("GET /permits/{id}/reminder", middleware.WithLogging(permitHandler.GetReminder))
	mux.HandleFunc("GET /permits/{id}/events", middleware.WithLogging(permitHandler.ListEvents))

	// Public records
	mux.HandleFunc("POST /documents", middleware.WithLogging(recordsHandler.CreateDocument))
	mux.HandleFunc("GET /documents", middleware.WithLogging(recordsHandler.ListDocuments))
	mux.HandleFunc("GET /documents/search", middleware.WithLogging(recordsHandler.SearchDocuments))
	mux.HandleFunc("GET /documents/bundle", middleware.WithLogging(recordsHandler.BundleDocuments))
	mux.HandleFunc("GET /documents/{id}", middleware.WithLogging(recordsHandler.GetDocument))
	mux.HandleFunc("PUT /documents/{id}", middleware.WithLogging(recordsHandler.UpdateDocument))
	mux.HandleFunc("GET /documents/{id}/revisions", middleware.WithLogging(recordsHandler.ListRevisions))
	mux.HandleFunc("POST /documents/{id}/publish", middleware.WithLogging(recordsHandler.PublishDocument))
	mux.HandleFunc("POST /documents/{id}/retract", middleware.WithLogging(recordsHandler.RetractDocument))

	// FOIA requests
	mux.HandleFunc("POST /foia", middleware.WithLogging(recordsHandler.SubmitFOIA))
	mux.HandleFunc("GET /foia", middleware.WithLogging(recordsHandler.ListFOIA))
	mux.HandleFunc("GET /foia/{id}", middleware.WithLogging(recordsHandler.GetFOIA))
	mux.HandleFunc("POST /foia/{id}/fulfill", middleware.WithLogging(recordsHandler.FulfillFOIA))
	mux.HandleFunc("POST /foia/{id}/status", middleware.WithLogging(recordsHandler.UpdateFOIAStatus))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ballotbox API v1"))
	})

	return mux
}
