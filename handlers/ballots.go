// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/voting"
)

type BallotHandler struct {
	svc *voting.Service
	cfg cliparse.Config
}

func NewBallotHandler(db *sql.DB, cfg cliparse.Config) *BallotHandler {
	svc := voting.NewService(
		voting.NewSQLBallotStore(db),
		voting.NewSQLEligibilityStore(db),
		voting.NewSQLVoteStore(db),
	)
	return &BallotHandler{svc: svc, cfg: cfg}
}

// votingError maps a voting error kind onto an HTTP status. The detail
// message passes through so clients see which guard rejected them.
func votingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, voting.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, voting.ErrInvalidInput):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, voting.ErrInvalidState):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, voting.ErrForbidden):
		middleware.ErrorResponse(w, http.StatusForbidden, err.Error())
	case errors.Is(err, voting.ErrConflict):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	default:
		slog.Error("voting operation failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}

// CreateBallot handles POST /ballots
func (h *BallotHandler) CreateBallot(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	// Resolve the voting window: start defaults to now, end to
	// start + duration_hours (24h when unset).
	start := time.Now().UTC()
	if req.StartTime != nil {
		start = req.StartTime.UTC()
	}
	duration := 24 * time.Hour
	if req.DurationHours > 0 {
		duration = time.Duration(req.DurationHours) * time.Hour
	}
	end := start.Add(duration)
	if req.EndTime != nil {
		end = req.EndTime.UTC()
	}

	ballot, err := h.svc.CreateBallot(req.Title, req.Description, req.Options, start, end)
	if err != nil {
		votingError(w, err)
		return
	}

	// The admin key is derived from the ballot ID and returned exactly once
	adminKey := auth.GenerateAdminKey(ballot.ID, h.cfg.AdminKeySalt)

	slog.Info("ballot created", "ballot_id", ballot.ID, "title", ballot.Title)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateBallotResponse{
		Ballot:   *ballot,
		AdminKey: adminKey,
	})
}

// ListBallots handles GET /ballots
func (h *BallotHandler) ListBallots(w http.ResponseWriter, r *http.Request) {
	ballots, err := h.svc.ListBallots()
	if err != nil {
		votingError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, ballots)
}

// GetBallot handles GET /ballots/:id
func (h *BallotHandler) GetBallot(w http.ResponseWriter, r *http.Request) {
	ballotID := r.PathValue("id")
	if ballotID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ballot_id is required")
		return
	}

	ballot, err := h.svc.GetBallot(ballotID)
	if err != nil {
		votingError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, ballot)
}

// CloseBallot handles POST /ballots/:id/close
func (h *BallotHandler) CloseBallot(w http.ResponseWriter, r *http.Request) {
	ballotID := r.PathValue("id")
	if ballotID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ballot_id is required")
		return
	}

	// Validate admin key
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(ballotID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	if err := h.svc.CloseBallot(ballotID); err != nil {
		votingError(w, err)
		return
	}

	slog.Info("ballot closed", "ballot_id", ballotID)

	middleware.JSONResponse(w, http.StatusOK, models.CloseBallotResponse{
		BallotID: ballotID,
		Message:  "ballot closed",
	})
}

// RegisterVoter handles POST /ballots/:id/voters
func (h *BallotHandler) RegisterVoter(w http.ResponseWriter, r *http.Request) {
	ballotID := r.PathValue("id")
	if ballotID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ballot_id is required")
		return
	}

	// Validate admin key
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(ballotID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	var req models.RegisterVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.VoterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter_id is required")
		return
	}

	if err := h.svc.RegisterVoter(req.VoterID, ballotID); err != nil {
		votingError(w, err)
		return
	}

	slog.Info("voter registered", "ballot_id", ballotID, "voter_id", req.VoterID)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterVoterResponse{
		VoterID:  req.VoterID,
		BallotID: ballotID,
		Message:  "voter registered",
	})
}

// CastVote handles POST /ballots/:id/votes
func (h *BallotHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	ballotID := r.PathValue("id")
	if ballotID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ballot_id is required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.VoterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter_id is required")
		return
	}
	if req.Choice == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "choice is required")
		return
	}

	vote, err := h.svc.CastVote(ballotID, req.VoterID, req.Choice)
	if err != nil {
		votingError(w, err)
		return
	}

	// Log a salted hash of the client address, never the raw IP
	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.VoterHashSalt)
	slog.Info("vote cast", "ballot_id", ballotID, "vote_id", vote.ID, "ip_hash", ipHash)

	middleware.JSONResponse(w, http.StatusCreated, vote)
}

// GetTally handles GET /ballots/:id/tally
func (h *BallotHandler) GetTally(w http.ResponseWriter, r *http.Request) {
	ballotID := r.PathValue("id")
	if ballotID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ballot_id is required")
		return
	}

	summary, err := h.svc.Tally(ballotID)
	if err != nil {
		votingError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, summary)
}

// ExportBallot handles GET /ballots/:id/export
func (h *BallotHandler) ExportBallot(w http.ResponseWriter, r *http.Request) {
	ballotID := r.PathValue("id")
	if ballotID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ballot_id is required")
		return
	}

	// Validate admin key
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(ballotID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = models.FormatJSON
	}

	data, err := h.svc.Export(ballotID, format)
	if err != nil {
		votingError(w, err)
		return
	}

	contentType := "application/json"
	if format == models.FormatCSV {
		contentType = "text/csv"
	}
	filename := "ballot_" + ballotID + "." + format

	slog.Info("ballot exported", "ballot_id", ballotID, "format", format)

	middleware.AttachmentResponse(w, contentType, filename, data)
}

// VerifyBallot handles GET /ballots/:id/verify
func (h *BallotHandler) VerifyBallot(w http.ResponseWriter, r *http.Request) {
	ballotID := r.PathValue("id")
	if ballotID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ballot_id is required")
		return
	}

	// Validate admin key
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(ballotID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	report, err := h.svc.VerifyAll(ballotID)
	if err != nil {
		votingError(w, err)
		return
	}

	if !report.Valid {
		slog.Warn("ballot verification found invalid votes",
			"ballot_id", ballotID, "invalid", len(report.Invalid))
	}

	middleware.JSONResponse(w, http.StatusOK, report)
}
