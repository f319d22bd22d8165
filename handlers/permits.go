// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
)

// DefaultValidityDays is how long an approved permit stays valid when the
// approval does not say otherwise.
const DefaultValidityDays = 365

type PermitHandler struct {
	db *sql.DB
}

func NewPermitHandler(db *sql.DB) *PermitHandler {
	return &PermitHandler{db: db}
}

// newID returns an opaque identifier: a dash-stripped UUID prefix. Short
// enough to quote in a URL, long enough not to collide at this scale.
func newID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

type rowScanner interface {
	Scan(dest ...any) error
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func scanPermit(s rowScanner) (*models.Permit, error) {
	var p models.Permit
	var description, issuedAt, expiresAt sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(&p.ID, &p.PermitType, &p.Applicant, &p.Address, &description,
		&p.Status, &issuedAt, &expiresAt, &createdAt, &updatedAt, &p.Notes)
	if err != nil {
		return nil, err
	}

	p.Description = description.String
	if issuedAt.Valid {
		t, err := db.ParseTime(issuedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse issued_at: %w", err)
		}
		p.IssuedAt = &t
	}
	if expiresAt.Valid {
		t, err := db.ParseTime(expiresAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse expires_at: %w", err)
		}
		p.ExpiresAt = &t
	}
	if p.CreatedAt, err = db.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if p.UpdatedAt, err = db.ParseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &p, nil
}

func (h *PermitHandler) fetchPermit(permitID string) (*models.Permit, error) {
	row := h.db.QueryRow(`
		SELECT id, permit_type, applicant, address, description, status,
		       issued_at, expires_at, created_at, updated_at, notes
		FROM permits
		WHERE id = $1
	`, permitID)
	return scanPermit(row)
}

// logPermitEvent appends one audit row. Every permit state change calls
// this inside the same transaction as the change itself.
func logPermitEvent(ex execer, permitID, eventType, actor, message string) error {
	_, err := ex.Exec(`
		INSERT INTO permit_events (id, permit_id, event_type, actor, message, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, newID(8), permitID, eventType, actor, message, db.FormatTime(time.Now()))
	return err
}

// ExpireOverduePermits flips every approved permit past its expiry date to
// expired, logging an auto_expired event per permit. Shared by the sweep
// endpoint and the cron schedule. Returns the affected permit IDs.
func ExpireOverduePermits(conn *sql.DB) ([]string, error) {
	now := db.FormatTime(time.Now())

	rows, err := conn.Query(`
		SELECT id FROM permits
		WHERE status = $1 AND expires_at IS NOT NULL AND expires_at < $2
	`, models.PermitStatusApproved, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue permits: %w", err)
	}
	defer rows.Close()

	expired := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan permit id: %w", err)
		}
		expired = append(expired, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return expired, nil
	}

	tx, err := conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin sweep transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range expired {
		if _, err := tx.Exec(`
			UPDATE permits SET status = $1, updated_at = $2 WHERE id = $3
		`, models.PermitStatusExpired, now, id); err != nil {
			return nil, fmt.Errorf("failed to expire permit %s: %w", id, err)
		}
		if err := logPermitEvent(tx, id, models.PermitEventAutoExpired, "system", "Auto-expired by system sweep"); err != nil {
			return nil, fmt.Errorf("failed to log sweep event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sweep: %w", err)
	}
	return expired, nil
}

// ApplyPermit handles POST /permits
func (h *PermitHandler) ApplyPermit(w http.ResponseWriter, r *http.Request) {
	var req models.ApplyPermitRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Only the type is validated here. Missing applicant or address is
	// legal at application time and surfaces through the compliance check.
	known := false
	for _, t := range models.PermitTypes {
		if t == req.PermitType {
			known = true
			break
		}
	}
	if !known {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("Unknown permit type '%s'", req.PermitType))
		return
	}

	permitID := newID(10)
	now := db.FormatTime(time.Now())

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO permits (id, permit_type, applicant, address, description, status, issued_at, expires_at, created_at, updated_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, NULL, NULL, $7, $8, '')
	`, permitID, req.PermitType, req.Applicant, req.Address, req.Description,
		models.PermitStatusPending, now, now)

	if err != nil {
		slog.Error("failed to insert permit", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create permit")
		return
	}

	message := fmt.Sprintf("Applied for %s permit", req.PermitType)
	if err := logPermitEvent(tx, permitID, models.PermitEventApplied, req.Applicant, message); err != nil {
		slog.Error("failed to log permit event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create permit")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create permit")
		return
	}

	slog.Info("permit application received", "permit_id", permitID, "type", req.PermitType)

	permit, err := h.fetchPermit(permitID)
	if err != nil {
		slog.Error("failed to query permit", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, permit)
}

// ListPermits handles GET /permits
func (h *PermitHandler) ListPermits(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	query := `
		SELECT id, permit_type, applicant, address, description, status,
		       issued_at, expires_at, created_at, updated_at, notes
		FROM permits
		ORDER BY created_at DESC
	`
	args := []any{}
	if status != "" {
		query = `
			SELECT id, permit_type, applicant, address, description, status,
			       issued_at, expires_at, created_at, updated_at, notes
			FROM permits
			WHERE status = $1
			ORDER BY created_at DESC
		`
		args = append(args, status)
	}

	rows, err := h.db.Query(query, args...)
	if err != nil {
		slog.Error("failed to query permits", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	permits := []models.Permit{}
	for rows.Next() {
		p, err := scanPermit(rows)
		if err != nil {
			slog.Error("failed to scan permit", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		permits = append(permits, *p)
	}

	middleware.JSONResponse(w, http.StatusOK, permits)
}

// SearchPermits handles GET /permits/search
func (h *PermitHandler) SearchPermits(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "address query parameter is required")
		return
	}

	rows, err := h.db.Query(`
		SELECT id, permit_type, applicant, address, description, status,
		       issued_at, expires_at, created_at, updated_at, notes
		FROM permits
		WHERE address LIKE $1
		ORDER BY created_at DESC
	`, "%"+address+"%")
	if err != nil {
		slog.Error("failed to search permits", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	permits := []models.Permit{}
	for rows.Next() {
		p, err := scanPermit(rows)
		if err != nil {
			slog.Error("failed to scan permit", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		permits = append(permits, *p)
	}

	middleware.JSONResponse(w, http.StatusOK, permits)
}

// ExportPermits handles GET /permits/export
func (h *PermitHandler) ExportPermits(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	// Oldest first, unlike the JSON listings: the CSV reads as a ledger.
	query := `
		SELECT id, permit_type, applicant, address, description, status,
		       issued_at, expires_at, created_at, updated_at, notes
		FROM permits
		ORDER BY created_at
	`
	args := []any{}
	if status != "" {
		query = `
			SELECT id, permit_type, applicant, address, description, status,
			       issued_at, expires_at, created_at, updated_at, notes
			FROM permits
			WHERE status = $1
			ORDER BY created_at
		`
		args = append(args, status)
	}

	rows, err := h.db.Query(query, args...)
	if err != nil {
		slog.Error("failed to query permits", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	records := [][]string{{
		"id", "permit_type", "applicant", "address", "description",
		"status", "issued_at", "expires_at", "created_at", "updated_at", "notes",
	}}
	for rows.Next() {
		var id, permitType, applicant, address, permitStatus, createdAt, updatedAt, notes string
		var description, issuedAt, expiresAt sql.NullString
		if err := rows.Scan(&id, &permitType, &applicant, &address, &description,
			&permitStatus, &issuedAt, &expiresAt, &createdAt, &updatedAt, &notes); err != nil {
			slog.Error("failed to scan permit", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		records = append(records, []string{
			id, permitType, applicant, address, description.String,
			permitStatus, issuedAt.String, expiresAt.String, createdAt, updatedAt, notes,
		})
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(records); err != nil {
		slog.Error("failed to write permit CSV", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to export permits")
		return
	}

	slog.Info("permits exported", "rows", len(records)-1, "status_filter", status)

	middleware.AttachmentResponse(w, "text/csv", "permits.csv", buf.Bytes())
}

// SweepPermits handles POST /permits/sweep
func (h *PermitHandler) SweepPermits(w http.ResponseWriter, r *http.Request) {
	expired, err := ExpireOverduePermits(h.db)
	if err != nil {
		slog.Error("permit sweep failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Sweep failed")
		return
	}

	slog.Info("permit sweep completed", "expired", len(expired))

	middleware.JSONResponse(w, http.StatusOK, models.SweepResponse{
		ExpiredIDs: expired,
		Count:      len(expired),
	})
}

// GetPermit handles GET /permits/:id
func (h *PermitHandler) GetPermit(w http.ResponseWriter, r *http.Request) {
	permitID := r.PathValue("id")
	if permitID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "permit_id is required")
		return
	}

	permit, err := h.fetchPermit(permitID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Permit not found")
		return
	}
	if err != nil {
		slog.Error("failed to query permit", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, permit)
}

// ApprovePermit handles POST /permits/:id/approve
func (h *PermitHandler) ApprovePermit(w http.ResponseWriter, r *http.Request) {
	permitID := r.PathValue("id")
	if permitID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "permit_id is required")
		return
	}

	// Body is optional; every field has a default
	var req models.ApprovePermitRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Actor == "" {
		req.Actor = "admin"
	}
	if req.ValidityDays <= 0 {
		req.ValidityDays = DefaultValidityDays
	}

	var status string
	err := h.db.QueryRow("SELECT status FROM permits WHERE id = $1", permitID).Scan(&status)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Permit not found")
		return
	}
	if err != nil {
		slog.Error("failed to query permit", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.PermitStatusPending {
		middleware.ErrorResponse(w, http.StatusConflict,
			fmt.Sprintf("Permit is '%s', not pending", status))
		return
	}

	now := time.Now().UTC()
	issued := db.FormatTime(now)
	expires := db.FormatTime(now.AddDate(0, 0, req.ValidityDays))

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE permits
		SET status = $1, issued_at = $2, expires_at = $3, updated_at = $4, notes = $5
		WHERE id = $6
	`, models.PermitStatusApproved, issued, expires, issued, req.Notes, permitID)

	if err != nil {
		slog.Error("failed to approve permit", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to approve permit")
		return
	}

	message := req.Notes
	if message == "" {
		message = "Permit approved"
	}
	if err := logPermitEvent(tx, permitID, models.PermitEventApproved, req.Actor, message); err != nil {
		slog.Error("failed to log permit event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to approve permit")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to approve permit")
		return
	}

	slog.Info("permit approved", "permit_id", permitID, "actor", req.Actor, "expires_at", expires)

	permit, err := h.fetchPermit(permitID)
	if err != nil {
		slog.Error("failed to query permit", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, permit)
}

// DenyPermit handles POST /permits/:id/deny
func (h *PermitHandler) DenyPermit(w http.ResponseWriter, r *http.Request) {
	permitID := r.PathValue("id")
	if permitID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "permit_id is required")
		return
	}

	var req models.DenyPermitRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Reason == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "reason is required")
		return
	}
	if req.Actor == "" {
		req.Actor = "admin"
	}

	var status string
	err := h.db.QueryRow("SELECT status FROM permits WHERE id = $1", permitID).Scan(&status)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Permit not found")
		return
	}
	if err != nil {
		slog.Error("failed to query permit", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.PermitStatusPending {
		middleware.ErrorResponse(w, http.StatusConflict,
			fmt.Sprintf("Permit cannot be denied (status: %s)", status))
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE permits SET status = $1, updated_at = $2, notes = $3 WHERE id = $4
	`, models.PermitStatusDenied, db.FormatTime(time.Now()), req.Reason, permitID)

	if err != nil {
		slog.Error("failed to deny permit", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to deny permit")
		return
	}

	if err := logPermitEvent(tx, permitID, models.PermitEventDenied, req.Actor, req.Reason); err != nil {
		slog.Error("failed to log permit event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to deny permit")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to deny permit")
		return
	}

	slog.Info("permit denied", "permit_id", permitID, "actor", req.Actor)

	permit, err := h.fetchPermit(permitID)
	if err != nil {
		slog.Error("failed to query permit", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, permit)
}

// ExpirePermit handles POST /permits/:id/expire
// Manual expiry has no status precondition; an inspector can expire a
// permit in any state.
func (h *PermitHandler) ExpirePermit(w http.ResponseWriter, r *http.Request) {
	permitID := r.PathValue("id")
	if permitID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "permit_id is required")
		return
	}

	var req models.ExpirePermitRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Actor == "" {
		req.Actor = "system"
	}

	var exists bool
	err := h.db.QueryRow("SELECT EXISTS(SELECT 1 FROM permits WHERE id = $1)", permitID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query permit", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Permit not found")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE permits SET status = $1, updated_at = $2 WHERE id = $3
	`, models.PermitStatusExpired, db.FormatTime(time.Now()), permitID)

	if err != nil {
		slog.Error("failed to expire permit", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to expire permit")
		return
	}

	if err := logPermitEvent(tx, permitID, models.PermitEventExpired, req.Actor, "Permit expired"); err != nil {
		slog.Error("failed to log permit event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to expire permit")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to expire permit")
		return
	}

	slog.Info("permit expired", "permit_id", permitID, "actor", req.Actor)

	permit, err := h.fetchPermit(permitID)
	if err != nil {
		slog.Error("failed to query permit", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, permit)
}

// GetCompliance handles GET /permits/:id/compliance
func (h *PermitHandler) GetCompliance(w http.ResponseWriter, r *http.Request) {
	permitID := r.PathValue("id")
	if permitID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "permit_id is required")
		return
	}

	permit, err := h.fetchPermit(permitID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Permit not found")
		return
	}
	if err != nil {
		slog.Error("failed to query permit", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := time.Now().UTC()
	issues := []string{}

	if strings.TrimSpace(permit.Address) == "" {
		issues = append(issues, "MISSING_ADDRESS: Permit has no address.")
	}
	if strings.TrimSpace(permit.Applicant) == "" {
		issues = append(issues, "MISSING_APPLICANT: Permit has no applicant name.")
	}
	switch permit.Status {
	case models.PermitStatusPending, models.PermitStatusApproved,
		models.PermitStatusDenied, models.PermitStatusExpired:
	default:
		issues = append(issues, fmt.Sprintf("INVALID_STATUS: '%s' is not a valid status.", permit.Status))
	}
	if permit.Status == models.PermitStatusApproved {
		if permit.IssuedAt == nil {
			issues = append(issues, "MISSING_ISSUED_AT: Approved permit has no issue date.")
		}
		if permit.ExpiresAt == nil {
			issues = append(issues, "MISSING_EXPIRES_AT: Approved permit has no expiry date.")
		} else if now.After(*permit.ExpiresAt) {
			issues = append(issues, "OVERDUE_EXPIRY: Permit is past expiry but still marked approved.")
		}
	}
	known := false
	for _, t := range models.PermitTypes {
		if t == permit.PermitType {
			known = true
			break
		}
	}
	if !known {
		issues = append(issues, fmt.Sprintf("UNKNOWN_TYPE: '%s' is not a recognised permit type.", permit.PermitType))
	}

	middleware.JSONResponse(w, http.StatusOK, models.ComplianceReport{
		PermitID:  permitID,
		Status:    permit.Status,
		Compliant: len(issues) == 0,
		Issues:    issues,
		CheckedAt: now,
	})
}

// GetReminder handles GET /permits/:id/reminder
func (h *PermitHandler) GetReminder(w http.ResponseWriter, r *http.Request) {
	permitID := r.PathValue("id")
	if permitID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "permit_id is required")
		return
	}

	daysBefore := 30
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		parsed, err := strconv.Atoi(daysParam)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "invalid days parameter")
			return
		}
		daysBefore = parsed
	}

	permit, err := h.fetchPermit(permitID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Permit not found")
		return
	}
	if err != nil {
		slog.Error("failed to query permit", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Only approved permits with a deadline generate reminders
	if permit.Status != models.PermitStatusApproved || permit.ExpiresAt == nil {
		middleware.JSONResponse(w, http.StatusOK, models.ReminderResponse{Due: false})
		return
	}

	// Whole days until expiry, floored so "23 hours past due" counts as
	// day -1 and stays out of the window.
	days := int(math.Floor(permit.ExpiresAt.Sub(time.Now().UTC()).Hours() / 24))
	if days < 0 || days > daysBefore {
		middleware.JSONResponse(w, http.StatusOK, models.ReminderResponse{Due: false})
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ReminderResponse{
		Due: true,
		Reminder: &models.PermitReminder{
			PermitID:      permitID,
			Applicant:     permit.Applicant,
			Address:       permit.Address,
			ExpiresAt:     *permit.ExpiresAt,
			DaysRemaining: days,
			Message: fmt.Sprintf("REMINDER: Your %s permit at %s expires in %d day(s). Please renew.",
				permit.PermitType, permit.Address, days),
		},
	})
}

// ListEvents handles GET /permits/:id/events
func (h *PermitHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	permitID := r.PathValue("id")
	if permitID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "permit_id is required")
		return
	}

	var exists bool
	err := h.db.QueryRow("SELECT EXISTS(SELECT 1 FROM permits WHERE id = $1)", permitID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query permit", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Permit not found")
		return
	}

	rows, err := h.db.Query(`
		SELECT id, permit_id, event_type, actor, message, occurred_at
		FROM permit_events
		WHERE permit_id = $1
		ORDER BY occurred_at
	`, permitID)
	if err != nil {
		slog.Error("failed to query permit events", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	events := []models.PermitEvent{}
	for rows.Next() {
		var e models.PermitEvent
		var actor, message sql.NullString
		var occurredAt string
		if err := rows.Scan(&e.ID, &e.PermitID, &e.EventType, &actor, &message, &occurredAt); err != nil {
			slog.Error("failed to scan permit event", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		e.Actor = actor.String
		e.Message = message.String
		if e.OccurredAt, err = db.ParseTime(occurredAt); err != nil {
			slog.Error("failed to parse event timestamp", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		events = append(events, e)
	}

	middleware.JSONResponse(w, http.StatusOK, events)
}
