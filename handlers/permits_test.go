// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/models"
)

// createTestPermit inserts a permit and returns its ID
func createTestPermit(t *testing.T, conn *sql.DB, permitType, applicant, address, status string) string {
	t.Helper()

	permitID := newID(10)
	now := db.FormatTime(time.Now())

	_, err := conn.Exec(`
		INSERT INTO permits (id, permit_type, applicant, address, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'Test permit', $5, $6, $7)
	`, permitID, permitType, applicant, address, status, now, now)
	if err != nil {
		t.Fatalf("Failed to create test permit: %v", err)
	}

	return permitID
}

func permitEvents(t *testing.T, conn *sql.DB, permitID string) []string {
	t.Helper()

	rows, err := conn.Query(`
		SELECT event_type FROM permit_events WHERE permit_id = $1 ORDER BY occurred_at
	`, permitID)
	if err != nil {
		t.Fatalf("Failed to query permit events: %v", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var et string
		if err := rows.Scan(&et); err != nil {
			t.Fatalf("Failed to scan event: %v", err)
		}
		types = append(types, et)
	}
	return types
}

func TestApplyPermit(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	handler := NewPermitHandler(conn)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, permit *models.Permit)
	}{
		{
			name: "valid application",
			requestBody: models.ApplyPermitRequest{
				PermitType:  "building",
				Applicant:   "Jane Contractor",
				Address:     "42 Main St",
				Description: "Deck extension",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, permit *models.Permit) {
				if len(permit.ID) != 10 {
					t.Errorf("Expected 10-char permit id, got %q", permit.ID)
				}
				if permit.Status != models.PermitStatusPending {
					t.Errorf("Expected status pending, got %q", permit.Status)
				}
				if permit.IssuedAt != nil || permit.ExpiresAt != nil {
					t.Error("Expected no issue/expiry dates on a fresh application")
				}

				events := permitEvents(t, conn, permit.ID)
				if len(events) != 1 || events[0] != models.PermitEventApplied {
					t.Errorf("Expected [applied] event trail, got %v", events)
				}
			},
		},
		{
			// Missing fields surface later through the compliance check,
			// not at application time
			name: "missing applicant accepted",
			requestBody: models.ApplyPermitRequest{
				PermitType: "electrical",
				Address:    "7 Side Ave",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "unknown permit type",
			requestBody: models.ApplyPermitRequest{
				PermitType: "time-travel",
				Applicant:  "Doc",
				Address:    "88 MPH Lane",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			requestBody:    "not json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body []byte
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, _ = json.Marshal(tt.requestBody)
			}

			req := httptest.NewRequest("POST", "/permits", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.ApplyPermit(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedStatus == http.StatusCreated && tt.checkResponse != nil {
				var permit models.Permit
				if err := json.NewDecoder(w.Body).Decode(&permit); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				tt.checkResponse(t, &permit)
			}
		})
	}
}

func TestListPermits(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	handler := NewPermitHandler(conn)

	first := createTestPermit(t, conn, "building", "Alice", "1 First St", "pending")
	second := createTestPermit(t, conn, "zoning", "Bob", "2 Second St", "approved")

	t.Run("all permits newest first", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/permits", nil)
		w := httptest.NewRecorder()

		handler.ListPermits(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var permits []models.Permit
		if err := json.NewDecoder(w.Body).Decode(&permits); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(permits) != 2 {
			t.Fatalf("Expected 2 permits, got %d", len(permits))
		}
		if permits[0].ID != second || permits[1].ID != first {
			t.Errorf("Expected newest first [%s %s], got [%s %s]", second, first, permits[0].ID, permits[1].ID)
		}
	})

	t.Run("status filter", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/permits?status=approved", nil)
		w := httptest.NewRecorder()

		handler.ListPermits(w, req)

		var permits []models.Permit
		if err := json.NewDecoder(w.Body).Decode(&permits); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(permits) != 1 || permits[0].ID != second {
			t.Errorf("Expected only the approved permit, got %+v", permits)
		}
	})

	t.Run("empty filter result", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/permits?status=expired", nil)
		w := httptest.NewRecorder()

		handler.ListPermits(w, req)

		if strings.TrimSpace(w.Body.String()) != "[]" {
			t.Errorf("Expected empty JSON array, got %s", w.Body.String())
		}
	})
}

func TestSearchPermits(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	handler := NewPermitHandler(conn)

	match := createTestPermit(t, conn, "building", "Alice", "100 Main Street", "pending")
	createTestPermit(t, conn, "zoning", "Bob", "5 Elm Court", "pending")

	t.Run("partial address match", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/permits/search?address=Main", nil)
		w := httptest.NewRecorder()

		handler.SearchPermits(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var permits []models.Permit
		if err := json.NewDecoder(w.Body).Decode(&permits); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(permits) != 1 || permits[0].ID != match {
			t.Errorf("Expected one Main Street match, got %+v", permits)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/permits/search?address=Nowhere", nil)
		w := httptest.NewRecorder()

		handler.SearchPermits(w, req)

		if strings.TrimSpace(w.Body.String()) != "[]" {
			t.Errorf("Expected empty JSON array, got %s", w.Body.String())
		}
	})

	t.Run("missing address parameter", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/permits/search", nil)
		w := httptest.NewRecorder()

		handler.SearchPermits(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestExportPermits(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	handler := NewPermitHandler(conn)

	createTestPermit(t, conn, "building", "Alice", "1 First St", "pending")
	createTestPermit(t, conn, "zoning", "Bob", "2 Second St", "approved")

	req := httptest.NewRequest("GET", "/permits/export", nil)
	w := httptest.NewRecorder()

	handler.ExportPermits(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Expected Content-Type text/csv, got %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="permits.csv"` {
		t.Errorf("Unexpected Content-Disposition: %q", cd)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "id,permit_type,applicant,address,description,status,issued_at,expires_at,created_at,updated_at,notes" {
		t.Errorf("Unexpected CSV header: %s", lines[0])
	}
	// Oldest first in the export
	if !strings.Contains(lines[1], "Alice") || !strings.Contains(lines[2], "Bob") {
		t.Errorf("Expected rows in creation order, got:\n%s", w.Body.String())
	}
}

func TestGetPermit(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	handler := NewPermitHandler(conn)

	permitID := createTestPermit(t, conn, "building", "Alice", "1 First St", "pending")

	t.Run("existing permit", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/permits/"+permitID, nil)
		req.SetPathValue("id", permitID)
		w := httptest.NewRecorder()

		handler.GetPermit(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var permit models.Permit
		if err := json.NewDecoder(w.Body).Decode(&permit); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if permit.ID != permitID || permit.Applicant != "Alice" {
			t.Errorf("Unexpected permit: %+v", permit)
		}
	})

	t.Run("unknown permit", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/permits/missing1", nil)
		req.SetPathValue("id", "missing1")
		w := httptest.NewRecorder()

		handler.GetPermit(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestApprovePermit(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	handler := NewPermitHandler(conn)

	approve := func(permitID string, body interface{}) *httptest.ResponseRecorder {
		var req *http.Request
		if body == nil {
			req = httptest.NewRequest("POST", "/permits/"+permitID+"/approve", nil)
		} else {
			encoded, _ := json.Marshal(body)
			req = httptest.NewRequest("POST", "/permits/"+permitID+"/approve", bytes.NewReader(encoded))
			req.Header.Set("Content-Type", "application/json")
		}
		req.SetPathValue("id", permitID)
		w := httptest.NewRecorder()
		handler.ApprovePermit(w, req)
		return w
	}

	t.Run("approve with defaults", func(t *testing.T) {
		permitID := createTestPermit(t, conn, "building", "Alice", "1 First St", "pending")

		w := approve(permitID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
		}

		var permit models.Permit
		if err := json.NewDecoder(w.Body).Decode(&permit); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if permit.Status != models.PermitStatusApproved {
			t.Errorf("Expected status approved, got %q", permit.Status)
		}
		if permit.IssuedAt == nil || permit.ExpiresAt == nil {
			t.Fatal("Expected issue and expiry dates to be set")
		}

		// Default validity runs 365 days from approval
		validity := permit.ExpiresAt.Sub(*permit.IssuedAt)
		if validity < 364*24*time.Hour || validity > 366*24*time.Hour {
			t.Errorf("Expected ~365 day validity, got %v", validity)
		}

		events := permitEvents(t, conn, permitID)
		if len(events) != 1 || events[0] != models.PermitEventApproved {
			t.Errorf("Expected [approved] event trail, got %v", events)
		}
	})

	t.Run("approve with custom validity and notes", func(t *testing.T) {
		permitID := createTestPermit(t, conn, "event", "Carol", "3 Third St", "pending")

		w := approve(permitID, models.ApprovePermitRequest{
			Actor:        "inspector-7",
			Notes:        "Valid for summer season only",
			ValidityDays: 90,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
		}

		var permit models.Permit
		if err := json.NewDecoder(w.Body).Decode(&permit); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if permit.Notes != "Valid for summer season only" {
			t.Errorf("Expected notes replaced, got %q", permit.Notes)
		}
		validity := permit.ExpiresAt.Sub(*permit.IssuedAt)
		if validity < 89*24*time.Hour || validity > 91*24*time.Hour {
			t.Errorf("Expected ~90 day validity, got %v", validity)
		}
	})

	t.Run("approve non-pending permit", func(t *testing.T) {
		permitID := createTestPermit(t, conn, "building", "Dave", "4 Fourth St", "denied")

		w := approve(permitID, nil)
		if w.Code != http.StatusConflict {
			t.Errorf("Expected status 409, got %d. Body: %s", w.Code, w.Body.String())
		}
	})

	t.Run("approve twice", func(t *testing.T) {
		permitID := createTestPermit(t, conn, "building", "Erin", "5 Fifth St", "pending")

		if w := approve(permitID, nil); w.Code != http.StatusOK {
			t.Fatalf("First approval failed: %d", w.Code)
		}
		if w := approve(permitID, nil); w.Code != http.StatusConflict {
			t.Errorf("Expected status 409 on second approval, got %d", w.Code)
		}
	})

	t.Run("unknown permit", func(t *testing.T) {
		w := approve("missing1", nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestDenyPermit(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	handler := NewPermitHandler(conn)

	deny := func(permitID string, body interface{}) *httptest.ResponseRecorder {
		encoded, _ := json.Marshal(body)
		req := httptest.NewRequest("POST", "/permits/"+permitID+"/deny", bytes.NewReader(encoded))
		req.SetPathValue("id", permitID)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handler.DenyPermit(w, req)
		return w
	}

	t.Run("valid denial", func(t *testing.T) {
		permitID := createTestPermit(t, conn, "demolition", "Alice", "1 First St", "pending")

		w := deny(permitID, models.DenyPermitRequest{Actor: "inspector-3", Reason: "Structural concerns"})
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
		}

		var permit models.Permit
		if err := json.NewDecoder(w.Body).Decode(&permit); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if permit.Status != models.PermitStatusDenied {
			t.Errorf("Expected status denied, got %q", permit.Status)
		}
		if permit.Notes != "Structural concerns" {
			t.Errorf("Expected reason in notes, got %q", permit.Notes)
		}

		events := permitEvents(t, conn, permitID)
		if len(events) != 1 || events[0] != models.PermitEventDenied {
			t.Errorf("Expected [denied] event trail, got %v", events)
		}
	})

	t.Run("missing reason", func(t *testing.T) {
		permitID := createTestPermit(t, conn, "demolition", "Bob", "2 Second St", "pending")

		w := deny(permitID, models.DenyPermitRequest{Actor: "inspector-3"})
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("deny approved permit", func(t *testing.T) {
		permitID := createTestPermit(t, conn, "demolition", "Carol", "3 Third St", "approved")

		w := deny(permitID, models.DenyPermitRequest{Reason: "Too late"})
		if w.Code != http.StatusConflict {
			t.Errorf("Expected status 409, got %d", w.Code)
		}
	})

	t.Run("unknown permit", func(t *testing.T) {
		w := deny("missing1", models.DenyPermitRequest{Reason: "Whatever"})
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestExpirePermit(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	handler := NewPermitHandler(conn)

	expire := func(permitID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/permits/"+permitID+"/expire", nil)
		req.SetPathValue("id", permitID)
		w := httptest.NewRecorder()
		handler.ExpirePermit(w, req)
		return w
	}

	t.Run("expire approved permit", func(t *testing.T) {
		permitID := createTestPermit(t, conn, "building", "Alice", "1 First St", "approved")

		w := expire(permitID)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
		}

		var permit models.Permit
		if err := json.NewDecoder(w.Body).Decode(&permit); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if permit.Status != models.PermitStatusExpired {
			t.Errorf("Expected status expired, got %q", permit.Status)
		}

		events := permitEvents(t, conn, permitID)
		if len(events) != 1 || events[0] != models.PermitEventExpired {
			t.Errorf("Expected [expired] event trail, got %v", events)
		}
	})

	t.Run("expire works from any status", func(t *testing.T) {
		permitID := createTestPermit(t, conn, "building", "Bob", "2 Second St", "pending")

		w := expire(permitID)
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("unknown permit", func(t *testing.T) {
		w := expire("missing1")
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestSweepPermits(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	handler := NewPermitHandler(conn)

	// Approved and past expiry: must be swept
	overdue := createTestPermit(t, conn, "building", "Alice", "1 First St", "approved")
	past := db.FormatTime(time.Now().UTC().Add(-48 * time.Hour))
	if _, err := conn.Exec("UPDATE permits SET expires_at = $1 WHERE id = $2", past, overdue); err != nil {
		t.Fatalf("Failed to backdate permit: %v", err)
	}

	// Approved but still valid: must survive
	fresh := createTestPermit(t, conn, "zoning", "Bob", "2 Second St", "approved")
	future := db.FormatTime(time.Now().UTC().Add(48 * time.Hour))
	if _, err := conn.Exec("UPDATE permits SET expires_at = $1 WHERE id = $2", future, fresh); err != nil {
		t.Fatalf("Failed to postdate permit: %v", err)
	}

	// Pending with a past expiry: not approved, so not swept
	pending := createTestPermit(t, conn, "event", "Carol", "3 Third St", "pending")
	if _, err := conn.Exec("UPDATE permits SET expires_at = $1 WHERE id = $2", past, pending); err != nil {
		t.Fatalf("Failed to backdate permit: %v", err)
	}

	req := httptest.NewRequest("POST", "/permits/sweep", nil)
	w := httptest.NewRecorder()
	handler.SweepPermits(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	var resp models.SweepResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.ExpiredIDs) != 1 || resp.ExpiredIDs[0] != overdue {
		t.Errorf("Expected exactly the overdue permit swept, got %+v", resp)
	}

	var status string
	if err := conn.QueryRow("SELECT status FROM permits WHERE id = $1", overdue).Scan(&status); err != nil {
		t.Fatalf("Failed to query permit: %v", err)
	}
	if status != models.PermitStatusExpired {
		t.Errorf("Expected overdue permit expired, got %q", status)
	}
	if err := conn.QueryRow("SELECT status FROM permits WHERE id = $1", fresh).Scan(&status); err != nil {
		t.Fatalf("Failed to query permit: %v", err)
	}
	if status != models.PermitStatusApproved {
		t.Errorf("Expected fresh permit untouched, got %q", status)
	}
	if err := conn.QueryRow("SELECT status FROM permits WHERE id = $1", pending).Scan(&status); err != nil {
		t.Fatalf("Failed to query permit: %v", err)
	}
	if status != models.PermitStatusPending {
		t.Errorf("Expected pending permit untouched, got %q", status)
	}

	events := permitEvents(t, conn, overdue)
	if len(events) != 1 || events[0] != models.PermitEventAutoExpired {
		t.Errorf("Expected [auto_expired] event trail, got %v", events)
	}

	// A second sweep finds nothing
	w = httptest.NewRecorder()
	handler.SweepPermits(w, httptest.NewRequest("POST", "/permits/sweep", nil))
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Count != 0 || len(resp.ExpiredIDs) != 0 {
		t.Errorf("Expected empty second sweep, got %+v", resp)
	}
}

func TestGetCompliance(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	handler := NewPermitHandler(conn)

	compliance := func(permitID string) (*httptest.ResponseRecorder, *models.ComplianceReport) {
		req := httptest.NewRequest("GET", "/permits/"+permitID+"/compliance", nil)
		req.SetPathValue("id", permitID)
		w := httptest.NewRecorder()
		handler.GetCompliance(w, req)

		if w.Code != http.StatusOK {
			return w, nil
		}
		var report models.ComplianceReport
		if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		return w, &report
	}

	t.Run("compliant pending permit", func(t *testing.T) {
		permitID := createTestPermit(t, conn, "building", "Alice", "1 First St", "pending")

		_, report := compliance(permitID)
		if !report.Compliant || len(report.Issues) != 0 {
			t.Errorf("Expected compliant report, got %+v", report)
		}
	})

	t.Run("missing address and applicant", func(t *testing.T) {
		permitID := createTestPermit(t, conn, "building", "", "", "pending")

		_, report := compliance(permitID)
		if report.Compliant {
			t.Error("Expected non-compliant report")
		}
		if len(report.Issues) != 2 {
			t.Errorf("Expected 2 issues, got %v", report.Issues)
		}
		joined := strings.Join(report.Issues, " ")
		if !strings.Contains(joined, "MISSING_ADDRESS") || !strings.Contains(joined, "MISSING_APPLICANT") {
			t.Errorf("Expected missing-field issues, got %v", report.Issues)
		}
	})

	t.Run("approved without dates", func(t *testing.T) {
		permitID := createTestPermit(t, conn, "building", "Bob", "2 Second St", "approved")

		_, report := compliance(permitID)
		joined := strings.Join(report.Issues, " ")
		if !strings.Contains(joined, "MISSING_ISSUED_AT") || !strings.Contains(joined, "MISSING_EXPIRES_AT") {
			t.Errorf("Expected missing-date issues, got %v", report.Issues)
		}
	})

	t.Run("approved past expiry", func(t *testing.T) {
		permitID := createTestPermit(t, conn, "building", "Carol", "3 Third St", "approved")
		now := db.FormatTime(time.Now().UTC().Add(-time.Hour))
		issued := db.FormatTime(time.Now().UTC().Add(-48 * time.Hour))
		if _, err := conn.Exec("UPDATE permits SET issued_at = $1, expires_at = $2 WHERE id = $3", issued, now, permitID); err != nil {
			t.Fatalf("Failed to backdate permit: %v", err)
		}

		_, report := compliance(permitID)
		if report.Compliant {
			t.Error("Expected non-compliant report")
		}
		if !strings.Contains(strings.Join(report.Issues, " "), "OVERDUE_EXPIRY") {
			t.Errorf("Expected OVERDUE_EXPIRY issue, got %v", report.Issues)
		}
	})

	t.Run("unknown type planted in storage", func(t *testing.T) {
		permitID := createTestPermit(t, conn, "alchemy", "Dave", "4 Fourth St", "pending")

		_, report := compliance(permitID)
		if !strings.Contains(strings.Join(report.Issues, " "), "UNKNOWN_TYPE") {
			t.Errorf("Expected UNKNOWN_TYPE issue, got %v", report.Issues)
		}
	})

	t.Run("unknown permit", func(t *testing.T) {
		w, _ := compliance("missing1")
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestGetReminder(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	handler := NewPermitHandler(conn)

	reminder := func(permitID, query string) (*httptest.ResponseRecorder, *models.ReminderResponse) {
		req := httptest.NewRequest("GET", "/permits/"+permitID+"/reminder"+query, nil)
		req.SetPathValue("id", permitID)
		w := httptest.NewRecorder()
		handler.GetReminder(w, req)

		if w.Code != http.StatusOK {
			return w, nil
		}
		var resp models.ReminderResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		return w, &resp
	}

	approvedExpiring := func(t *testing.T, days int) string {
		permitID := createTestPermit(t, conn, "building", "Alice", "1 First St", "approved")
		issued := db.FormatTime(time.Now().UTC().Add(-24 * time.Hour))
		expires := db.FormatTime(time.Now().UTC().AddDate(0, 0, days))
		if _, err := conn.Exec("UPDATE permits SET issued_at = $1, expires_at = $2 WHERE id = $3", issued, expires, permitID); err != nil {
			t.Fatalf("Failed to set expiry: %v", err)
		}
		return permitID
	}

	t.Run("due within default window", func(t *testing.T) {
		permitID := approvedExpiring(t, 10)

		_, resp := reminder(permitID, "")
		if !resp.Due {
			t.Fatal("Expected reminder to be due")
		}
		if resp.Reminder == nil {
			t.Fatal("Expected reminder payload")
		}
		// 10 days minus the instants elapsed since setup floors to 9
		if resp.Reminder.DaysRemaining != 9 {
			t.Errorf("Expected 9 days remaining, got %d", resp.Reminder.DaysRemaining)
		}
		if !strings.Contains(resp.Reminder.Message, "expires in 9 day(s)") {
			t.Errorf("Unexpected reminder message: %q", resp.Reminder.Message)
		}
	})

	t.Run("not due outside default window", func(t *testing.T) {
		permitID := approvedExpiring(t, 45)

		_, resp := reminder(permitID, "")
		if resp.Due {
			t.Error("Expected reminder to not be due at 45 days")
		}

		_, resp = reminder(permitID, "?days=60")
		if !resp.Due {
			t.Error("Expected reminder to be due with a 60 day window")
		}
	})

	t.Run("already expired is not due", func(t *testing.T) {
		permitID := approvedExpiring(t, -1)

		_, resp := reminder(permitID, "")
		if resp.Due {
			t.Error("Expected past-expiry permit to not be due")
		}
	})

	t.Run("pending permit is not due", func(t *testing.T) {
		permitID := createTestPermit(t, conn, "building", "Bob", "2 Second St", "pending")

		_, resp := reminder(permitID, "")
		if resp.Due {
			t.Error("Expected pending permit to not be due")
		}
	})

	t.Run("invalid days parameter", func(t *testing.T) {
		permitID := approvedExpiring(t, 10)

		w, _ := reminder(permitID, "?days=soon")
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("unknown permit", func(t *testing.T) {
		w, _ := reminder("missing1", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestListEvents(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	handler := NewPermitHandler(conn)

	// Apply then approve through the handlers so the trail accumulates
	body, _ := json.Marshal(models.ApplyPermitRequest{
		PermitType: "signage",
		Applicant:  "Alice",
		Address:    "1 First St",
	})
	req := httptest.NewRequest("POST", "/permits", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ApplyPermit(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to apply: %s", w.Body.String())
	}
	var permit models.Permit
	if err := json.NewDecoder(w.Body).Decode(&permit); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	req = httptest.NewRequest("POST", "/permits/"+permit.ID+"/approve", nil)
	req.SetPathValue("id", permit.ID)
	w = httptest.NewRecorder()
	handler.ApprovePermit(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to approve: %s", w.Body.String())
	}

	t.Run("trail oldest first", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/permits/"+permit.ID+"/events", nil)
		req.SetPathValue("id", permit.ID)
		w := httptest.NewRecorder()

		handler.ListEvents(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var events []models.PermitEvent
		if err := json.NewDecoder(w.Body).Decode(&events); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("Expected 2 events, got %d", len(events))
		}
		if events[0].EventType != models.PermitEventApplied || events[1].EventType != models.PermitEventApproved {
			t.Errorf("Expected [applied approved], got [%s %s]", events[0].EventType, events[1].EventType)
		}
		if events[1].Actor != "admin" {
			t.Errorf("Expected default approver actor 'admin', got %q", events[1].Actor)
		}
	})

	t.Run("unknown permit", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/permits/missing1/events", nil)
		req.SetPathValue("id", "missing1")
		w := httptest.NewRecorder()

		handler.ListEvents(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}
