// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Permit status constants
const (
	PermitStatusPending  = "pending"
	PermitStatusApproved = "approved"
	PermitStatusDenied   = "denied"
	PermitStatusExpired  = "expired"
)

// Permit event type constants
const (
	PermitEventApplied     = "applied"
	PermitEventApproved    = "approved"
	PermitEventDenied      = "denied"
	PermitEventExpired     = "expired"
	PermitEventAutoExpired = "auto_expired"
)

// PermitTypes lists the permit categories the tracker accepts.
var PermitTypes = []string{
	"building", "demolition", "electrical", "plumbing",
	"mechanical", "zoning", "signage", "event", "food_service",
	"business_license", "home_occupation", "variance", "other",
}

// Request types

type ApplyPermitRequest struct {
	PermitType  string `json:"permit_type"`
	Applicant   string `json:"applicant"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

type ApprovePermitRequest struct {
	Actor        string `json:"actor"`
	Notes        string `json:"notes"`
	ValidityDays int    `json:"validity_days"`
}

type DenyPermitRequest struct {
	Actor  string `json:"actor"`
	Reason string `json:"reason"`
}

type ExpirePermitRequest struct {
	Actor string `json:"actor"`
}

// Response types

type SweepResponse struct {
	ExpiredIDs []string `json:"expired_ids"`
	Count      int      `json:"count"`
}

type ReminderResponse struct {
	Due      bool            `json:"due"`
	Reminder *PermitReminder `json:"reminder,omitempty"`
}

// Domain types

type Permit struct {
	ID          string     `json:"id"`
	PermitType  string     `json:"permit_type"`
	Applicant   string     `json:"applicant"`
	Address     string     `json:"address"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	IssuedAt    *time.Time `json:"issued_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Notes       string     `json:"notes"`
}

type PermitEvent struct {
	ID         string    `json:"id"`
	PermitID   string    `json:"permit_id"`
	EventType  string    `json:"event_type"`
	Actor      string    `json:"actor"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ComplianceReport struct {
	PermitID  string    `json:"permit_id"`
	Status    string    `json:"status"`
	Compliant bool      `json:"compliant"`
	Issues    []string  `json:"issues"`
	CheckedAt time.Time `json:"checked_at"`
}

type PermitReminder struct {
	PermitID      string    `json:"permit_id"`
	Applicant     string    `json:"applicant"`
	Address       string    `json:"address"`
	ExpiresAt     time.Time `json:"expires_at"`
	DaysRemaining int       `json:"days_remaining"`
	Message       string    `json:"message"`
}
