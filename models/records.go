// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// FOIA request status constants
const (
	FOIAStatusOpen       = "open"
	FOIAStatusProcessing = "processing"
	FOIAStatusFulfilled  = "fulfilled"
	FOIAStatusDenied     = "denied"
	FOIAStatusWithdrawn  = "withdrawn"
)

// DocumentCategories lists the record categories the store accepts.
var DocumentCategories = []string{
	"budget", "minutes", "ordinance", "resolution", "contract",
	"policy", "report", "agenda", "notice", "permit", "audit",
	"correspondence", "other",
}

// Request types

type CreateDocumentRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Body     string `json:"body"`
	Author   string `json:"author"`
	Tags     string `json:"tags"`
	IsPublic bool   `json:"is_public"`
}

// UpdateDocumentRequest carries a partial edit; nil fields keep the
// current value.
type UpdateDocumentRequest struct {
	Title  *string `json:"title"`
	Body   *string `json:"body"`
	Tags   *string `json:"tags"`
	Editor string  `json:"editor"`
}

type SubmitFOIARequest struct {
	Requester   string `json:"requester"`
	Description string `json:"description"`
}

type FulfillFOIARequest struct {
	Response    string   `json:"response"`
	DocumentIDs []string `json:"document_ids"`
}

type UpdateFOIAStatusRequest struct {
	Status   string `json:"status"`
	Response string `json:"response"`
}

// Domain types

type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Body      string    `json:"body"`
	Tags      string    `json:"tags"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsPublic  bool      `json:"is_public"`
	Version   int       `json:"version"`
}

type DocumentRevision struct {
	DocumentID string    `json:"document_id"`
	Version    int       `json:"version"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	EditedBy   string    `json:"edited_by"`
	EditedAt   time.Time `json:"edited_at"`
}

type FOIARequest struct {
	ID          string    `json:"id"`
	Requester   string    `json:"requester"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Response    string    `json:"response"`
	DocumentIDs []string  `json:"document_ids"`
}
