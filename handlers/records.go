// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"archive/zip"
	"bytes"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
)

type RecordsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewRecordsHandler(db *sql.DB, cfg cliparse.Config) *RecordsHandler {
	return &RecordsHandler{db: db, cfg: cfg}
}

func scanDocument(s rowScanner) (*models.Document, error) {
	var d models.Document
	var createdAt, updatedAt string

	err := s.Scan(&d.ID, &d.Title, &d.Category, &d.Body, &d.Tags, &d.Author,
		&createdAt, &updatedAt, &d.IsPublic, &d.Version)
	if err != nil {
		return nil, err
	}

	if d.CreatedAt, err = db.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if d.UpdatedAt, err = db.ParseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &d, nil
}

func (h *RecordsHandler) fetchDocument(docID string, publicOnly bool) (*models.Document, error) {
	query := `
		SELECT id, title, category, body, tags, author, created_at, updated_at, is_public, version
		FROM documents
		WHERE id = $1
	`
	if publicOnly {
		query += " AND is_public = TRUE"
	}
	return scanDocument(h.db.QueryRow(query, docID))
}

func scanFOIARequest(s rowScanner) (*models.FOIARequest, error) {
	var f models.FOIARequest
	var createdAt, updatedAt, documentIDs string

	err := s.Scan(&f.ID, &f.Requester, &f.Description, &f.Status,
		&createdAt, &updatedAt, &f.Response, &documentIDs)
	if err != nil {
		return nil, err
	}

	if f.CreatedAt, err = db.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if f.UpdatedAt, err = db.ParseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	if err := json.Unmarshal([]byte(documentIDs), &f.DocumentIDs); err != nil {
		return nil, fmt.Errorf("failed to decode document_ids: %w", err)
	}
	return &f, nil
}

func (h *RecordsHandler) fetchFOIARequest(requestID string) (*models.FOIARequest, error) {
	row := h.db.QueryRow(`
		SELECT id, requester, description, status, created_at, updated_at, response, document_ids
		FROM foia_requests
		WHERE id = $1
	`, requestID)
	return scanFOIARequest(row)
}

// CreateDocument handles POST /documents
func (h *RecordsHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDocumentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	known := false
	for _, c := range models.DocumentCategories {
		if c == req.Category {
			known = true
			break
		}
	}
	if !known {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("Unknown category '%s'", req.Category))
		return
	}

	docID := newID(10)
	now := db.FormatTime(time.Now())

	_, err := h.db.Exec(`
		INSERT INTO documents (id, title, category, body, tags, author, created_at, updated_at, is_public, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1)
	`, docID, req.Title, req.Category, req.Body, req.Tags, req.Author, now, now, req.IsPublic)

	if err != nil {
		slog.Error("failed to insert document", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create document")
		return
	}

	slog.Info("document created", "document_id", docID, "category", req.Category)

	doc, err := h.fetchDocument(docID, false)
	if err != nil {
		slog.Error("failed to query document", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, doc)
}

// ListDocuments handles GET /documents
func (h *RecordsHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	publicOnly, _ := strconv.ParseBool(r.URL.Query().Get("public"))

	docs, err := h.listDocuments(category, publicOnly)
	if err != nil {
		slog.Error("failed to query documents", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, docs)
}

func (h *RecordsHandler) listDocuments(category string, publicOnly bool) ([]models.Document, error) {
	query := `
		SELECT id, title, category, body, tags, author, created_at, updated_at, is_public, version
		FROM documents
	`
	clauses := []string{}
	args := []any{}
	if category != "" {
		args = append(args, category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if publicOnly {
		clauses = append(clauses, "is_public = TRUE")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

// SearchDocuments handles GET /documents/search
// Under SQLite the query runs against the FTS5 index (phrase-quoted when it
// contains spaces) ranked by relevance; a failed MATCH or a non-SQLite
// backend falls back to a LIKE scan over title, body, and tags.
func (h *RecordsHandler) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "q query parameter is required")
		return
	}
	category := r.URL.Query().Get("category")
	includePrivate, _ := strconv.ParseBool(r.URL.Query().Get("include_private"))

	var matchedIDs []string
	var err error
	if h.cfg.DatabaseType == db.TypeSQLite {
		matchedIDs, err = h.searchFTS(q)
		if err != nil {
			matchedIDs, err = h.searchLike(q)
		}
	} else {
		matchedIDs, err = h.searchLike(q)
	}
	if err != nil {
		slog.Error("failed to search documents", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Re-fetch each match individually so the ranked order survives the
	// visibility and category filters.
	results := []models.Document{}
	for _, docID := range matchedIDs {
		query := `
			SELECT id, title, category, body, tags, author, created_at, updated_at, is_public, version
			FROM documents
			WHERE id = $1
		`
		args := []any{docID}
		if !includePrivate {
			query += " AND is_public = TRUE"
		}
		if category != "" {
			args = append(args, category)
			query += fmt.Sprintf(" AND category = $%d", len(args))
		}

		doc, err := scanDocument(h.db.QueryRow(query, args...))
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			slog.Error("failed to query document", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		results = append(results, *doc)
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}

func (h *RecordsHandler) searchFTS(q string) ([]string, error) {
	// Multi-word queries become phrase queries; otherwise FTS5 treats the
	// space as an implicit AND of column filters.
	ftsQuery := q
	if strings.Contains(q, " ") {
		ftsQuery = `"` + q + `"`
	}

	rows, err := h.db.Query(`
		SELECT id FROM documents_fts WHERE documents_fts MATCH $1 ORDER BY rank
	`, ftsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (h *RecordsHandler) searchLike(q string) ([]string, error) {
	pattern := "%" + q + "%"
	rows, err := h.db.Query(`
		SELECT id FROM documents WHERE title LIKE $1 OR body LIKE $2 OR tags LIKE $3
	`, pattern, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// BundleDocuments handles GET /documents/bundle
// Streams a ZIP of one JSON file per document plus an index.csv manifest.
func (h *RecordsHandler) BundleDocuments(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "category query parameter is required")
		return
	}
	includeAll, _ := strconv.ParseBool(r.URL.Query().Get("all"))

	docs, err := h.listDocuments(category, !includeAll)
	if err != nil {
		slog.Error("failed to query documents", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if len(docs) == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound,
			fmt.Sprintf("No documents found for category '%s'", category))
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	indexRecords := [][]string{{"id", "title", "author", "created_at", "version", "file"}}
	for _, doc := range docs {
		title := []rune(doc.Title)
		if len(title) > 40 {
			title = title[:40]
		}
		filename := fmt.Sprintf("%s_%s.json", doc.ID, strings.ReplaceAll(string(title), " ", "_"))

		payload, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			slog.Error("failed to encode document", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to build bundle")
			return
		}
		entry, err := zw.Create(filename)
		if err == nil {
			_, err = entry.Write(payload)
		}
		if err != nil {
			slog.Error("failed to write bundle entry", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to build bundle")
			return
		}

		indexRecords = append(indexRecords, []string{
			doc.ID, doc.Title, doc.Author, db.FormatTime(doc.CreatedAt),
			strconv.Itoa(doc.Version), filename,
		})
	}

	var indexBuf bytes.Buffer
	if err := csv.NewWriter(&indexBuf).WriteAll(indexRecords); err != nil {
		slog.Error("failed to write bundle index", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to build bundle")
		return
	}
	entry, err := zw.Create("index.csv")
	if err == nil {
		_, err = entry.Write(indexBuf.Bytes())
	}
	if err == nil {
		err = zw.Close()
	}
	if err != nil {
		slog.Error("failed to finalize bundle", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to build bundle")
		return
	}

	slog.Info("document bundle exported", "category", category, "documents", len(docs))

	middleware.AttachmentResponse(w, "application/zip", category+"_bundle.zip", buf.Bytes())
}

// GetDocument handles GET /documents/:id
func (h *RecordsHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("id")
	if docID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "document_id is required")
		return
	}
	publicOnly, _ := strconv.ParseBool(r.URL.Query().Get("public_only"))

	doc, err := h.fetchDocument(docID, publicOnly)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Document not found")
		return
	}
	if err != nil {
		slog.Error("failed to query document", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, doc)
}

// UpdateDocument handles PUT /documents/:id
// The current content is archived as a revision before the edit lands, and
// the version counter moves up by one.
func (h *RecordsHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("id")
	if docID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "document_id is required")
		return
	}

	var req models.UpdateDocumentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Editor == "" {
		req.Editor = "system"
	}

	old, err := h.fetchDocument(docID, false)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Document not found")
		return
	}
	if err != nil {
		slog.Error("failed to query document", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	newTitle := old.Title
	if req.Title != nil {
		newTitle = *req.Title
	}
	newBody := old.Body
	if req.Body != nil {
		newBody = *req.Body
	}
	newTags := old.Tags
	if req.Tags != nil {
		newTags = *req.Tags
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	now := db.FormatTime(time.Now())

	_, err = tx.Exec(`
		INSERT INTO document_revisions (document_id, version, title, body, edited_by, edited_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (document_id, version) DO NOTHING
	`, old.ID, old.Version, old.Title, old.Body, req.Editor, now)

	if err != nil {
		slog.Error("failed to archive revision", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update document")
		return
	}

	_, err = tx.Exec(`
		UPDATE documents SET title = $1, body = $2, tags = $3, updated_at = $4, version = $5
		WHERE id = $6
	`, newTitle, newBody, newTags, now, old.Version+1, docID)

	if err != nil {
		slog.Error("failed to update document", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update document")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update document")
		return
	}

	slog.Info("document updated", "document_id", docID, "version", old.Version+1, "editor", req.Editor)

	doc, err := h.fetchDocument(docID, false)
	if err != nil {
		slog.Error("failed to query document", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, doc)
}

// ListRevisions handles GET /documents/:id/revisions
func (h *RecordsHandler) ListRevisions(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("id")
	if docID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "document_id is required")
		return
	}

	var exists bool
	err := h.db.QueryRow("SELECT EXISTS(SELECT 1 FROM documents WHERE id = $1)", docID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query document", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Document not found")
		return
	}

	rows, err := h.db.Query(`
		SELECT document_id, version, title, body, edited_by, edited_at
		FROM document_revisions
		WHERE document_id = $1
		ORDER BY version
	`, docID)
	if err != nil {
		slog.Error("failed to query revisions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	revisions := []models.DocumentRevision{}
	for rows.Next() {
		var rev models.DocumentRevision
		var editedBy sql.NullString
		var editedAt string
		if err := rows.Scan(&rev.DocumentID, &rev.Version, &rev.Title, &rev.Body, &editedBy, &editedAt); err != nil {
			slog.Error("failed to scan revision", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		rev.EditedBy = editedBy.String
		if rev.EditedAt, err = db.ParseTime(editedAt); err != nil {
			slog.Error("failed to parse revision timestamp", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		revisions = append(revisions, rev)
	}

	middleware.JSONResponse(w, http.StatusOK, revisions)
}

// PublishDocument handles POST /documents/:id/publish
func (h *RecordsHandler) PublishDocument(w http.ResponseWriter, r *http.Request) {
	h.setDocumentVisibility(w, r, true)
}

// RetractDocument handles POST /documents/:id/retract
func (h *RecordsHandler) RetractDocument(w http.ResponseWriter, r *http.Request) {
	h.setDocumentVisibility(w, r, false)
}

func (h *RecordsHandler) setDocumentVisibility(w http.ResponseWriter, r *http.Request, public bool) {
	docID := r.PathValue("id")
	if docID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "document_id is required")
		return
	}

	var exists bool
	err := h.db.QueryRow("SELECT EXISTS(SELECT 1 FROM documents WHERE id = $1)", docID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query document", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Document not found")
		return
	}

	_, err = h.db.Exec(`
		UPDATE documents SET is_public = $1, updated_at = $2 WHERE id = $3
	`, public, db.FormatTime(time.Now()), docID)

	if err != nil {
		slog.Error("failed to change document visibility", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update document")
		return
	}

	if public {
		slog.Info("document published", "document_id", docID)
	} else {
		slog.Info("document retracted", "document_id", docID)
	}

	doc, err := h.fetchDocument(docID, false)
	if err != nil {
		slog.Error("failed to query document", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, doc)
}

// SubmitFOIA handles POST /foia
func (h *RecordsHandler) SubmitFOIA(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitFOIARequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Requester == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "requester is required")
		return
	}
	if req.Description == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "description is required")
		return
	}

	requestID := newID(8)
	now := db.FormatTime(time.Now())

	_, err := h.db.Exec(`
		INSERT INTO foia_requests (id, requester, description, status, created_at, updated_at, response, document_ids)
		VALUES ($1, $2, $3, $4, $5, $6, '', '[]')
	`, requestID, req.Requester, req.Description, models.FOIAStatusOpen, now, now)

	if err != nil {
		slog.Error("failed to insert FOIA request", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit request")
		return
	}

	slog.Info("FOIA request submitted", "request_id", requestID, "requester", req.Requester)

	request, err := h.fetchFOIARequest(requestID)
	if err != nil {
		slog.Error("failed to query FOIA request", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, request)
}

// ListFOIA handles GET /foia
func (h *RecordsHandler) ListFOIA(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	query := `
		SELECT id, requester, description, status, created_at, updated_at, response, document_ids
		FROM foia_requests
		ORDER BY created_at DESC
	`
	args := []any{}
	if status != "" {
		query = `
			SELECT id, requester, description, status, created_at, updated_at, response, document_ids
			FROM foia_requests
			WHERE status = $1
			ORDER BY created_at DESC
		`
		args = append(args, status)
	}

	rows, err := h.db.Query(query, args...)
	if err != nil {
		slog.Error("failed to query FOIA requests", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	requests := []models.FOIARequest{}
	for rows.Next() {
		f, err := scanFOIARequest(rows)
		if err != nil {
			slog.Error("failed to scan FOIA request", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		requests = append(requests, *f)
	}

	middleware.JSONResponse(w, http.StatusOK, requests)
}

// GetFOIA handles GET /foia/:id
func (h *RecordsHandler) GetFOIA(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("id")
	if requestID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "request_id is required")
		return
	}

	request, err := h.fetchFOIARequest(requestID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "FOIA request not found")
		return
	}
	if err != nil {
		slog.Error("failed to query FOIA request", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, request)
}

// FulfillFOIA handles POST /foia/:id/fulfill
func (h *RecordsHandler) FulfillFOIA(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("id")
	if requestID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "request_id is required")
		return
	}

	var req models.FulfillFOIARequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Response == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "response is required")
		return
	}
	if req.DocumentIDs == nil {
		req.DocumentIDs = []string{}
	}

	docIDs, err := json.Marshal(req.DocumentIDs)
	if err != nil {
		slog.Error("failed to encode document ids", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to fulfill request")
		return
	}

	_, err = h.db.Exec(`
		UPDATE foia_requests SET status = $1, response = $2, document_ids = $3, updated_at = $4
		WHERE id = $5
	`, models.FOIAStatusFulfilled, req.Response, string(docIDs), db.FormatTime(time.Now()), requestID)

	if err != nil {
		slog.Error("failed to fulfill FOIA request", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to fulfill request")
		return
	}

	// A missing id falls out here: the blind update touched zero rows
	request, err := h.fetchFOIARequest(requestID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "FOIA request not found")
		return
	}
	if err != nil {
		slog.Error("failed to query FOIA request", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("FOIA request fulfilled", "request_id", requestID, "documents", len(req.DocumentIDs))

	middleware.JSONResponse(w, http.StatusOK, request)
}

// UpdateFOIAStatus handles POST /foia/:id/status
func (h *RecordsHandler) UpdateFOIAStatus(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("id")
	if requestID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "request_id is required")
		return
	}

	var req models.UpdateFOIAStatusRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	switch req.Status {
	case models.FOIAStatusOpen, models.FOIAStatusProcessing, models.FOIAStatusFulfilled,
		models.FOIAStatusDenied, models.FOIAStatusWithdrawn:
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid status '%s'", req.Status))
		return
	}

	var exists bool
	err := h.db.QueryRow("SELECT EXISTS(SELECT 1 FROM foia_requests WHERE id = $1)", requestID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query FOIA request", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "FOIA request not found")
		return
	}

	if req.Response != "" {
		_, err = h.db.Exec(`
			UPDATE foia_requests SET status = $1, response = $2, updated_at = $3 WHERE id = $4
		`, req.Status, req.Response, db.FormatTime(time.Now()), requestID)
	} else {
		_, err = h.db.Exec(`
			UPDATE foia_requests SET status = $1, updated_at = $2 WHERE id = $3
		`, req.Status, db.FormatTime(time.Now()), requestID)
	}

	if err != nil {
		slog.Error("failed to update FOIA status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update request")
		return
	}

	slog.Info("FOIA status updated", "request_id", requestID, "status", req.Status)

	request, err := h.fetchFOIARequest(requestID)
	if err != nil {
		slog.Error("failed to query FOIA request", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, request)
}
