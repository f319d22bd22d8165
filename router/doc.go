// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the ballotbox API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Ballots (close, voters, export, and verify require X-Admin-Key):

	POST /ballots              - Create ballot (returns admin key)
	GET  /ballots              - List ballots
	GET  /ballots/{id}         - Get ballot details
	POST /ballots/{id}/close   - Close ballot
	POST /ballots/{id}/voters  - Register eligible voter
	POST /ballots/{id}/votes   - Cast vote
	GET  /ballots/{id}/tally   - Tally summary
	GET  /ballots/{id}/export  - Export votes (json or csv attachment)
	GET  /ballots/{id}/verify  - Integrity report

Permits:

	POST /permits                  - Apply for permit
	GET  /permits                  - List permits (?status=)
	GET  /permits/search           - Search by address
	GET  /permits/export           - CSV attachment
	POST /permits/sweep            - Expire overdue approved permits
	GET  /permits/{id}             - Get permit
	POST /permits/{id}/approve     - Approve pending permit
	POST /permits/{id}/deny        - Deny pending permit
	POST /permits/{id}/expire      - Expire permit
	GET  /permits/{id}/compliance  - Compliance check
	GET  /permits/{id}/reminder    - Renewal reminder (?days=)
	GET  /permits/{id}/events      - Audit trail

Public records and FOIA:

	POST /documents                 - Create document
	GET  /documents                 - List documents (?category=&public=)
	GET  /documents/search          - Full-text search
	GET  /documents/bundle          - ZIP bundle (?category=&all=)
	GET  /documents/{id}            - Get document (?public_only=)
	PUT  /documents/{id}            - Update (archives revision)
	GET  /documents/{id}/revisions  - Revision history
	POST /documents/{id}/publish    - Make public
	POST /documents/{id}/retract    - Make private
	POST /foia                      - Submit FOIA request
	GET  /foia                      - List requests (?status=)
	GET  /foia/{id}                 - Get request
	POST /foia/{id}/fulfill         - Fulfill with response
	POST /foia/{id}/status          - Update status

# Handler Initialization

The router creates handler instances with dependency injection:

	ballotHandler := handlers.NewBallotHandler(db, cfg)
	permitHandler := handlers.NewPermitHandler(db)
	recordsHandler := handlers.NewRecordsHandler(db, cfg)
*/
package router
