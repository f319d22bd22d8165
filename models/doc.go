// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateBallotRequest: title, description, options, window (or duration_hours)
  - RegisterVoterRequest: voter_id
  - CastVoteRequest: voter_id, choice
  - ApplyPermitRequest / ApprovePermitRequest / DenyPermitRequest / ExpirePermitRequest
  - CreateDocumentRequest / UpdateDocumentRequest
  - SubmitFOIARequest / FulfillFOIARequest / UpdateFOIAStatusRequest

# Response Types

Types for JSON responses:

  - CreateBallotResponse: ballot, admin_key
  - RegisterVoterResponse: voter_id, ballot_id, message
  - CloseBallotResponse: ballot_id, message
  - SweepResponse: expired_ids, count
  - ReminderResponse: due, reminder
  - ErrorResponse: error, message

# Domain Types

Voting core:

  - Ballot: options, voting window, active flag
  - Vote: immutable cast vote with integrity signature
  - TallySummary: counts, percentages, winner (null when no votes)
  - ExportedVote / ExportDocument: external export shapes
  - VerificationReport: per-vote integrity check results

Collaborator services:

  - Permit / PermitEvent / ComplianceReport / PermitReminder
  - Document / DocumentRevision / FOIARequest

# Constants

Export formats:

	FormatJSON = "json"
	FormatCSV  = "csv"

Permit statuses:

	PermitStatusPending  = "pending"
	PermitStatusApproved = "approved"
	PermitStatusDenied   = "denied"
	PermitStatusExpired  = "expired"

FOIA statuses:

	FOIAStatusOpen       = "open"
	FOIAStatusProcessing = "processing"
	FOIAStatusFulfilled  = "fulfilled"
	FOIAStatusDenied     = "denied"
	FOIAStatusWithdrawn  = "withdrawn"

PermitTypes and DocumentCategories list the accepted permit categories and
record categories.
*/
package models
