// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication utilities for ballot administration.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(ballotID, salt)
	err := auth.ValidateAdminKey(ballotID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same ballot ID and salt always produce the same key. This allows validation
without storing the key in the database. The key is returned once at ballot
creation and gates close, registration, export, and verify.

# IP Hashing

For privacy-preserving audit logs:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256. The server logs this
hash instead of the raw client address when a vote is cast.
*/
package auth
