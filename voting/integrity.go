// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
	"time"

	"github.com/danielhkuo/ballotbox/models"
)

// Sign binds a vote's identifying fields into a SHA-256 integrity token.
// Each field is length-prefixed before hashing, so no field value can
// masquerade as a boundary between fields. The timestamp is canonicalized
// as UTC RFC3339Nano; Verify reproduces the same canonical form from the
// parsed timestamp, so the token survives a storage round trip.
func Sign(voterID, ballotID, choice string, timestamp time.Time) string {
	h := sha256.New()
	for _, field := range []string{voterID, ballotID, choice, timestamp.UTC().Format(time.RFC3339Nano)} {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(field)))
		h.Write(n[:])
		io.WriteString(h, field)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Verify recomputes a vote's integrity token from its own fields and
// compares it against the stored signature in constant time. A mismatch
// means a covered field changed after commit.
//
// The token proves integrity, not origin: anyone who knows the four fields
// can produce a matching token, so it detects post-hoc tampering but does
// not prove the named voter cast the vote.
func Verify(v models.Vote) bool {
	expected := Sign(v.VoterID, v.BallotID, v.Choice, v.Timestamp)
	return hmac.Equal([]byte(expected), []byte(v.Signature))
}
