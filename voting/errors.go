// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import "errors"

// Error kinds returned by the voting core. Operations wrap detail text
// around these sentinels; callers classify with errors.Is. Every error is
// permanent from the caller's point of view - nothing here is worth
// retrying, a Conflict least of all.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid state")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)
