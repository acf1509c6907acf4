// Package handlers defines the HTTP-layer error codes used across all API
// endpoints. Codes are lowercase snake_case and stable: clients branch on
// them programmatically while messages stay human-readable.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeValidation   = "validation_failed"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeAlreadyCheckedIn  = "already_checked_in"
	ErrCodeDuplicateResponse = "duplicate_response"
	ErrCodeWindowTooLarge    = "window_too_large"
	ErrCodeJournalLocked     = "journal_locked"
	ErrCodeMethodNotAllowed  = "method_not_allowed"
)
