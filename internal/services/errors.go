// Package services defines the business logic of the wellness platform: the
// event processor that owns wellness state, plus journal, survey, and quote
// operations. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler layer.
package services

import "errors"

var (
	// ErrAlreadyCheckedIn is returned when a user attempts a second check-in
	// inside the same UTC day bucket.
	ErrAlreadyCheckedIn = errors.New("already checked in today")

	// ErrInvalidMood is returned when a mood value is outside 1..5.
	ErrInvalidMood = errors.New("mood must be between 1 and 5")

	// ErrFeedbackTooLong is returned when check-in feedback exceeds 500 chars.
	ErrFeedbackTooLong = errors.New("feedback too long")

	// ErrInvalidSource is returned for an unrecognized check-in source.
	ErrInvalidSource = errors.New("unknown check-in source")

	// ErrUserNotFound indicates the acting user does not exist or is inactive.
	ErrUserNotFound = errors.New("user not found")

	// ErrSurveyNotFound indicates the requested survey does not exist or is
	// no longer active.
	ErrSurveyNotFound = errors.New("survey not found")

	// ErrDuplicateResponse is returned when a user submits a second response
	// to the same survey.
	ErrDuplicateResponse = errors.New("survey already answered")

	// ErrInvalidAnswer is returned when a response answer does not match the
	// referenced question's type.
	ErrInvalidAnswer = errors.New("answer does not match question type")

	// ErrJournalNotFound indicates the requested journal entry does not exist
	// or is not accessible to the current user.
	ErrJournalNotFound = errors.New("journal entry not found")

	// ErrJournalLocked is returned when content edits are attempted more than
	// 24 hours after creation.
	ErrJournalLocked = errors.New("journal entry is no longer editable")

	// ErrInvalidPrivacy is returned for an unrecognized journal privacy level.
	ErrInvalidPrivacy = errors.New("unknown privacy level")

	// ErrNoQuotes indicates no active quote is available for rotation.
	ErrNoQuotes = errors.New("no active quotes")

	// ErrQuoteNotFound indicates the referenced quote does not exist.
	ErrQuoteNotFound = errors.New("quote not found")

	// ErrInvalidRating is returned when a quote rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)
