// Package services defines the business logic for badge issuance: the badge
// catalog, manual and automatic issuance, issuance history and data erasure.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Errors raised by the external badge client are not listed here; they are
// *badgeapi.Error values and are matched with the badgeapi sentinels.
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrUserNotFound indicates that the recipient does not exist in the host
	// user directory.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidUser is returned when a user id is missing or not positive.
	ErrInvalidUser = errors.New("user id must be a positive integer")

	// ErrInvalidBadge is returned when a badge id is empty or contains
	// characters outside [A-Za-z0-9_-].
	ErrInvalidBadge = errors.New("badge id must contain only letters, digits, '_' or '-'")

	// ErrInvalidCourse is returned when a course id is negative.
	ErrInvalidCourse = errors.New("course id must not be negative")

	// ErrInvalidContext is returned when a privacy context cannot be parsed.
	ErrInvalidContext = errors.New("invalid context")
)
