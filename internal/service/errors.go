// Package service holds the blog's business rules: category hierarchy,
// article ownership and user accounts. Handlers classify the returned
// errors with errors.Is against the sentinels below.
package service

import "errors"

var (
	// ErrNotFound is returned when a user, article or category is missing.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateName is returned when a unique name is already taken.
	ErrDuplicateName = errors.New("name already exists")
	// ErrNotAuthor is returned when a user acts on an article they did not write.
	ErrNotAuthor = errors.New("you're not writer")
	// ErrInvalidInput is returned for blank or oversized fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials is returned for a bad login or TOTP code.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
