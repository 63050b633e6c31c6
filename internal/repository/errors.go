package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when trying to create a user with an existing email
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrDuplicateToken is returned when trying to create a token with an existing hash
	ErrDuplicateToken = errors.New("token with this hash already exists")

	// ErrDuplicateOAuthIdentity is returned when trying to link an already linked external account
	ErrDuplicateOAuthIdentity = errors.New("oauth identity already exists")

	// ErrDuplicatePlan is returned when trying to create a plan with an existing code
	ErrDuplicatePlan = errors.New("plan with this code already exists")

	// ErrDuplicateMember is returned when trying to add a user to a team twice
	ErrDuplicateMember = errors.New("user is already a member of this team")
)
