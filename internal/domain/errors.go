package domain

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("access denied")
	ErrValidation         = errors.New("validation failed")
	ErrAlreadyAssigned    = errors.New("task is already assigned, unassign it first to reassign")
	ErrNotOnTeam          = errors.New("user is not on your team")
	ErrHasManager         = errors.New("user already has a manager assigned")
	ErrInvalidManager     = errors.New("invalid manager id")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
