package model

import "errors"

var (
	// ErrNotConfigured is returned by vendor wrappers whose credentials are
	// absent. The string is part of the envelope contract.
	ErrNotConfigured = errors.New("not configured")

	ErrUnknownAction      = errors.New("unknown action")
	ErrPlannerUnavailable = errors.New("planner model unavailable")
)
