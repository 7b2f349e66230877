package category

import "errors"

var (
	ErrNotFound      = errors.New("category not found")
	ErrHasChildren   = errors.New("category has child categories")
	ErrCycleDetected = errors.New("category hierarchy cycle detected")
	ErrSlugTaken     = errors.New("category slug already in use")
)
