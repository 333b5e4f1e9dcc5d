package shared

import "errors"

var (
	// ErrNotFound indicates a missing masterdata record.
	ErrNotFound = errors.New("masterdata: not found")
	// ErrDuplicateCode indicates a unique code collision within a company.
	ErrDuplicateCode = errors.New("masterdata: code already in use")
	// ErrNotDeleted indicates a hard delete attempted on a live record.
	ErrNotDeleted = errors.New("masterdata: record must be soft-deleted first")
)
