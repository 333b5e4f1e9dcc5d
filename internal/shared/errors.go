package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrCompanyRequired indicates a request arrived without tenant scope.
	ErrCompanyRequired = errors.New("company scope required")
)
