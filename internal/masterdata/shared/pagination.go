package shared

// ListFilters carries common listing options for masterdata repositories.
type ListFilters struct {
	CompanyID int64
	Search    string
	IsActive  *bool
	Page      int
	Limit     int
	SortBy    string
	SortDir   string
}
