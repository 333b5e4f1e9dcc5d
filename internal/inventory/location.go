package inventory

import "fmt"

// LocationKind enumerates the scopes a stock record may be held at.
type LocationKind string

const (
	// LocationCompanyWide marks stock held without branch or warehouse scope.
	LocationCompanyWide LocationKind = "COMPANY"
	// LocationBranch marks stock scoped to a branch only.
	LocationBranch LocationKind = "BRANCH"
	// LocationWarehouse marks stock scoped to a warehouse only.
	LocationWarehouse LocationKind = "WAREHOUSE"
	// LocationBranchWarehouse marks stock scoped to a warehouse within a branch.
	LocationBranchWarehouse LocationKind = "BRANCH_WAREHOUSE"
)

// Location pins a stock record to a branch, a warehouse, both, or neither.
// The zero value means company-wide. Lookups compare the full key, so a
// branch-scoped record never matches a company-wide one.
type Location struct {
	BranchID    int64 `json:"branch_id,omitempty"`
	WarehouseID int64 `json:"warehouse_id,omitempty"`
}

// Kind reports which scope variant the location represents.
func (l Location) Kind() LocationKind {
	switch {
	case l.BranchID != 0 && l.WarehouseID != 0:
		return LocationBranchWarehouse
	case l.BranchID != 0:
		return LocationBranch
	case l.WarehouseID != 0:
		return LocationWarehouse
	default:
		return LocationCompanyWide
	}
}

// Equal reports whether two locations name the same key.
func (l Location) Equal(other Location) bool {
	return l == other
}

// String renders a compact key form used in idempotency keys and logs.
func (l Location) String() string {
	return fmt.Sprintf("b%d:w%d", l.BranchID, l.WarehouseID)
}
