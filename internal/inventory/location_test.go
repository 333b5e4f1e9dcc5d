package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocationKind(t *testing.T) {
	require.Equal(t, LocationCompanyWide, Location{}.Kind())
	require.Equal(t, LocationBranch, Location{BranchID: 1}.Kind())
	require.Equal(t, LocationWarehouse, Location{WarehouseID: 2}.Kind())
	require.Equal(t, LocationBranchWarehouse, Location{BranchID: 1, WarehouseID: 2}.Kind())
}

func TestLocationEquality(t *testing.T) {
	// A branch-scoped location never matches company-wide or another branch.
	require.True(t, Location{BranchID: 1}.Equal(Location{BranchID: 1}))
	require.False(t, Location{BranchID: 1}.Equal(Location{}))
	require.False(t, Location{BranchID: 1}.Equal(Location{BranchID: 2}))
	require.False(t, Location{BranchID: 1}.Equal(Location{BranchID: 1, WarehouseID: 1}))
	require.False(t, Location{WarehouseID: 1}.Equal(Location{BranchID: 1}))
}
