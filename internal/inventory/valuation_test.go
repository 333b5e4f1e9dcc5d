package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	require.Equal(t, StatusOutOfStock, StatusFor(0, 5))
	require.Equal(t, StatusLowStock, StatusFor(3, 5))
	require.Equal(t, StatusLowStock, StatusFor(5, 5))
	require.Equal(t, StatusNormal, StatusFor(6, 5))
	// Threshold zero: any positive quantity is normal.
	require.Equal(t, StatusNormal, StatusFor(1, 0))
}

func TestComputeValuation(t *testing.T) {
	v := ComputeValuation(12, 2.5, 4.99, 10)
	require.InDelta(t, 12, v.TotalQty, 1e-9)
	require.True(t, v.StockValue.Equal(decimal.RequireFromString("30")), "stock value %s", v.StockValue)
	require.True(t, v.PotentialRevenue.Equal(decimal.RequireFromString("59.88")), "revenue %s", v.PotentialRevenue)
	require.Equal(t, StatusNormal, v.Status)

	v = ComputeValuation(0, 2.5, 4.99, 10)
	require.Equal(t, StatusOutOfStock, v.Status)
	require.True(t, v.StockValue.IsZero())
}
