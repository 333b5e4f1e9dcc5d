package export

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stocksense/stocksense/internal/inventory"
	"github.com/stocksense/stocksense/internal/reports"
)

func TestWriteValuationCSV(t *testing.T) {
	summary := reports.ValuationSummary{
		TotalQty:         14,
		StockValue:       decimal.NewFromInt(24),
		PotentialRevenue: decimal.NewFromInt(38),
		Lines: []reports.ValuationLine{
			{SKU: "A", Name: "Apple", Unit: "pcs", TotalQty: 10, StockValue: decimal.NewFromInt(20), PotentialRevenue: decimal.NewFromInt(30), Status: inventory.StatusNormal},
		},
	}

	var sb strings.Builder
	require.NoError(t, WriteValuationCSV(&sb, summary))

	out := sb.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "Stock Value")
	require.Contains(t, lines[1], "Apple")
	require.Contains(t, lines[1], "20.00")
	require.Contains(t, lines[2], "TOTAL")
	require.Contains(t, lines[2], "24.00")
}

func TestWriteTopSellersCSV(t *testing.T) {
	rows := []reports.TopSellerRow{
		{SKU: "A", Name: "Apple", Qty: 12, Revenue: 120},
		{SKU: "B", Name: "Banana", Qty: 30, Revenue: 90},
	}

	var sb strings.Builder
	require.NoError(t, WriteTopSellersCSV(&sb, rows))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[1], "1,A"))
	require.True(t, strings.HasPrefix(lines[2], "2,B"))
}
