package export

import (
	"encoding/csv"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stocksense/stocksense/internal/reports"
)

var printer = message.NewPrinter(language.English)

// Renderer adapts the package-level writers to the handler's CSVWriter
// interface.
type Renderer struct{}

func (Renderer) Valuation(w io.Writer, summary reports.ValuationSummary) error {
	return WriteValuationCSV(w, summary)
}

func (Renderer) TopSellers(w io.Writer, rows []reports.TopSellerRow) error {
	return WriteTopSellersCSV(w, rows)
}

// WriteValuationCSV serialises the valuation report to CSV.
func WriteValuationCSV(w io.Writer, summary reports.ValuationSummary) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"SKU", "Name", "Unit", "Total Qty", "Stock Value", "Potential Revenue", "Status"}); err != nil {
		return err
	}
	for _, line := range summary.Lines {
		record := []string{
			line.SKU,
			line.Name,
			line.Unit,
			formatFloat(line.TotalQty),
			line.StockValue.StringFixed(2),
			line.PotentialRevenue.StringFixed(2),
			string(line.Status),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	totals := []string{
		"TOTAL", "", "",
		formatFloat(summary.TotalQty),
		summary.StockValue.StringFixed(2),
		summary.PotentialRevenue.StringFixed(2),
		"",
	}
	if err := writer.Write(totals); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// WriteTopSellersCSV emits the ranked sales report as CSV.
func WriteTopSellersCSV(w io.Writer, rows []reports.TopSellerRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Rank", "SKU", "Name", "Qty Sold", "Revenue"}); err != nil {
		return err
	}
	for i, row := range rows {
		record := []string{
			printer.Sprintf("%d", i+1),
			row.SKU,
			row.Name,
			formatFloat(row.Qty),
			formatFloat(row.Revenue),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return printer.Sprintf("%.2f", v)
}
