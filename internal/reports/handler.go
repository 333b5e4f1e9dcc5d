package reports

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stocksense/stocksense/internal/platform/httpx"
	"github.com/stocksense/stocksense/internal/shared"
)

// CSVWriter renders a report body; the concrete writers live in the
// export subpackage to keep this handler free of encoding detail.
type CSVWriter interface {
	Valuation(w io.Writer, summary ValuationSummary) error
	TopSellers(w io.Writer, rows []TopSellerRow) error
}

type Handler struct {
	logger  *slog.Logger
	service *Service
	csv     CSVWriter
}

func NewHandler(logger *slog.Logger, service *Service, csv CSVWriter) *Handler {
	return &Handler{logger: logger, service: service, csv: csv}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/valuation", h.handleValuation)
	r.Get("/valuation.csv", h.handleValuationCSV)
	r.Get("/low-stock", h.handleLowStock)
	r.Get("/top-sellers", h.handleTopSellers)
	r.Get("/top-sellers.csv", h.handleTopSellersCSV)
	r.Get("/movements", h.handleMovements)
}

func (h *Handler) handleValuation(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	summary, err := h.service.ValuationSummary(r.Context(), scope.CompanyID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleValuationCSV(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	summary, err := h.service.ValuationSummary(r.Context(), scope.CompanyID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="valuation.csv"`)
	if err := h.csv.Valuation(w, summary); err != nil {
		h.logger.Error("write valuation csv", slog.Any("error", err))
	}
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	lines, err := h.service.LowStock(r.Context(), scope.CompanyID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": lines})
}

func (h *Handler) handleTopSellers(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	rows, err := h.service.TopSellers(r.Context(), scope.CompanyID, sinceParam(r), limitParam(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": rows})
}

func (h *Handler) handleTopSellersCSV(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	rows, err := h.service.TopSellers(r.Context(), scope.CompanyID, sinceParam(r), limitParam(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="top-sellers.csv"`)
	if err := h.csv.TopSellers(w, rows); err != nil {
		h.logger.Error("write top sellers csv", slog.Any("error", err))
	}
}

func (h *Handler) handleMovements(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	rows, err := h.service.RecentMovements(r.Context(), scope.CompanyID, limitParam(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"movements": rows})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidCompany) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	h.logger.Error("reports request failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}

func sinceParam(r *http.Request) time.Time {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 30
	}
	return time.Now().AddDate(0, 0, -days)
}

func limitParam(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}
