package products

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stocksense/stocksense/internal/masterdata/shared"
	"github.com/stocksense/stocksense/internal/platform/httpx"
	sharedctx "github.com/stocksense/stocksense/internal/shared"
)

// Handler wires HTTP endpoints for the product catalog.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleSoftDelete)
	r.Post("/{id}/restore", h.handleRestore)
	r.Delete("/{id}/purge", h.handleHardDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	scope := sharedctx.ScopeFromContext(r.Context())
	q := r.URL.Query()
	filters := shared.ListFilters{
		CompanyID: scope.CompanyID,
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortDir:   q.Get("sort_dir"),
	}
	if v := q.Get("is_active"); v != "" {
		active := v == "true" || v == "1"
		filters.IsActive = &active
	}
	filters.Page, _ = strconv.Atoi(q.Get("page"))
	filters.Limit, _ = strconv.Atoi(q.Get("limit"))
	if filters.Limit <= 0 {
		filters.Limit = 20
	}

	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"products":   items,
		"pagination": sharedctx.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	scope := sharedctx.ScopeFromContext(r.Context())
	id := pathID(r)
	product, err := h.service.Get(r.Context(), scope.CompanyID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	scope := sharedctx.ScopeFromContext(r.Context())
	var form ProductForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	product, err := h.service.Create(r.Context(), productFromForm(scope.CompanyID, 0, form))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	scope := sharedctx.ScopeFromContext(r.Context())
	var form ProductForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.Update(r.Context(), productFromForm(scope.CompanyID, pathID(r), form)); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSoftDelete(w http.ResponseWriter, r *http.Request) {
	scope := sharedctx.ScopeFromContext(r.Context())
	if err := h.service.SoftDelete(r.Context(), scope.CompanyID, pathID(r)); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	scope := sharedctx.ScopeFromContext(r.Context())
	if err := h.service.Restore(r.Context(), scope.CompanyID, pathID(r)); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHardDelete(w http.ResponseWriter, r *http.Request) {
	scope := sharedctx.ScopeFromContext(r.Context())
	if err := h.service.HardDelete(r.Context(), scope.CompanyID, pathID(r)); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicateCode):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrNotDeleted):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error("products request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func productFromForm(companyID, id int64, form ProductForm) Product {
	return Product{
		ID:         id,
		CompanyID:  companyID,
		SKU:        form.SKU,
		Barcode:    form.Barcode,
		Name:       form.Name,
		Unit:       form.Unit,
		Cost:       form.Cost,
		Price:      form.Price,
		TaxPercent: form.TaxPercent,
		MinQty:     form.MinQty,
		IsActive:   form.IsActive,
	}
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}
