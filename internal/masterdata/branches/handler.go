package branches

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stocksense/stocksense/internal/masterdata/shared"
	"github.com/stocksense/stocksense/internal/platform/httpx"
	sharedctx "github.com/stocksense/stocksense/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

type branchForm struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	IsActive bool   `json:"is_active"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	scope := sharedctx.ScopeFromContext(r.Context())
	q := r.URL.Query()
	filters := shared.ListFilters{CompanyID: scope.CompanyID, Search: q.Get("search")}
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
		"branches":   items,
		"pagination": sharedctx.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	scope := sharedctx.ScopeFromContext(r.Context())
	branch, err := h.service.Get(r.Context(), scope.CompanyID, pathID(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, branch)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	scope := sharedctx.ScopeFromContext(r.Context())
	var form branchForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	branch, err := h.service.Create(r.Context(), Branch{
		CompanyID: scope.CompanyID,
		Code:      form.Code,
		Name:      form.Name,
		Address:   form.Address,
		Phone:     form.Phone,
		IsActive:  form.IsActive,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, branch)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	scope := sharedctx.ScopeFromContext(r.Context())
	var form branchForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	err := h.service.Update(r.Context(), Branch{
		ID:        pathID(r),
		CompanyID: scope.CompanyID,
		Code:      form.Code,
		Name:      form.Name,
		Address:   form.Address,
		Phone:     form.Phone,
		IsActive:  form.IsActive,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	scope := sharedctx.ScopeFromContext(r.Context())
	if err := h.service.Delete(r.Context(), scope.CompanyID, pathID(r)); err != nil {
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
	default:
		h.logger.Error("branches request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}
