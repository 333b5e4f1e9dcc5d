package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stocksense/stocksense/internal/platform/httpx"
	"github.com/stocksense/stocksense/internal/shared"
)

// Handler wires HTTP endpoints for the stock ledger.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs inventory handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stock", h.handleGetQuantity)
	r.Get("/stock/total", h.handleGetTotalQuantity)
	r.Get("/movements", h.handleMovements)
	r.Post("/receipts", h.handleReceipt)
	r.Post("/adjustments", h.handleAdjustment)
	r.Post("/transfers", h.handleTransfer)
}

type receiptRequest struct {
	ProductID   int64   `json:"product_id" validate:"required"`
	Qty         float64 `json:"qty" validate:"required,gt=0"`
	UnitCost    float64 `json:"unit_cost" validate:"gte=0"`
	BranchID    int64   `json:"branch_id"`
	WarehouseID int64   `json:"warehouse_id"`
	Reason      string  `json:"reason"`
	RefID       string  `json:"ref_id" validate:"omitempty,uuid"`
}

type adjustmentRequest struct {
	ProductID   int64   `json:"product_id" validate:"required"`
	TargetQty   float64 `json:"target_qty" validate:"gte=0"`
	BranchID    int64   `json:"branch_id"`
	WarehouseID int64   `json:"warehouse_id"`
	Reason      string  `json:"reason"`
}

type transferRequest struct {
	ProductID       int64   `json:"product_id" validate:"required"`
	Qty             float64 `json:"qty" validate:"required,gt=0"`
	FromBranchID    int64   `json:"from_branch_id"`
	FromWarehouseID int64   `json:"from_warehouse_id"`
	ToBranchID      int64   `json:"to_branch_id"`
	ToWarehouseID   int64   `json:"to_warehouse_id"`
	Reason          string  `json:"reason"`
}

type movementResponse struct {
	ID       int64     `json:"id"`
	Type     string    `json:"type"`
	Qty      float64   `json:"qty"`
	Reason   string    `json:"reason"`
	From     *Location `json:"from,omitempty"`
	To       *Location `json:"to,omitempty"`
	RefID    string    `json:"ref_id,omitempty"`
	PostedAt string    `json:"posted_at"`
}

func toMovementResponse(m Movement) movementResponse {
	return movementResponse{
		ID:       m.ID,
		Type:     string(m.Type),
		Qty:      m.Qty,
		Reason:   m.Reason,
		From:     m.From,
		To:       m.To,
		RefID:    m.RefID,
		PostedAt: m.PostedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (h *Handler) handleGetQuantity(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	productID := queryInt64(r, "product_id")
	if productID == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "product_id is required")
		return
	}
	loc := Location{BranchID: queryInt64(r, "branch_id"), WarehouseID: queryInt64(r, "warehouse_id")}
	qty, err := h.service.GetQuantity(r.Context(), scope.CompanyID, productID, loc)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"product_id": productID, "location": loc, "quantity": qty})
}

func (h *Handler) handleGetTotalQuantity(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	productID := queryInt64(r, "product_id")
	if productID == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "product_id is required")
		return
	}
	qty, err := h.service.GetTotalQuantity(r.Context(), scope.CompanyID, productID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"product_id": productID, "quantity": qty})
}

func (h *Handler) handleMovements(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	productID := queryInt64(r, "product_id")
	if productID == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "product_id is required")
		return
	}
	movements, err := h.service.GetMovementHistory(r.Context(), MovementFilter{
		CompanyID: scope.CompanyID,
		ProductID: productID,
		Limit:     int(queryInt64(r, "limit")),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]movementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"movements": out})
}

func (h *Handler) handleReceipt(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	var req receiptRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	movement, err := h.service.PostReceipt(r.Context(), ReceiptInput{
		CompanyID: scope.CompanyID,
		ProductID: req.ProductID,
		Qty:       req.Qty,
		UnitCost:  req.UnitCost,
		Location:  Location{BranchID: req.BranchID, WarehouseID: req.WarehouseID},
		Reason:    req.Reason,
		RefID:     req.RefID,
		ActorID:   scope.ActorID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toMovementResponse(movement))
}

func (h *Handler) handleAdjustment(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	var req adjustmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	movement, posted, err := h.service.PostAdjustment(r.Context(), AdjustmentInput{
		CompanyID: scope.CompanyID,
		ProductID: req.ProductID,
		TargetQty: req.TargetQty,
		Location:  Location{BranchID: req.BranchID, WarehouseID: req.WarehouseID},
		Reason:    req.Reason,
		ActorID:   scope.ActorID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !posted {
		httpx.JSON(w, http.StatusOK, map[string]any{"posted": false})
		return
	}
	httpx.JSON(w, http.StatusCreated, toMovementResponse(movement))
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	scope := shared.ScopeFromContext(r.Context())
	var req transferRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	movement, err := h.service.PostTransfer(r.Context(), TransferInput{
		CompanyID: scope.CompanyID,
		ProductID: req.ProductID,
		Qty:       req.Qty,
		From:      Location{BranchID: req.FromBranchID, WarehouseID: req.FromWarehouseID},
		To:        Location{BranchID: req.ToBranchID, WarehouseID: req.ToWarehouseID},
		Reason:    req.Reason,
		ActorID:   scope.ActorID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toMovementResponse(movement))
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficient *InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", insufficient.Error())
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidUnitCost), errors.Is(err, ErrSameLocation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		h.logger.Error("inventory request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func queryInt64(r *http.Request, key string) int64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
