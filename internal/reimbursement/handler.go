package reimbursement

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/nattapongw/banchee/internal/auth"
	"github.com/nattapongw/banchee/internal/transaction"
	"github.com/nattapongw/banchee/internal/transport"
	"github.com/nattapongw/banchee/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, actor auth.Actor, dto CreateReimbursementDTO) (*Reimbursement, error)
	GetByID(ctx context.Context, actor auth.Actor, id int64) (*Reimbursement, error)
	List(ctx context.Context, actor auth.Actor, filter ListFilter) ([]*Reimbursement, error)
	Approve(ctx context.Context, actor auth.Actor, id int64) (*Reimbursement, error)
	Reject(ctx context.Context, actor auth.Actor, id int64, reason string) (*Reimbursement, error)
	Flag(ctx context.Context, actor auth.Actor, id int64, reason string) (*Reimbursement, error)
	Pay(ctx context.Context, actor auth.Actor, id int64, dto PayReimbursementDTO) (*Reimbursement, error)
	Convert(ctx context.Context, actor auth.Actor, dto ConvertDTO) (*transaction.Transaction, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (auth.Actor, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return auth.Actor{}, false
	}
	return user.Actor(), true
}

func (h *Handler) claimID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid reimbursement ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto CreateReimbursementDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claim, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.Logger.Error("Create: service error", "error", err, "user_id", actor.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, claim)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.claimID(w, r)
	if !ok {
		return
	}

	claim, err := h.Service.GetByID(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, claim)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	filter := ListFilter{Status: r.URL.Query().Get("status")}
	if requesterStr := r.URL.Query().Get("requester_id"); requesterStr != "" {
		if id, err := strconv.ParseInt(requesterStr, 10, 64); err == nil {
			filter.RequesterID = id
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = o
		}
	}
	filter.Normalize()

	claims, err := h.Service.List(r.Context(), actor, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reimbursements": claims,
		"limit":          filter.Limit,
		"offset":         filter.Offset,
	})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.claimID(w, r)
	if !ok {
		return
	}

	claim, err := h.Service.Approve(r.Context(), actor, id)
	if err != nil {
		h.Logger.Error("Approve: service error", "error", err, "reimbursement_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, claim)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.claimID(w, r)
	if !ok {
		return
	}

	var dto RejectReimbursementDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	claim, err := h.Service.Reject(r.Context(), actor, id, dto.Reason)
	if err != nil {
		h.Logger.Error("Reject: service error", "error", err, "reimbursement_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, claim)
}

func (h *Handler) Flag(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.claimID(w, r)
	if !ok {
		return
	}

	var dto FlagReimbursementDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	claim, err := h.Service.Flag(r.Context(), actor, id, dto.Reason)
	if err != nil {
		h.Logger.Error("Flag: service error", "error", err, "reimbursement_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, claim)
}

func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.claimID(w, r)
	if !ok {
		return
	}

	var dto PayReimbursementDTO
	if r.Body != nil {
		// The payment reference is optional; an empty body is fine.
		_ = json.NewDecoder(r.Body).Decode(&dto)
	}

	claim, err := h.Service.Pay(r.Context(), actor, id, dto)
	if err != nil {
		h.Logger.Error("Pay: service error", "error", err, "reimbursement_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, claim)
}

func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto ConvertDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	expense, err := h.Service.Convert(r.Context(), actor, dto)
	if err != nil {
		h.Logger.Error("Convert: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, expense)
}
