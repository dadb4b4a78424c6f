package transaction

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/nattapongw/banchee/internal/approval"
	"github.com/nattapongw/banchee/internal/auth"
	"github.com/nattapongw/banchee/internal/transport"
	"github.com/nattapongw/banchee/internal/workflow"
	"github.com/nattapongw/banchee/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, actor auth.Actor, dto CreateTransactionDTO) (*Transaction, error)
	GetByID(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error)
	List(ctx context.Context, actor auth.Actor, filter ListFilter) ([]*Transaction, error)
	Update(ctx context.Context, actor auth.Actor, id int64, dto UpdateTransactionDTO) (*Transaction, error)
	Delete(ctx context.Context, actor auth.Actor, id int64) error

	MarkPaidOrReceived(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error)
	DocumentReceived(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error)
	WHTIssued(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error)
	WHTSent(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error)
	InvoiceIssued(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error)
	WHTCertReceived(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error)
	Proceed(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error)
	SendToAccountant(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error)
	Confirm(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error)

	Submit(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error)
	Approve(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error)
	Reject(ctx context.Context, actor auth.Actor, id int64, reason string) (*Transaction, error)
	Withdraw(ctx context.Context, actor auth.Actor, id int64) (*Transaction, error)
	BatchApprove(ctx context.Context, actor auth.Actor, ids []int64) ([]approval.BatchResult, error)
	BatchReject(ctx context.Context, actor auth.Actor, ids []int64, reason string) ([]approval.BatchResult, error)

	AddPayment(ctx context.Context, actor auth.Actor, id int64, dto AddPaymentDTO) (*Payment, error)
	ListPayments(ctx context.Context, actor auth.Actor, id int64) ([]*Payment, error)
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

func (h *Handler) transactionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid transaction ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto CreateTransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	txn, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.Logger.Error("Create: service error", "error", err, "user_id", actor.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, txn)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.transactionID(w, r)
	if !ok {
		return
	}

	txn, err := h.Service.GetByID(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, txn)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	filter := ListFilter{
		Direction:      workflow.Direction(r.URL.Query().Get("direction")),
		Status:         workflow.Status(r.URL.Query().Get("status")),
		ApprovalStatus: r.URL.Query().Get("approval_status"),
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

	txns, err := h.Service.List(r.Context(), actor, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txns,
		"limit":        filter.Limit,
		"offset":       filter.Offset,
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.transactionID(w, r)
	if !ok {
		return
	}

	var dto UpdateTransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	txn, err := h.Service.Update(r.Context(), actor, id, dto)
	if err != nil {
		h.Logger.Error("Update: service error", "error", err, "transaction_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, txn)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.transactionID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// transition wraps the one-trigger endpoints that share a shape.
func (h *Handler) transition(op func(context.Context, auth.Actor, int64) (*Transaction, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := h.actor(w, r)
		if !ok {
			return
		}
		id, ok := h.transactionID(w, r)
		if !ok {
			return
		}

		txn, err := op(r.Context(), actor, id)
		if err != nil {
			h.Logger.Error("transition: service error", "error", err, "transaction_id", id)
			h.HandleServiceError(w, err)
			return
		}

		h.WriteJSON(w, http.StatusOK, txn)
	}
}

func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.transition(h.Service.MarkPaidOrReceived)(w, r)
}

func (h *Handler) DocumentReceived(w http.ResponseWriter, r *http.Request) {
	h.transition(h.Service.DocumentReceived)(w, r)
}

func (h *Handler) WHTIssued(w http.ResponseWriter, r *http.Request) {
	h.transition(h.Service.WHTIssued)(w, r)
}

func (h *Handler) WHTSent(w http.ResponseWriter, r *http.Request) {
	h.transition(h.Service.WHTSent)(w, r)
}

func (h *Handler) InvoiceIssued(w http.ResponseWriter, r *http.Request) {
	h.transition(h.Service.InvoiceIssued)(w, r)
}

func (h *Handler) WHTCertReceived(w http.ResponseWriter, r *http.Request) {
	h.transition(h.Service.WHTCertReceived)(w, r)
}

func (h *Handler) Proceed(w http.ResponseWriter, r *http.Request) {
	h.transition(h.Service.Proceed)(w, r)
}

func (h *Handler) SendToAccountant(w http.ResponseWriter, r *http.Request) {
	h.transition(h.Service.SendToAccountant)(w, r)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(h.Service.Confirm)(w, r)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(h.Service.Submit)(w, r)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(h.Service.Approve)(w, r)
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.transition(h.Service.Withdraw)(w, r)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.transactionID(w, r)
	if !ok {
		return
	}

	var dto RejectTransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	txn, err := h.Service.Reject(r.Context(), actor, id, dto.Reason)
	if err != nil {
		h.Logger.Error("Reject: service error", "error", err, "transaction_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, txn)
}

func (h *Handler) BatchApprove(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto BatchApproveDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.Service.BatchApprove(r.Context(), actor, dto.IDs)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (h *Handler) BatchReject(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto BatchRejectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.Service.BatchReject(r.Context(), actor, dto.IDs, dto.Reason)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (h *Handler) AddPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.transactionID(w, r)
	if !ok {
		return
	}

	var dto AddPaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payment, err := h.Service.AddPayment(r.Context(), actor, id, dto)
	if err != nil {
		h.Logger.Error("AddPayment: service error", "error", err, "transaction_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, payment)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.transactionID(w, r)
	if !ok {
		return
	}

	payments, err := h.Service.ListPayments(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"payments": payments})
}
