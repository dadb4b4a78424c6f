package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/nattapongw/banchee/internal"
	"github.com/nattapongw/banchee/internal/auth"
	"github.com/nattapongw/banchee/internal/reimbursement"
	"github.com/nattapongw/banchee/internal/transaction"
	"github.com/nattapongw/banchee/internal/transport/middleware"
	"github.com/nattapongw/banchee/internal/transport/swagger"
)

// RegisterAllRoutes mounts the full API under /api/v1. Route-level
// permission middleware is the first gate; every service re-checks
// before mutating.
func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	cfg *internal.Config,
	authHandler *auth.Handler,
	transactionHandler *transaction.Handler,
	reimbursementHandler *reimbursement.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/refresh", authHandler.RefreshToken)
			sr.Post("/logout", authHandler.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Route("/transactions", func(tr chi.Router) {
				tr.Group(func(rr chi.Router) {
					rr.Use(middleware.RequirePermissions(auth.PermTransactionsRead))
					rr.Get("/", transactionHandler.List)
					rr.Get("/{id}", transactionHandler.Get)
					rr.Get("/{id}/payments", transactionHandler.ListPayments)
				})

				tr.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(auth.PermTransactionsCreate))
					wr.Post("/", transactionHandler.Create)
				})

				tr.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(auth.PermTransactionsUpdate))
					wr.Patch("/{id}", transactionHandler.Update)
					wr.Post("/{id}/submit", transactionHandler.Submit)
					wr.Post("/{id}/withdraw", transactionHandler.Withdraw)
					wr.Post("/{id}/document-received", transactionHandler.DocumentReceived)
					wr.Post("/{id}/wht-issued", transactionHandler.WHTIssued)
					wr.Post("/{id}/wht-sent", transactionHandler.WHTSent)
					wr.Post("/{id}/invoice-issued", transactionHandler.InvoiceIssued)
					wr.Post("/{id}/wht-cert-received", transactionHandler.WHTCertReceived)
					wr.Post("/{id}/proceed", transactionHandler.Proceed)
				})

				tr.Group(func(dr chi.Router) {
					dr.Use(middleware.RequirePermissions(auth.PermTransactionsDelete))
					dr.Delete("/{id}", transactionHandler.Delete)
				})

				tr.Group(func(payr chi.Router) {
					payr.Use(middleware.RequirePermissions(auth.PermTransactionsPay))
					payr.Post("/{id}/mark-paid", transactionHandler.MarkPaid)
					payr.Post("/{id}/mark-received", transactionHandler.MarkPaid)
					payr.Post("/{id}/payments", transactionHandler.AddPayment)
				})

				tr.Group(func(sr chi.Router) {
					sr.Use(middleware.RequirePermissions(auth.PermTransactionsSend))
					sr.Post("/{id}/send", transactionHandler.SendToAccountant)
					sr.Post("/{id}/confirm", transactionHandler.Confirm)
				})

				tr.Group(func(ar chi.Router) {
					ar.Use(middleware.RequirePermissions(auth.PermTransactionsApprove))
					ar.Post("/{id}/approve", transactionHandler.Approve)
					ar.Post("/{id}/reject", transactionHandler.Reject)
					ar.Post("/batch/approve", transactionHandler.BatchApprove)
					ar.Post("/batch/reject", transactionHandler.BatchReject)
				})
			})

			pr.Route("/reimbursements", func(rr chi.Router) {
				rr.Group(func(gr chi.Router) {
					gr.Use(middleware.RequirePermissions(auth.PermReimbursementsRead))
					gr.Get("/", reimbursementHandler.List)
					gr.Get("/{id}", reimbursementHandler.Get)
				})

				rr.Group(func(cr chi.Router) {
					cr.Use(middleware.RequirePermissions(auth.PermReimbursementsCreate))
					cr.Post("/", reimbursementHandler.Create)
				})

				rr.Group(func(ar chi.Router) {
					ar.Use(middleware.RequirePermissions(auth.PermReimbursementsApprove))
					ar.Post("/{id}/approve", reimbursementHandler.Approve)
					ar.Post("/{id}/reject", reimbursementHandler.Reject)
					ar.Post("/{id}/flag", reimbursementHandler.Flag)
				})

				rr.Group(func(payr chi.Router) {
					payr.Use(middleware.RequirePermissions(auth.PermReimbursementsPay))
					payr.Post("/{id}/pay", reimbursementHandler.Pay)
					payr.Post("/convert", reimbursementHandler.Convert)
				})
			})
		})
	})
}
