// Package httpapi exposes the SecureChain REST surface: account auth, file
// upload and the verify/download access gates, the chain-gateway ledger
// endpoints, and key-delivery notifications.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/securechain/securechain/internal/logging"
	"github.com/securechain/securechain/internal/server/config"
	"github.com/securechain/securechain/internal/server/services"
)

type Handler struct {
	cfg     *config.Config
	users   *services.UserService
	files   *services.FileService
	ledger  *services.LedgerService
	notify  *services.NotifyService
	logger  logging.Logger
}

func NewHandler(cfg *config.Config, users *services.UserService, files *services.FileService,
	ledgerSvc *services.LedgerService, notify *services.NotifyService, logger logging.Logger) *Handler {
	return &Handler{
		cfg:    cfg,
		users:  users,
		files:  files,
		ledger: ledgerSvc,
		notify: notify,
		logger: logger,
	}
}

// NewRouter assembles the chi router. Everything except registration and
// login requires a bearer token; the auth middleware resolves the token to
// the caller's wallet address, which is the identity the access gates check.
func (h *Handler) NewRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware)

			r.Post("/files", h.uploadFile)
			r.Get("/files/inbox", h.listInbox)
			r.Get("/files/sent", h.listSent)
			r.Post("/files/{fileID}/verify", h.verifyKey)
			r.Post("/files/{fileID}/download", h.downloadFile)

			r.Post("/ledger/records", h.submitLedgerRecord)
			r.Get("/ledger/records/{fileID}", h.lookupLedgerRecord)

			r.Post("/notifications", h.sendNotification)
			r.Get("/notifications", h.listNotifications)
		})
	})

	return r
}

// errorResponse is the JSON error envelope. Details is only present on
// identity failures, Code and RemainingMinutes only on locked downloads.
type errorResponse struct {
	Message          string            `json:"message"`
	Code             string            `json:"code,omitempty"`
	Details          map[string]string `json:"details,omitempty"`
	RemainingMinutes int64             `json:"remainingMinutes,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}
