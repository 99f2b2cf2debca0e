package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/securechain/securechain/internal/common"
	"github.com/securechain/securechain/internal/server/auth"
	"github.com/securechain/securechain/internal/server/models"
)

type contextKey string

const callerContextKey contextKey = "caller"

// authMiddleware validates the bearer token and loads the caller's user row.
// The wallet address is resolved per request rather than embedded in the
// token, so identity checks always see the current account state.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, err := auth.GetUserIDFromToken(token, []byte(h.cfg.SecretKey))
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "token expired")
				return
			}
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		user, err := h.users.GetByID(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unknown user")
			return
		}

		ctx := context.WithValue(r.Context(), callerContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// caller returns the authenticated user set by authMiddleware.
func caller(r *http.Request) *models.User {
	user, _ := r.Context().Value(callerContextKey).(*models.User)
	return user
}
