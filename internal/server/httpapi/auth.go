package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/securechain/securechain/internal/common"
)

type registerRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	WalletAddress string `json:"walletAddress"`
	NotifyWebhook string `json:"notifyWebhook,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" || req.WalletAddress == "" {
		writeError(w, http.StatusBadRequest, "username, password and walletAddress are required")
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Password, req.WalletAddress, req.NotifyWebhook)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			writeError(w, http.StatusConflict, "username or wallet address already registered")
			return
		}
		h.logger.Error(r.Context(), "registration failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"walletAddress": user.WalletAddress,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error(r.Context(), "login failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"accessToken":   token,
		"walletAddress": user.WalletAddress,
	})
}
