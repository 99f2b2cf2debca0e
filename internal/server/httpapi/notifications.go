package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/securechain/securechain/internal/server/models"
)

type notifyRequest struct {
	Recipient  string `json:"recipient"`
	FileName   string `json:"fileName"`
	TxHash     string `json:"txHash"`
	UnlockTime int64  `json:"unlockTime"`
	Key        string `json:"key"`
}

type notificationResponse struct {
	ID         string `json:"id"`
	Recipient  string `json:"recipient"`
	Sender     string `json:"sender"`
	FileName   string `json:"fileName"`
	TxHash     string `json:"txHash"`
	UnlockTime int64  `json:"unlockTime"`
	Delivered  bool   `json:"delivered"`
	CreatedAt  int64  `json:"createdAt"`
}

func toNotificationResponse(n *models.Notification) notificationResponse {
	return notificationResponse{
		ID:         n.ID,
		Recipient:  n.Recipient,
		Sender:     n.Sender,
		FileName:   n.FileName,
		TxHash:     n.TxHash,
		UnlockTime: n.UnlockTime.Unix(),
		Delivered:  n.Delivered,
		CreatedAt:  n.CreatedAt.Unix(),
	}
}

// sendNotification relays the decryption key to the recipient's registered
// webhook and records a metadata trace. The key travels through this request
// and the relay only; the stored row never contains it.
func (h *Handler) sendNotification(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Recipient == "" || req.Key == "" {
		writeError(w, http.StatusBadRequest, "recipient and key are required")
		return
	}

	n, err := h.notify.Notify(r.Context(), req.Recipient, caller(r).WalletAddress,
		req.FileName, req.TxHash, time.Unix(req.UnlockTime, 0), req.Key)
	if err != nil {
		h.logger.Error(r.Context(), "notification failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "notification failed")
		return
	}

	writeJSON(w, http.StatusCreated, toNotificationResponse(n))
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	items, err := h.notify.List(r.Context(), caller(r).WalletAddress)
	if err != nil {
		h.logger.Error(r.Context(), "notification listing failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "listing failed")
		return
	}

	result := make([]notificationResponse, 0, len(items))
	for _, n := range items {
		result = append(result, toNotificationResponse(n))
	}
	writeJSON(w, http.StatusOK, result)
}
