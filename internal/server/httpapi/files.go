package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/securechain/securechain/internal/common"
	"github.com/securechain/securechain/internal/cryptox"
	"github.com/securechain/securechain/internal/server/models"
)

// maxUploadBytes bounds a single ciphertext upload.
const maxUploadBytes = 64 << 20

type fileResponse struct {
	FileID     string `json:"fileId"`
	FileName   string `json:"fileName"`
	FileURL    string `json:"fileUrl"`
	Sender     string `json:"sender"`
	Recipient  string `json:"recipient"`
	Algorithm  string `json:"algorithm"`
	UnlockTime int64  `json:"unlockTime"`
	CreatedAt  int64  `json:"createdAt"`
}

func toFileResponse(rec *models.FileRecord) fileResponse {
	return fileResponse{
		FileID:     rec.FileID,
		FileName:   rec.FileName,
		FileURL:    rec.FileURL,
		Sender:     rec.Sender,
		Recipient:  rec.Recipient,
		Algorithm:  rec.Algorithm,
		UnlockTime: rec.UnlockTime.Unix(),
		CreatedAt:  rec.CreatedAt.Unix(),
	}
}

// uploadFile accepts a multipart form with the ciphertext under "file" plus
// recipient, keyCommitment, algorithm and unlockTime fields. The plaintext
// key never appears in the request.
func (h *Handler) uploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	ciphertext, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable file")
		return
	}

	recipient := r.FormValue("recipient")
	commitment := r.FormValue("keyCommitment")
	if recipient == "" || commitment == "" {
		writeError(w, http.StatusBadRequest, "recipient and keyCommitment are required")
		return
	}

	algorithm, err := cryptox.ParseAlgorithm(r.FormValue("algorithm"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	unlockUnix, err := parseUnixSeconds(r.FormValue("unlockTime"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid unlockTime")
		return
	}

	fileName := r.FormValue("fileName")
	if fileName == "" {
		fileName = header.Filename
	}

	rec, err := h.files.Upload(r.Context(), caller(r).WalletAddress, fileName, ciphertext,
		recipient, commitment, algorithm, time.Unix(unlockUnix, 0))
	if err != nil {
		h.logger.Error(r.Context(), "upload failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	writeJSON(w, http.StatusCreated, toFileResponse(rec))
}

type keyRequest struct {
	Key string `json:"key"`
}

// verifyKey runs the identity and key gates and, on success, reveals the
// algorithm and unlock time so the client can plan decryption. The identity
// failure deliberately includes both addresses; the key failure says nothing
// beyond the mismatch.
func (h *Handler) verifyKey(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	callerWallet := caller(r).WalletAddress
	fileID := chi.URLParam(r, "fileID")

	rec, err := h.files.VerifyKey(r.Context(), callerWallet, fileID, req.Key)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			writeError(w, http.StatusNotFound, "file not found")
		case errors.Is(err, common.ErrIdentityMismatch):
			writeJSON(w, http.StatusForbidden, errorResponse{
				Message: "access denied: you are not the recipient of this file",
				Details: map[string]string{
					"recipient":   rec.Recipient,
					"yourAddress": callerWallet,
				},
			})
		case errors.Is(err, common.ErrKeyMismatch):
			writeError(w, http.StatusBadRequest, "decryption key does not match")
		default:
			h.logger.Error(r.Context(), "verify failed", "error", err.Error())
			writeError(w, http.StatusInternalServerError, "verification failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"verified":   true,
		"algorithm":  rec.Algorithm,
		"unlockTime": rec.UnlockTime.Unix(),
	})
}

// downloadFile re-runs the gates, enforces the unlock time, and streams the
// ciphertext. A locked file answers 423 with the minutes left, rounded up.
func (h *Handler) downloadFile(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	callerWallet := caller(r).WalletAddress
	fileID := chi.URLParam(r, "fileID")

	data, rec, err := h.files.Download(r.Context(), callerWallet, fileID, req.Key)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			writeError(w, http.StatusNotFound, "file not found")
		case errors.Is(err, common.ErrIdentityMismatch):
			writeJSON(w, http.StatusForbidden, errorResponse{
				Message: "access denied: you are not the recipient of this file",
				Details: map[string]string{
					"recipient":   rec.Recipient,
					"yourAddress": callerWallet,
				},
			})
		case errors.Is(err, common.ErrKeyMismatch):
			writeError(w, http.StatusBadRequest, "decryption key does not match")
		case errors.Is(err, common.ErrNotYetUnlocked):
			writeJSON(w, http.StatusLocked, errorResponse{
				Message:          "file is not yet unlocked",
				Code:             "not_yet_unlocked",
				RemainingMinutes: remainingMinutes(rec.UnlockTime, time.Now()),
			})
		default:
			h.logger.Error(r.Context(), "download failed", "error", err.Error())
			writeError(w, http.StatusInternalServerError, "download failed")
		}
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+rec.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) listInbox(w http.ResponseWriter, r *http.Request) {
	h.listFiles(w, r, h.files.ListInbox)
}

func (h *Handler) listSent(w http.ResponseWriter, r *http.Request) {
	h.listFiles(w, r, h.files.ListSent)
}

func (h *Handler) listFiles(w http.ResponseWriter, r *http.Request,
	list func(ctx context.Context, wallet string) ([]*models.FileRecord, error)) {

	records, err := list(r.Context(), caller(r).WalletAddress)
	if err != nil {
		h.logger.Error(r.Context(), "file listing failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "listing failed")
		return
	}

	result := make([]fileResponse, 0, len(records))
	for _, rec := range records {
		result = append(result, toFileResponse(rec))
	}
	writeJSON(w, http.StatusOK, result)
}

func parseUnixSeconds(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// remainingMinutes rounds the time left until unlock up to whole minutes, so
// a lock is never reported as zero minutes while still active.
func remainingMinutes(unlockTime, now time.Time) int64 {
	remaining := unlockTime.Sub(now)
	if remaining <= 0 {
		return 0
	}
	minutes := int64(remaining / time.Minute)
	if remaining%time.Minute != 0 {
		minutes++
	}
	return minutes
}
