package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/securechain/securechain/internal/common"
	"github.com/securechain/securechain/internal/logging"
	"github.com/securechain/securechain/internal/server/models"
	"github.com/securechain/securechain/internal/server/repositories/repomanager"
)

// NotifyService records key-delivery traces and relays the key itself to the
// recipient's registered webhook. The persisted row is metadata only: the
// key appears in the relayed payload and nowhere else. Relay failures are
// best-effort and never fail the share that triggered them.
type NotifyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	client      *http.Client
	logger      logging.Logger
}

func NewNotifyService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *NotifyService {
	return &NotifyService{
		db:          db,
		repomanager: m,
		client:      &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

type webhookPayload struct {
	Recipient  string `json:"recipient"`
	Sender     string `json:"sender"`
	FileName   string `json:"fileName"`
	TxHash     string `json:"txHash"`
	UnlockTime int64  `json:"unlockTime"`
	Key        string `json:"key"`
}

// Notify persists the delivery trace and, if the recipient wallet has a
// registered webhook, posts the key there. The returned notification row
// reflects whether the relay succeeded.
func (s *NotifyService) Notify(ctx context.Context, recipient, sender, fileName, txHash string,
	unlockTime time.Time, keyHex string) (*models.Notification, error) {

	n := &models.Notification{
		ID:         uuid.New().String(),
		Recipient:  recipient,
		Sender:     sender,
		FileName:   fileName,
		TxHash:     txHash,
		UnlockTime: unlockTime,
	}

	user, err := s.repomanager.Users(s.db).GetByWalletAddress(ctx, recipient)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		// Recipient has no account here; the sender hands the key over out
		// of band.
	case err != nil:
		return nil, fmt.Errorf("error resolving recipient: %w", err)
	case user.NotifyWebhook != "":
		if relayErr := s.relay(ctx, user.NotifyWebhook, webhookPayload{
			Recipient:  recipient,
			Sender:     sender,
			FileName:   fileName,
			TxHash:     txHash,
			UnlockTime: unlockTime.Unix(),
			Key:        keyHex,
		}); relayErr != nil {
			s.logger.Warn(ctx, "key relay failed", "recipient", recipient, "error", relayErr.Error())
		} else {
			n.Delivered = true
		}
	}

	if err := s.repomanager.Notifications(s.db).Create(ctx, n); err != nil {
		return nil, fmt.Errorf("error saving notification: %w", err)
	}
	return n, nil
}

// List returns the wallet's notifications, newest first.
func (s *NotifyService) List(ctx context.Context, wallet string) ([]*models.Notification, error) {
	return s.repomanager.Notifications(s.db).ListByRecipient(ctx, wallet)
}

func (s *NotifyService) relay(ctx context.Context, webhook string, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
