package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/securechain/securechain/internal/common"
	"github.com/sethvargo/go-retry"
)

// HTTPBinder talks to the chain gateway's REST endpoints. Rejected
// submissions (consensus or gateway-side failures) are retried with
// exponential backoff; duplicates and identity errors are not.
type HTTPBinder struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries uint64
}

func NewHTTPBinder(baseURL, token string) *HTTPBinder {
	return &HTTPBinder{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		maxRetries: 3,
	}
}

func (b *HTTPBinder) Submit(ctx context.Context, rec Record) (*Receipt, error) {
	var receipt *Receipt

	backoff := retry.WithMaxRetries(b.maxRetries, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := b.submitOnce(ctx, rec)
		if err != nil {
			// Only consensus/gateway rejections are worth re-submitting.
			if errors.Is(err, common.ErrRejectedTransaction) {
				return retry.RetryableError(err)
			}
			return err
		}
		receipt = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (b *HTTPBinder) submitOnce(ctx context.Context, rec Record) (*Receipt, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/ledger/records", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.AuthorizationHeaderName, "Bearer "+b.token)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConnection, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		var receipt Receipt
		if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
			return nil, fmt.Errorf("decoding receipt: %w", err)
		}
		return &receipt, nil
	case http.StatusConflict:
		return nil, fmt.Errorf("%w: %s", common.ErrDuplicateRecord, rec.FileID)
	case http.StatusUnauthorized:
		return nil, common.ErrorUnauthorized
	default:
		msg := readErrorMessage(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", common.ErrRejectedTransaction, resp.StatusCode, msg)
	}
}

func (b *HTTPBinder) Lookup(ctx context.Context, fileID string) (*Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/ledger/records/"+fileID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(common.AuthorizationHeaderName, "Bearer "+b.token)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConnection, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var rec Record
		if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		return &rec, nil
	case http.StatusNotFound:
		return nil, common.ErrorNotFound
	case http.StatusUnauthorized:
		return nil, common.ErrorUnauthorized
	default:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, readErrorMessage(resp.Body))
	}
}

func readErrorMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
		return payload.Message
	}
	return string(raw)
}
