// Package api is the REST client for the SecureChain backend. It maps HTTP
// statuses onto the shared sentinel errors so callers can branch with
// errors.Is instead of inspecting responses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/securechain/securechain/internal/client/session"
	"github.com/securechain/securechain/internal/common"
	"github.com/securechain/securechain/internal/cryptox"
)

// FileInfo mirrors the backend's file representation.
type FileInfo struct {
	FileID     string `json:"fileId"`
	FileName   string `json:"fileName"`
	FileURL    string `json:"fileUrl"`
	Sender     string `json:"sender"`
	Recipient  string `json:"recipient"`
	Algorithm  string `json:"algorithm"`
	UnlockTime int64  `json:"unlockTime"`
	CreatedAt  int64  `json:"createdAt"`
}

// VerifyResult is the successful outcome of a key verification.
type VerifyResult struct {
	Algorithm  cryptox.Algorithm
	UnlockTime time.Time
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (c *Client) Register(ctx context.Context, username, password, walletAddress, notifyWebhook string) error {
	body := map[string]string{
		"username":      username,
		"password":      password,
		"walletAddress": walletAddress,
		"notifyWebhook": notifyWebhook,
	}

	resp, err := c.postJSON(ctx, "/api/auth/register", "", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		return nil
	case http.StatusConflict:
		return common.ErrorAlreadyExists
	default:
		return fmt.Errorf("registration failed: %s", readErrorMessage(resp.Body))
	}
}

func (c *Client) Login(ctx context.Context, username, password string) (*session.Session, error) {
	resp, err := c.postJSON(ctx, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out struct {
			AccessToken   string `json:"accessToken"`
			WalletAddress string `json:"walletAddress"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("decoding login response: %w", err)
		}
		return &session.Session{AccessToken: out.AccessToken, WalletAddress: out.WalletAddress}, nil
	case http.StatusUnauthorized:
		return nil, common.ErrorUnauthorized
	default:
		return nil, fmt.Errorf("login failed: %s", readErrorMessage(resp.Body))
	}
}

// Upload sends the ciphertext and its access parameters as a multipart form.
// The symmetric key itself never leaves the client; only its commitment is
// part of the request.
func (c *Client) Upload(ctx context.Context, sess *session.Session, fileName string, ciphertext []byte,
	recipient, keyCommitment string, algorithm cryptox.Algorithm, unlockTime time.Time) (*FileInfo, error) {

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(ciphertext); err != nil {
		return nil, err
	}
	_ = mw.WriteField("fileName", fileName)
	_ = mw.WriteField("recipient", recipient)
	_ = mw.WriteField("keyCommitment", keyCommitment)
	_ = mw.WriteField("algorithm", string(algorithm))
	_ = mw.WriteField("unlockTime", strconv.FormatInt(unlockTime.Unix(), 10))
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	setAuth(req, sess)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConnection, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		var info FileInfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return nil, fmt.Errorf("decoding upload response: %w", err)
		}
		return &info, nil
	case http.StatusUnauthorized:
		return nil, common.ErrorUnauthorized
	default:
		return nil, fmt.Errorf("upload failed: %s", readErrorMessage(resp.Body))
	}
}

// VerifyKey submits the key for server-side commitment checking. Identity and
// key failures come back as distinct sentinel errors so the caller can report
// them differently.
func (c *Client) VerifyKey(ctx context.Context, sess *session.Session, fileID, keyHex string) (*VerifyResult, error) {
	resp, err := c.postJSON(ctx, "/api/files/"+fileID+"/verify", sess.AccessToken, map[string]string{"key": keyHex})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out struct {
			Algorithm  string `json:"algorithm"`
			UnlockTime int64  `json:"unlockTime"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("decoding verify response: %w", err)
		}
		algorithm, err := cryptox.ParseAlgorithm(out.Algorithm)
		if err != nil {
			return nil, err
		}
		return &VerifyResult{Algorithm: algorithm, UnlockTime: time.Unix(out.UnlockTime, 0)}, nil
	case http.StatusForbidden:
		var out struct {
			Details struct {
				Recipient   string `json:"recipient"`
				YourAddress string `json:"yourAddress"`
			} `json:"details"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return nil, fmt.Errorf("%w: file is addressed to %s, you are %s",
			common.ErrIdentityMismatch, out.Details.Recipient, out.Details.YourAddress)
	case http.StatusBadRequest:
		return nil, common.ErrKeyMismatch
	case http.StatusNotFound:
		return nil, common.ErrorNotFound
	case http.StatusUnauthorized:
		return nil, common.ErrorUnauthorized
	default:
		return nil, fmt.Errorf("verification failed: %s", readErrorMessage(resp.Body))
	}
}

// Download fetches the ciphertext. Some proxies rewrite error statuses, so a
// 200 with a JSON body instead of a binary blob is still treated as an error
// envelope.
func (c *Client) Download(ctx context.Context, sess *session.Session, fileID, keyHex string) ([]byte, string, error) {
	resp, err := c.postJSON(ctx, "/api/files/"+fileID+"/download", sess.AccessToken, map[string]string{"key": keyHex})
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
			return nil, "", fmt.Errorf("download failed: %s", readErrorMessage(resp.Body))
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, "", fmt.Errorf("reading ciphertext: %w", err)
		}
		return data, fileNameFromDisposition(resp.Header.Get("Content-Disposition")), nil
	case http.StatusLocked:
		return nil, "", common.ErrNotYetUnlocked
	case http.StatusForbidden:
		return nil, "", common.ErrIdentityMismatch
	case http.StatusBadRequest:
		return nil, "", common.ErrKeyMismatch
	case http.StatusNotFound:
		return nil, "", common.ErrorNotFound
	case http.StatusUnauthorized:
		return nil, "", common.ErrorUnauthorized
	default:
		return nil, "", fmt.Errorf("download failed: %s", readErrorMessage(resp.Body))
	}
}

func (c *Client) Inbox(ctx context.Context, sess *session.Session) ([]FileInfo, error) {
	return c.listFiles(ctx, sess, "/api/files/inbox")
}

func (c *Client) Sent(ctx context.Context, sess *session.Session) ([]FileInfo, error) {
	return c.listFiles(ctx, sess, "/api/files/sent")
}

func (c *Client) listFiles(ctx context.Context, sess *session.Session, path string) ([]FileInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	setAuth(req, sess)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConnection, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out []FileInfo
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("decoding file list: %w", err)
		}
		return out, nil
	case http.StatusUnauthorized:
		return nil, common.ErrorUnauthorized
	default:
		return nil, fmt.Errorf("listing failed: %s", readErrorMessage(resp.Body))
	}
}

// Notify asks the backend to relay the key to the recipient's registered
// webhook. Failures are reported but a share is already complete by the time
// this is called.
func (c *Client) Notify(ctx context.Context, sess *session.Session, recipient, fileName, txHash string,
	unlockTime time.Time, keyHex string) error {

	resp, err := c.postJSON(ctx, "/api/notifications", sess.AccessToken, map[string]any{
		"recipient":  recipient,
		"fileName":   fileName,
		"txHash":     txHash,
		"unlockTime": unlockTime.Unix(),
		"key":        keyHex,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("notification failed: %s", readErrorMessage(resp.Body))
	}
	return nil
}

// NotificationInfo mirrors a backend key-delivery trace.
type NotificationInfo struct {
	ID         string `json:"id"`
	Recipient  string `json:"recipient"`
	Sender     string `json:"sender"`
	FileName   string `json:"fileName"`
	TxHash     string `json:"txHash"`
	UnlockTime int64  `json:"unlockTime"`
	Delivered  bool   `json:"delivered"`
	CreatedAt  int64  `json:"createdAt"`
}

func (c *Client) Notifications(ctx context.Context, sess *session.Session) ([]NotificationInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/notifications", nil)
	if err != nil {
		return nil, err
	}
	setAuth(req, sess)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConnection, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out []NotificationInfo
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("decoding notifications: %w", err)
		}
		return out, nil
	case http.StatusUnauthorized:
		return nil, common.ErrorUnauthorized
	default:
		return nil, fmt.Errorf("listing failed: %s", readErrorMessage(resp.Body))
	}
}

func (c *Client) postJSON(ctx context.Context, path, token string, body any) (*http.Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConnection, err)
	}
	return resp, nil
}

func setAuth(req *http.Request, sess *session.Session) {
	if sess != nil && sess.AccessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+sess.AccessToken)
	}
}

func fileNameFromDisposition(header string) string {
	const marker = `filename="`
	i := strings.Index(header, marker)
	if i < 0 {
		return ""
	}
	rest := header[i+len(marker):]
	if j := strings.Index(rest, `"`); j >= 0 {
		return rest[:j]
	}
	return rest
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
