package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorAlreadyExists = errors.New("already exists")

	// Auth errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Ledger errors. ErrDuplicateRecord is final; ErrRejectedTransaction is
	// retryable by re-submitting the same inputs.
	ErrDuplicateRecord     = errors.New("file id already used")
	ErrRejectedTransaction = errors.New("transaction rejected")

	// Access-protocol errors. Key and identity failures are surfaced verbatim,
	// never retried or conflated with each other.
	ErrIdentityMismatch  = errors.New("caller is not the recipient")
	ErrKeyMismatch       = errors.New("decryption key does not match")
	ErrNotYetUnlocked    = errors.New("file is not yet unlocked")
	ErrMissingPrivateKey = errors.New("private key required for hybrid decryption")
	ErrDecryptionFailed  = errors.New("decryption failed")

	// Transport errors.
	ErrConnection = errors.New("connection error")
)
