// Package common defines shared constants and sentinel errors used across
// client and server layers of SecureChain. Callers should use errors.Is to
// match these values.
package common

import "time"

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// EncryptedFileSuffix is appended to stored file names and stripped again
// before the plaintext is offered for local save.
const EncryptedFileSuffix = ".enc"

// VerificationRetention is how long a verified-key cache entry survives past
// its unlock time before the sweep removes it.
const VerificationRetention = 24 * time.Hour
