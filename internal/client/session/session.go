// Package session carries the authenticated client identity. Every request
// that touches a file record states the caller's wallet address explicitly;
// nothing is inferred from ambient state.
package session

// Session is the logged-in identity: the wallet address used in access
// decisions and the bearer token that proves it.
type Session struct {
	WalletAddress string
	AccessToken   string
}

// Authenticated reports whether the session holds a usable token.
func (s *Session) Authenticated() bool {
	return s != nil && s.AccessToken != ""
}
