package models

// User is an account bound to a wallet address. The wallet address is the
// identity used in access decisions (recipient checks); NotifyWebhook is an
// optional out-of-band delivery channel for key notifications.
type User struct {
	ID            string
	Username      string
	PasswordHash  []byte
	Salt          []byte
	WalletAddress string
	NotifyWebhook string
}
