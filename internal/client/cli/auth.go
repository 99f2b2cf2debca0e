package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/securechain/securechain/internal/common"
)

// getSimpleText and getSecret are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getSecret = GetSecret

// Register prompts for account details and creates the account. The wallet
// address entered here becomes the identity files can be addressed to.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getSecret("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	wallet, err := getSimpleText(a.reader, "Enter wallet address", os.Stdout)
	if err != nil {
		return err
	}

	webhook, err := getSimpleText(a.reader, "Enter notification webhook URL (optional)", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.apiClient.Register(ctx, username, string(password), wallet, webhook); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			fmt.Println("Username or wallet address is already registered.")
			return err
		}
		fmt.Println("Registration failed:", err)
		return err
	}

	fmt.Println("Account created. You can now log in.")
	return nil
}

// Login authenticates and remembers the session for subsequent commands.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getSecret("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.apiClient.Login(ctx, username, string(password))
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			fmt.Println("Invalid credentials.")
			return err
		}
		fmt.Println("Login failed:", err)
		return err
	}

	a.session = sess
	a.initShareService()
	fmt.Printf("Logged in as %s\n", sess.WalletAddress)
	return nil
}

// Logout drops the session and any loaded private key.
func (a *App) Logout(ctx context.Context) error {
	a.session = nil
	a.shareService = nil
	a.rsaPriv = nil
	fmt.Println("Logged out.")
	return nil
}
