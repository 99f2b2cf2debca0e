package cli

import (
	"context"
	"crypto/rsa"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/securechain/securechain/internal/common"
	"github.com/securechain/securechain/internal/cryptox"
)

// Share walks the sender through encrypting and sharing a file. The key is
// printed exactly once; it is not stored anywhere afterwards.
func (a *App) Share(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Log in first.")
		return common.ErrorUnauthorized
	}

	path, err := getSimpleText(a.reader, "Path of the file to share", os.Stdout)
	if err != nil {
		return err
	}

	plaintext, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("Cannot read file:", err)
		return err
	}

	recipient, err := getSimpleText(a.reader, "Recipient wallet address", os.Stdout)
	if err != nil {
		return err
	}

	algText, err := getSimpleText(a.reader,
		"Algorithm (aes-256-gcm, 3des-cbc-hmac, rsa-aes-hybrid) [aes-256-gcm]", os.Stdout)
	if err != nil {
		return err
	}
	if algText == "" {
		algText = string(cryptox.AlgorithmAES256GCM)
	}
	algorithm, err := cryptox.ParseAlgorithm(algText)
	if err != nil {
		fmt.Println(err)
		return err
	}

	minutesText, err := getSimpleText(a.reader, "Lock for how many minutes?", os.Stdout)
	if err != nil {
		return err
	}
	minutes, err := strconv.Atoi(minutesText)
	if err != nil || minutes < 0 {
		fmt.Println("Invalid lock duration.")
		return err
	}
	unlockTime := time.Now().Add(time.Duration(minutes) * time.Minute)

	rsaPub, err := a.promptPublicKey(algorithm)
	if err != nil {
		return err
	}

	fmt.Println("Encrypting, uploading and recording on the ledger...")
	result, err := a.shareService.Share(ctx, a.session, filepath.Base(path), plaintext,
		recipient, algorithm, unlockTime, rsaPub)
	if err != nil {
		fmt.Println("Share failed:", err)
		return err
	}

	fmt.Println("File shared.")
	fmt.Println("  File ID:     ", result.FileID)
	fmt.Println("  Transaction: ", result.TxHash)
	fmt.Println("  Unlocks at:  ", result.UnlockTime.Format(time.RFC1123))
	fmt.Println()
	fmt.Println("Decryption key (shown once, hand it to the recipient):")
	fmt.Println("  ", result.KeyHex)
	return nil
}

// promptPublicKey asks for the recipient's RSA public key when the chosen
// algorithm needs one.
func (a *App) promptPublicKey(algorithm cryptox.Algorithm) (*rsa.PublicKey, error) {
	if !algorithm.RequiresPrivateKey() {
		return nil, nil
	}

	path, err := getSimpleText(a.reader, "Path of the recipient's RSA public key (PEM)", os.Stdout)
	if err != nil {
		return nil, err
	}

	pem, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("Cannot read public key:", err)
		return nil, err
	}

	pub, err := cryptox.ParsePublicKeyPEM(pem)
	if err != nil {
		fmt.Println("Invalid public key:", err)
		return nil, err
	}
	return pub, nil
}
