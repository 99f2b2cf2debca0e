package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/securechain/securechain/internal/client/unlock"
	"github.com/securechain/securechain/internal/common"
	"github.com/securechain/securechain/internal/cryptox"
)

// Verify prompts for a fileId and the decryption key and checks them against
// the ledger-backed record. The key is read without echo and kept only in
// the in-memory verification cache.
func (a *App) Verify(ctx context.Context) error {
	fileID, err := getSimpleText(a.reader, "File ID", os.Stdout)
	if err != nil {
		return err
	}

	key, err := getSecret("Decryption key", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	entry, err := a.accessService.Verify(ctx, a.session, fileID, string(key))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrIdentityMismatch):
			fmt.Println("Access denied:", err)
		case errors.Is(err, common.ErrKeyMismatch):
			fmt.Println("The key does not match this file.")
		case errors.Is(err, common.ErrorNotFound):
			fmt.Println("No such file.")
		default:
			fmt.Println("Verification failed:", err)
		}
		return err
	}

	fmt.Println("Key verified.")
	fmt.Println("  Algorithm: ", entry.Algorithm)
	a.printState(fileID)
	return nil
}

// Status re-evaluates the time lock of a verified file.
func (a *App) Status(ctx context.Context) error {
	fileID, err := getSimpleText(a.reader, "File ID", os.Stdout)
	if err != nil {
		return err
	}
	a.printState(fileID)
	return nil
}

func (a *App) printState(fileID string) {
	state, minutes, err := a.accessService.State(fileID)
	if err != nil {
		fmt.Println("File is not verified yet.")
		return
	}
	if state == unlock.Locked {
		fmt.Printf("  Status:     locked, %d minute(s) remaining\n", minutes)
	} else {
		fmt.Println("  Status:     unlockable")
	}
}

// Download fetches and decrypts a verified file into the downloads
// directory.
func (a *App) Download(ctx context.Context) error {
	fileID, err := getSimpleText(a.reader, "File ID", os.Stdout)
	if err != nil {
		return err
	}

	path, err := a.accessService.Download(ctx, a.session, fileID, a.rsaPriv)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotYetUnlocked):
			_, minutes, stateErr := a.accessService.State(fileID)
			if stateErr == nil {
				fmt.Printf("File is still locked, %d minute(s) remaining.\n", minutes)
			} else {
				fmt.Println("File is still locked.")
			}
		case errors.Is(err, common.ErrMissingPrivateKey):
			fmt.Println("This file needs your RSA private key; load it with 'loadkey' first.")
		case errors.Is(err, common.ErrorNotFound):
			fmt.Println("Verify the key first with 'verify'.")
		case errors.Is(err, common.ErrDecryptionFailed):
			fmt.Println("Decryption failed; the ciphertext may be corrupted.")
		default:
			fmt.Println("Download failed:", err)
		}
		return err
	}

	fmt.Println("Saved decrypted file to", path)
	return nil
}

// LoadKey reads an RSA private key (PEM) for hybrid-encrypted files.
func (a *App) LoadKey(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Path of your RSA private key (PEM)", os.Stdout)
	if err != nil {
		return err
	}

	pem, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("Cannot read private key:", err)
		return err
	}

	priv, err := cryptox.ParsePrivateKeyPEM(pem)
	if err != nil {
		fmt.Println("Invalid private key:", err)
		return err
	}

	a.rsaPriv = priv
	fmt.Println("Private key loaded.")
	return nil
}
