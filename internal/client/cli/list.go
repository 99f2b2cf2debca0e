package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/securechain/securechain/internal/client/api"
	"github.com/securechain/securechain/internal/client/unlock"
	"github.com/securechain/securechain/internal/common"
)

// Inbox lists files shared with the logged-in wallet.
func (a *App) Inbox(ctx context.Context) error {
	files, err := a.apiClient.Inbox(ctx, a.session)
	if err != nil {
		fmt.Println("Listing failed:", err)
		return err
	}
	a.printFiles(files)
	return nil
}

// Sent lists files the logged-in wallet has shared.
func (a *App) Sent(ctx context.Context) error {
	files, err := a.apiClient.Sent(ctx, a.session)
	if err != nil {
		fmt.Println("Listing failed:", err)
		return err
	}
	a.printFiles(files)
	return nil
}

func (a *App) printFiles(files []api.FileInfo) {
	if len(files) == 0 {
		fmt.Println("No files.")
		return
	}
	now := time.Now()
	for _, f := range files {
		unlockTime := time.Unix(f.UnlockTime, 0)
		status := "unlockable"
		if unlock.Evaluate(unlockTime, now) == unlock.Locked {
			status = fmt.Sprintf("locked (%d min left)", unlock.RemainingMinutes(unlockTime, now))
		}
		fmt.Printf("  %s\n    from %s to %s, %s, %s\n",
			f.FileName, f.Sender, f.Recipient, f.Algorithm, status)
		fmt.Printf("    id %s\n", f.FileID)
	}
}

// Lookup prints the on-chain record bound to a fileId.
func (a *App) Lookup(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Log in first.")
		return common.ErrorUnauthorized
	}

	fileID, err := getSimpleText(a.reader, "File ID", os.Stdout)
	if err != nil {
		return err
	}

	rec, err := a.binder.Lookup(ctx, fileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			fmt.Println("No record bound to this file id.")
		} else {
			fmt.Println("Lookup failed:", err)
		}
		return err
	}

	fmt.Printf("  %s\n", rec.FileName)
	fmt.Printf("    recipient %s\n", rec.Recipient)
	fmt.Printf("    unlocks at %s\n", time.Unix(rec.UnlockTime, 0).Format(time.RFC3339))
	fmt.Printf("    stored at %s\n", rec.FileURL)
	return nil
}

// Notifications lists key-delivery traces for the logged-in wallet.
func (a *App) Notifications(ctx context.Context) error {
	items, err := a.apiClient.Notifications(ctx, a.session)
	if err != nil {
		fmt.Println("Listing failed:", err)
		return err
	}
	if len(items) == 0 {
		fmt.Println("No notifications.")
		return nil
	}
	for _, n := range items {
		delivered := "delivered to webhook"
		if !n.Delivered {
			delivered = "not delivered"
		}
		fmt.Printf("  %s from %s (%s), tx %s\n", n.FileName, n.Sender, delivered, n.TxHash)
	}
	return nil
}
