package cli

import (
	"bufio"
	"context"
	"log"
	"os"
)

func (a *App) getStatus() string {
	if a.isLoggedIn() {
		return a.session.WalletAddress
	}
	return "not logged in"
}

func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to SecureChain CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
