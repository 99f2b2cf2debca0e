package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Share(ctx context.Context) error
	Inbox(ctx context.Context) error
	Sent(ctx context.Context) error
	Verify(ctx context.Context) error
	Status(ctx context.Context) error
	Download(ctx context.Context) error
	LoadKey(ctx context.Context) error
	Lookup(ctx context.Context) error
	Notifications(ctx context.Context) error
}

// requiresLogin reports whether a command touches services that only exist
// after authentication.
func requiresLogin(cmd string) bool {
	switch cmd {
	case "share", "inbox", "sent", "verify", "status", "download",
		"loadkey", "lookup", "notifications", "logout":
		return true
	}
	return false
}

// runREPL reads a line, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on scanner EOF or when the user types "exit" or
// "quit". Errors returned by command handlers are ignored here; handlers
// print their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("sc> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		if requiresLogin(cmd) && !a.isLoggedIn() {
			printlnFn("Log in first.")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: share, inbox, sent, verify, status, download, loadkey, lookup, notifications, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "share":
			_ = a.Share(ctx)

		case "inbox":
			_ = a.Inbox(ctx)

		case "sent":
			_ = a.Sent(ctx)

		case "verify":
			_ = a.Verify(ctx)

		case "status":
			_ = a.Status(ctx)

		case "download":
			_ = a.Download(ctx)

		case "loadkey":
			_ = a.LoadKey(ctx)

		case "lookup":
			_ = a.Lookup(ctx)

		case "notifications":
			_ = a.Notifications(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
