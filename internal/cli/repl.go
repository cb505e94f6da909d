package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = func(args ...any) { fmt.Println(args...) }

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	VerifyOTP(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	ShowProfile(ctx context.Context) error
	EditProfile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	UploadAvatar(ctx context.Context) error
}

// runREPL starts a read–eval–print loop for the portal CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands while signed out: signup, verify, login, forgot, reset, exit.
// Commands while signed in: profile, edit, password, avatar, logout, exit.
//
// Any errors returned by command handlers are ignored here; handlers print
// their own messages. This keeps the loop focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("portal (%s) > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: profile, edit, password, avatar, logout, exit")
			} else {
				printlnFn("Available commands: signup, verify, login, forgot, reset, exit")
			}

		case "signup":
			_ = a.Signup(ctx)

		case "verify":
			_ = a.VerifyOTP(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "forgot":
			_ = a.ForgotPassword(ctx)

		case "reset":
			_ = a.ResetPassword(ctx)

		case "profile", "whoami":
			_ = a.ShowProfile(ctx)

		case "edit":
			_ = a.EditProfile(ctx)

		case "password":
			_ = a.ChangePassword(ctx)

		case "avatar":
			_ = a.UploadAvatar(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
