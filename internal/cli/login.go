package cli

import (
	"context"
	"os"
)

// Input helpers are indirected so tests can drive the flows without a
// terminal.
var (
	getSimpleText  = GetSimpleText
	getTextDefault = GetTextDefault
	getPassword    = GetPassword
	getChoice      = GetChoice
	readFileFn     = os.ReadFile
)

// Login prompts for an identifier and password and authenticates. An
// identifier containing "@" is treated as an email, anything else as a
// username; the service does the routing.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		printlnFn("You are already signed in.")
		return nil
	}

	identifier, err := getSimpleText(a.reader, "Enter email or username", os.Stdout)
	if err != nil {
		return err
	}
	if identifier == "" {
		return nil
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.authService.Login(ctx, identifier, password)
	if err != nil {
		printlnFn("Login failed:", err.Error())
		return err
	}

	a.wasAuthed = true
	if user != nil && user.Username != "" {
		printlnFn("Welcome back, " + user.Username + "!")
	} else {
		printlnFn("Logged in.")
	}
	return nil
}

// Logout clears the session. The flag goes down first so the session watcher
// stays quiet about a logout the user asked for.
func (a *App) Logout(ctx context.Context) error {
	a.wasAuthed = false
	a.authService.Logout(ctx)
	printlnFn("Logged out.")
	return nil
}
