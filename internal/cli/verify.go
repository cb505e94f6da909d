package cli

import (
	"context"
	"os"

	"github.com/techwork/portal-cli/internal/auth"
)

// VerifyOTP is the signup-verification step. Its entry states are kept
// distinct on purpose: an authenticated user has nothing to verify, and a
// missing pending-signup id means no verification was ever started on this
// device — which is not the same as "already verified".
func (a *App) VerifyOTP(ctx context.Context) error {
	if a.isLoggedIn() {
		printlnFn("You are already signed in; nothing to verify.")
		return nil
	}

	userID, err := a.store.TempUserID(ctx)
	if err != nil {
		return err
	}
	if userID == "" {
		printlnFn("No pending signup verification on this device.")
		printlnFn("If you already have an account, use 'login'; otherwise start with 'signup'.")
		return nil
	}

	method, err := a.store.OTPMethod(ctx)
	if err != nil {
		return err
	}
	if method == "" {
		method = auth.DefaultOTPMethod
	}

	for {
		otp, err := getSimpleText(a.reader, "Enter the 6-digit OTP ('r' to resend, empty line to cancel)", os.Stdout)
		if err != nil {
			return err
		}

		switch otp {
		case "":
			printlnFn("Verification cancelled. Run 'verify' to pick it up again.")
			return nil

		case "r":
			msg, err := a.authService.ResendOTP(ctx, userID, method)
			if err != nil {
				printlnFn("Resend failed:", err.Error())
				continue
			}
			if msg == "" {
				msg = "New OTP sent. Check your phone or email."
			}
			printlnFn(msg)
			continue
		}

		if err := a.authService.VerifyOTP(ctx, userID, otp); err != nil {
			printlnFn("Verification failed:", err.Error())
			continue
		}

		// Terminal state: wipe the pending-signup scratch together with the
		// fresh token, then hand over to login. The flag goes down first so
		// the watcher does not mistake the wipe for a revoked session.
		a.wasAuthed = false
		if err := a.store.ClearPendingSignup(ctx); err != nil {
			return err
		}

		printlnFn("Your account has been verified. Please log in.")
		return a.Login(ctx)
	}
}
