package cli

import (
	"context"
	"os"

	"github.com/techwork/portal-cli/internal/auth"
)

// ForgotPassword starts the password-reset flow: request an OTP for the
// account email, then continue into the reset steps.
func (a *App) ForgotPassword(ctx context.Context) error {
	if a.isLoggedIn() {
		printlnFn("You are already signed in.")
		return nil
	}

	email, err := getSimpleText(a.reader, "Enter your account email", os.Stdout)
	if err != nil {
		return err
	}
	if email == "" {
		return nil
	}

	method, err := getChoice(a.reader, "How should we send the OTP?", a.authService.OTPMethodOptions(), auth.DefaultOTPMethod, os.Stdout)
	if err != nil {
		return err
	}

	msg, err := a.authService.ForgotPassword(ctx, email, method)
	if err != nil {
		printlnFn("Request failed:", err.Error())
		return err
	}
	if msg == "" {
		msg = "OTP sent. Check your " + optionLabel(a.authService.OTPMethodOptions(), method) + "."
	}
	printlnFn(msg)

	return a.ResetPassword(ctx)
}

// ResetPassword resumes the reset flow from whatever scratch state survived:
// with a reset token it goes straight to the new-password step, with only a
// recorded email it starts at OTP entry, with neither it tells the user to
// run 'forgot' first.
func (a *App) ResetPassword(ctx context.Context) error {
	if a.isLoggedIn() {
		printlnFn("You are already signed in.")
		return nil
	}

	resetToken, err := a.store.ResetToken(ctx)
	if err != nil {
		return err
	}

	if resetToken == "" {
		email, err := a.store.ResetEmail(ctx)
		if err != nil {
			return err
		}
		if email == "" {
			printlnFn("No password reset in progress. Use 'forgot' to request one.")
			return nil
		}

		if done, err := a.resetOTPStep(ctx); err != nil || !done {
			return err
		}
	}

	return a.newPasswordStep(ctx)
}

// resetOTPStep prompts for the reset OTP until it verifies, the user cancels,
// or the flow state expires. Returns true when the OTP was accepted.
func (a *App) resetOTPStep(ctx context.Context) (bool, error) {
	for {
		otp, err := getSimpleText(a.reader, "Enter the reset OTP ('r' to resend, empty line to cancel)", os.Stdout)
		if err != nil {
			return false, err
		}

		switch otp {
		case "":
			printlnFn("Reset cancelled. Run 'reset' to pick it up again.")
			return false, nil

		case "r":
			msg, err := a.authService.ResendPasswordResetOTP(ctx)
			if err != nil {
				printlnFn("Resend failed:", err.Error())
				if err == auth.ErrSessionExpired {
					return false, err
				}
				continue
			}
			if msg == "" {
				msg = "New OTP sent."
			}
			printlnFn(msg)
			continue
		}

		if err := a.authService.VerifyResetOTP(ctx, otp); err != nil {
			printlnFn("OTP verification failed:", err.Error())
			if err == auth.ErrSessionExpired {
				return false, err
			}
			continue
		}

		printlnFn("OTP verified. Set your new password.")
		return true, nil
	}
}

// newPasswordStep reads the new password twice and finishes the reset.
func (a *App) newPasswordStep(ctx context.Context) error {
	for {
		password, err := getPassword("New password (minimum 6 characters)", os.Stdout)
		if err != nil {
			return err
		}
		confirm, err := getPassword("Confirm new password", os.Stdout)
		if err != nil {
			return err
		}

		if len(password) < 6 {
			printlnFn("Password must be at least 6 characters.")
			continue
		}
		if password != confirm {
			printlnFn("Passwords do not match.")
			continue
		}

		msg, err := a.authService.ResetPassword(ctx, password, confirm)
		if err != nil {
			printlnFn("Reset failed:", err.Error())
			return err
		}
		if msg == "" {
			msg = "Password reset. You can now log in with your new password."
		}
		printlnFn(msg)

		return a.Login(ctx)
	}
}
