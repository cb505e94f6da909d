package cli

import (
	"context"
	"os"

	"github.com/techwork/portal-cli/internal/auth"
)

// Signup walks through the registration form and, on success, records the
// pending user id and OTP method so verification can continue — now, or
// after a restart. The flow then drops straight into OTP entry.
func (a *App) Signup(ctx context.Context) error {
	if a.isLoggedIn() {
		printlnFn("You are already signed in.")
		return nil
	}

	var form auth.SignupForm
	var err error

	if form.Username, err = getSimpleText(a.reader, "Choose a username", os.Stdout); err != nil {
		return err
	}
	if form.Email, err = getSimpleText(a.reader, "Enter your email", os.Stdout); err != nil {
		return err
	}
	if form.PhoneNumber, err = getSimpleText(a.reader, "Enter your phone number (07xxxxxxxx)", os.Stdout); err != nil {
		return err
	}
	if form.WhatsappNumber, err = getSimpleText(a.reader, "Enter your WhatsApp number (2547xxxxxxxx)", os.Stdout); err != nil {
		return err
	}
	if form.Password, err = getPassword("Choose a password", os.Stdout); err != nil {
		return err
	}
	if form.ConfirmPassword, err = getPassword("Confirm password", os.Stdout); err != nil {
		return err
	}
	if form.YearOfStudy, err = getChoice(a.reader, "Year of study", a.authService.YearOptions(), "1", os.Stdout); err != nil {
		return err
	}
	if form.Semester, err = getChoice(a.reader, "Semester", a.authService.SemesterOptions(), "1", os.Stdout); err != nil {
		return err
	}
	if form.OTPMethod, err = getChoice(a.reader, "How should we send the verification OTP?", a.authService.OTPMethodOptions(), auth.DefaultOTPMethod, os.Stdout); err != nil {
		return err
	}

	res, err := a.authService.Signup(ctx, form)
	if err != nil {
		printlnFn("Signup failed:", err.Error())
		return err
	}

	if res.PendingUserID == "" {
		printlnFn("Signup failed: user ID not received from server")
		return auth.ErrInvalidServerResponse
	}

	if err := a.store.SetPendingSignup(ctx, res.PendingUserID, form.OTPMethod); err != nil {
		return err
	}

	if res.Message != "" {
		printlnFn(res.Message)
	} else {
		printlnFn("Signup successful! Check your phone or email for the verification OTP.")
	}

	return a.VerifyOTP(ctx)
}
