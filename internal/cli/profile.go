package cli

import (
	"context"
	"os"

	"github.com/techwork/portal-cli/internal/api"
	"github.com/techwork/portal-cli/internal/auth"
	"github.com/techwork/portal-cli/internal/models"
)

func optionLabel(opts []models.Option, value string) string {
	for _, opt := range opts {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

func orNotProvided(v string) string {
	if v == "" {
		return "Not provided"
	}
	return v
}

// ShowProfile prints the cached user record. The cache is whatever the last
// login or profile-update response carried; it is not re-fetched here.
func (a *App) ShowProfile(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Please log in first.")
		return nil
	}

	u := a.authService.CurrentUser(ctx)
	if u == nil {
		printlnFn("No cached profile on this device. Log in again to refresh it.")
		return nil
	}

	printlnFn("Username:  " + u.Username)
	printlnFn("Email:     " + u.Email)
	printlnFn("Role:      " + string(u.Role))
	if u.IsVerified {
		printlnFn("Verified:  yes")
	} else {
		printlnFn("Verified:  no")
	}
	printlnFn("Phone:     " + orNotProvided(u.PhoneNumber))
	printlnFn("WhatsApp:  " + orNotProvided(u.WhatsappNumber))
	printlnFn("Year:      " + orNotProvided(optionLabel(a.authService.YearOptions(), u.YearOfStudy)))
	printlnFn("Semester:  " + orNotProvided(optionLabel(a.authService.SemesterOptions(), u.Semester)))
	printlnFn("Picture:   " + orNotProvided(u.ProfilePic))
	return nil
}

// EditProfile updates phone and WhatsApp numbers. Only fields the user
// actually changed go into the payload; an empty answer keeps the current
// value. The WhatsApp rule is enforced here as well as at signup.
func (a *App) EditProfile(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Please log in first.")
		return nil
	}

	var current models.User
	if u := a.authService.CurrentUser(ctx); u != nil {
		current = *u
	}

	phone, err := getTextDefault(a.reader, "Phone number", current.PhoneNumber, os.Stdout)
	if err != nil {
		return err
	}
	whatsapp, err := getTextDefault(a.reader, "WhatsApp number (2547xxxxxxxx)", current.WhatsappNumber, os.Stdout)
	if err != nil {
		return err
	}

	var update api.ProfileUpdate
	changed := false

	if phone != current.PhoneNumber {
		update.PhoneNumber = &phone
		changed = true
	}
	if whatsapp != current.WhatsappNumber {
		if whatsapp != "" {
			if err := auth.ValidateWhatsappNumber(whatsapp); err != nil {
				printlnFn(err.Error())
				return err
			}
		}
		update.WhatsappNumber = &whatsapp
		changed = true
	}

	if !changed {
		printlnFn("Nothing to update.")
		return nil
	}

	_, msg, err := a.authService.UpdateProfile(ctx, update)
	if err != nil {
		printlnFn("Update failed:", err.Error())
		return err
	}
	printlnFn(msg)
	return nil
}

// ChangePassword updates the password of the signed-in account.
func (a *App) ChangePassword(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Please log in first.")
		return nil
	}

	current, err := getPassword("Current password", os.Stdout)
	if err != nil {
		return err
	}
	newPassword, err := getPassword("New password (minimum 6 characters)", os.Stdout)
	if err != nil {
		return err
	}
	confirm, err := getPassword("Confirm new password", os.Stdout)
	if err != nil {
		return err
	}

	if newPassword != confirm {
		printlnFn("Passwords do not match.")
		return nil
	}

	msg, err := a.authService.UpdatePassword(ctx, current, newPassword, confirm)
	if err != nil {
		printlnFn("Password change failed:", err.Error())
		return err
	}
	if msg == "" {
		msg = "Password updated."
	}
	printlnFn(msg)
	return nil
}

// UploadAvatar validates and uploads a local image, then points the profile
// at the resulting public URL. When the update response does not echo the
// user object back, the cached record is patched in place — the one spot
// where the cache is merged instead of replaced.
func (a *App) UploadAvatar(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Please log in first.")
		return nil
	}

	path, err := getSimpleText(a.reader, "Path to image file (JPEG/PNG/GIF/WebP, max 10MB)", os.Stdout)
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}

	data, err := readFileFn(path)
	if err != nil {
		printlnFn("Cannot read file:", err.Error())
		return err
	}

	userID := ""
	if u := a.authService.CurrentUser(ctx); u != nil {
		userID = u.ID
	}

	printlnFn("Uploading...")
	url, err := a.uploader.Upload(ctx, userID, data)
	if err != nil {
		printlnFn("Upload failed:", err.Error())
		return err
	}

	user, _, err := a.authService.UpdateProfile(ctx, api.ProfileUpdate{ProfilePic: &url})
	if err != nil {
		printlnFn("Profile update failed:", err.Error())
		return err
	}

	if user == nil {
		if u := a.authService.CurrentUser(ctx); u != nil {
			u.ProfilePic = url
			if err := a.store.SetUser(ctx, u); err != nil {
				return err
			}
		}
	}

	printlnFn("Profile picture updated: " + url)
	return nil
}
