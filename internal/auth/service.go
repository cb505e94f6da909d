// Package auth is the flow service between the UI and the portal auth API.
// Each operation is one remote call plus its session side effect; errors are
// reported uniformly through the error return, update-profile included.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/techwork/portal-cli/internal/api"
	"github.com/techwork/portal-cli/internal/logging"
	"github.com/techwork/portal-cli/internal/models"
	"github.com/techwork/portal-cli/internal/session"
)

var (
	// ErrSessionExpired is returned when a multi-step flow is resumed but
	// its scratch state is gone; the user has to start the flow over.
	ErrSessionExpired = errors.New("session expired, please start over")

	// ErrNoResetToken means the new-password step ran before the OTP step.
	ErrNoResetToken = errors.New("no reset token found")

	// ErrInvalidServerResponse covers a 2xx response missing a field the
	// flow cannot continue without.
	ErrInvalidServerResponse = errors.New("invalid response from server")
)

// DefaultOTPMethod is used when the caller does not pick a delivery channel.
const DefaultOTPMethod = "whatsapp"

// Client is the API surface this service needs; *api.Client satisfies it.
type Client interface {
	Signup(ctx context.Context, req api.SignupRequest) (*api.SignupResponse, error)
	VerifyOTP(ctx context.Context, userID, otp string) (*api.VerifyOTPResponse, error)
	ResendOTP(ctx context.Context, userID, otpMethod string) (*api.MessageResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error)
	ForgotPassword(ctx context.Context, email, otpMethod string) (*api.MessageResponse, error)
	VerifyResetOTP(ctx context.Context, email, otp string) (*api.VerifyResetOTPResponse, error)
	ResendResetOTP(ctx context.Context, email, otpMethod string) (*api.MessageResponse, error)
	ResetPassword(ctx context.Context, resetToken, password, confirmPassword string) (*api.MessageResponse, error)
	UpdatePassword(ctx context.Context, currentPassword, password, confirmPassword string) (*api.MessageResponse, error)
	UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*api.UpdateProfileResponse, error)
}

// SignupResult is what the signup flow needs to continue into OTP entry.
type SignupResult struct {
	Message       string
	PendingUserID string
}

// Service defines the auth operations available to the flow controllers.
type Service interface {
	Signup(ctx context.Context, form SignupForm) (*SignupResult, error)
	VerifyOTP(ctx context.Context, userID, otp string) error
	ResendOTP(ctx context.Context, userID, otpMethod string) (string, error)
	Login(ctx context.Context, identifier, password string) (*models.User, error)
	ForgotPassword(ctx context.Context, email, otpMethod string) (string, error)
	VerifyResetOTP(ctx context.Context, otp string) error
	ResendPasswordResetOTP(ctx context.Context) (string, error)
	ResetPassword(ctx context.Context, password, confirmPassword string) (string, error)
	UpdatePassword(ctx context.Context, currentPassword, password, confirmPassword string) (string, error)
	UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*models.User, string, error)
	Logout(ctx context.Context)
	IsAuthenticated(ctx context.Context) bool
	CurrentUser(ctx context.Context) *models.User
	YearOptions() []models.Option
	SemesterOptions() []models.Option
	OTPMethodOptions() []models.Option
}

type service struct {
	client  Client
	session *session.Store
	log     logging.Logger
}

// NewService constructs the auth service bound to the API client and the
// persistent session store.
func NewService(client Client, sess *session.Store, log logging.Logger) Service {
	return &service{client: client, session: sess, log: log}
}

// Signup validates the form locally and registers the account. The server
// issues a pending-verification record; nothing is written to the session
// here — recording the pending user id is the flow controller's job.
func (s *service) Signup(ctx context.Context, form SignupForm) (*SignupResult, error) {
	if err := ValidateSignupForm(form); err != nil {
		return nil, err
	}

	if form.OTPMethod == "" {
		form.OTPMethod = DefaultOTPMethod
	}

	resp, err := s.client.Signup(ctx, api.SignupRequest{
		Username:        form.Username,
		Email:           form.Email,
		PhoneNumber:     form.PhoneNumber,
		WhatsappNumber:  form.WhatsappNumber,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
		YearOfStudy:     form.YearOfStudy,
		Semester:        form.Semester,
		OTPMethod:       form.OTPMethod,
	})
	if err != nil {
		return nil, err
	}

	return &SignupResult{Message: resp.Message, PendingUserID: resp.PendingUserID()}, nil
}

// VerifyOTP confirms the signup OTP and stores the issued token.
func (s *service) VerifyOTP(ctx context.Context, userID, otp string) error {
	resp, err := s.client.VerifyOTP(ctx, userID, otp)
	if err != nil {
		return err
	}
	if resp.Token != "" {
		if err := s.session.SetToken(ctx, resp.Token); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) ResendOTP(ctx context.Context, userID, otpMethod string) (string, error) {
	if otpMethod == "" {
		otpMethod = DefaultOTPMethod
	}
	resp, err := s.client.ResendOTP(ctx, userID, otpMethod)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Login authenticates with either email or username: an identifier containing
// "@" is sent as email, anything else as username. On success both the token
// and the user record are persisted.
func (s *service) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	req := api.LoginRequest{Password: password}
	if strings.Contains(identifier, "@") {
		req.Email = identifier
	} else {
		req.Username = identifier
	}

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		return nil, err
	}

	var user *models.User
	if resp.Data != nil {
		user = resp.Data.User
	}
	if resp.Token != "" && user != nil {
		if err := s.session.SetToken(ctx, resp.Token); err != nil {
			return nil, err
		}
		if err := s.session.SetUser(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// ForgotPassword requests a reset OTP and records the email and delivery
// method so the next steps can run, even after a restart.
func (s *service) ForgotPassword(ctx context.Context, email, otpMethod string) (string, error) {
	if otpMethod == "" {
		otpMethod = DefaultOTPMethod
	}
	resp, err := s.client.ForgotPassword(ctx, email, otpMethod)
	if err != nil {
		return "", err
	}
	if err := s.session.SetResetEmail(ctx, email); err != nil {
		return "", err
	}
	if err := s.session.SetResetOTPMethod(ctx, otpMethod); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// VerifyResetOTP checks the reset OTP against the email recorded by
// ForgotPassword. Without that email the flow state is gone and the call
// fails before touching the network.
func (s *service) VerifyResetOTP(ctx context.Context, otp string) error {
	email, err := s.session.ResetEmail(ctx)
	if err != nil {
		return err
	}
	if email == "" {
		return ErrSessionExpired
	}

	resp, err := s.client.VerifyResetOTP(ctx, email, otp)
	if err != nil {
		return err
	}
	if resp.ResetToken == "" {
		return ErrInvalidServerResponse
	}
	return s.session.SetResetToken(ctx, resp.ResetToken)
}

func (s *service) ResendPasswordResetOTP(ctx context.Context) (string, error) {
	email, err := s.session.ResetEmail(ctx)
	if err != nil {
		return "", err
	}
	method, err := s.session.ResetOTPMethod(ctx)
	if err != nil {
		return "", err
	}
	if email == "" || method == "" {
		return "", ErrSessionExpired
	}

	resp, err := s.client.ResendResetOTP(ctx, email, method)
	if err != nil {
		return "", err
	}
	if resp.Status != "success" {
		if resp.Message != "" {
			return "", errors.New(resp.Message)
		}
		return "", errors.New("failed to resend OTP")
	}
	return resp.Message, nil
}

// ResetPassword finishes the flow with the token stored by VerifyResetOTP
// and wipes all reset scratch state on success.
func (s *service) ResetPassword(ctx context.Context, password, confirmPassword string) (string, error) {
	resetToken, err := s.session.ResetToken(ctx)
	if err != nil {
		return "", err
	}
	if resetToken == "" {
		return "", ErrNoResetToken
	}

	resp, err := s.client.ResetPassword(ctx, resetToken, password, confirmPassword)
	if err != nil {
		return "", err
	}
	if err := s.session.ClearResetFlow(ctx); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (s *service) UpdatePassword(ctx context.Context, currentPassword, password, confirmPassword string) (string, error) {
	resp, err := s.client.UpdatePassword(ctx, currentPassword, password, confirmPassword)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// UpdateProfile submits a partial field set. There is no local auth gate: an
// unauthenticated call goes out and comes back 401, at which point the
// transport hook has already wiped any stale token. When the response carries
// a user object the cached record is overwritten wholesale.
func (s *service) UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*models.User, string, error) {
	if update.WhatsappNumber != nil && *update.WhatsappNumber != "" {
		if err := ValidateWhatsappNumber(*update.WhatsappNumber); err != nil {
			return nil, "", err
		}
	}

	resp, err := s.client.UpdateProfile(ctx, update)
	if err != nil {
		return nil, "", err
	}

	if resp.User != nil {
		if err := s.session.SetUser(ctx, resp.User); err != nil {
			return nil, "", err
		}
	}

	message := resp.Message
	if message == "" {
		message = "Profile updated successfully"
	}
	return resp.User, message, nil
}

// Logout clears the authenticated session and the reset scratch state.
// Pending-signup state survives so an unfinished verification can complete.
// Logout never fails; a storage error is logged and swallowed.
func (s *service) Logout(ctx context.Context) {
	if err := s.session.ClearAuth(ctx); err != nil {
		s.log.Error(ctx, "failed to clear session on logout", "error", err)
	}
}

func (s *service) IsAuthenticated(ctx context.Context) bool {
	return s.session.IsAuthenticated(ctx)
}

// CurrentUser returns the cached user record, nil when absent or unreadable.
func (s *service) CurrentUser(ctx context.Context) *models.User {
	u, err := s.session.User(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to read cached user", "error", err)
		return nil
	}
	return u
}

func (s *service) YearOptions() []models.Option {
	return []models.Option{
		{Value: "1", Label: "Year 1"},
		{Value: "2", Label: "Year 2"},
		{Value: "3", Label: "Year 3"},
		{Value: "4", Label: "Year 4"},
	}
}

func (s *service) SemesterOptions() []models.Option {
	return []models.Option{
		{Value: "1", Label: "Semester 1"},
		{Value: "2", Label: "Semester 2"},
	}
}

func (s *service) OTPMethodOptions() []models.Option {
	return []models.Option{
		{Value: "whatsapp", Label: "WhatsApp"},
		{Value: "email", Label: "Email"},
	}
}
