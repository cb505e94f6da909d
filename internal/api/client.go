// Package api is the HTTP adapter for the portal auth API. Every endpoint
// wrapper goes through one configured pipeline: fixed base URL and timeout,
// JSON bodies, bearer-token injection from the session store, and a response
// hook that turns any 401 into a forced logout before the error reaches the
// caller. One attempt per request, no retry.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/techwork/portal-cli/internal/logging"
	"github.com/techwork/portal-cli/internal/session"
)

const (
	// BasePath is the auth API prefix appended to the configured server URL.
	BasePath = "/api/v1/auth"

	// DefaultTimeout matches the transport timeout the portal has always
	// used; there is no per-operation deadline shorter than this.
	DefaultTimeout = 50 * time.Second
)

type Client struct {
	baseURL string
	http    *http.Client
	session *session.Store
	log     logging.Logger
}

// New builds a client rooted at serverURL (scheme://host[:port], no path).
// A zero timeout falls back to DefaultTimeout.
func New(serverURL string, sess *session.Store, log logging.Logger, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(serverURL, "/") + BasePath,
		http:    &http.Client{Timeout: timeout},
		session: sess,
		log:     log,
	}
}

// do performs one JSON round trip. When skipAuthHook is true a 401 response
// does not clear the session; the login call sets it because a rejected
// initial auth attempt is not a revoked session.
func (c *Client) do(ctx context.Context, method, path string, body any, out any, skipAuthHook bool) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if token, err := c.session.Token(ctx); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if !skipAuthHook {
			if clearErr := c.session.ClearAuth(ctx); clearErr != nil {
				c.log.Error(ctx, "failed to clear session after 401", "error", clearErr)
			} else {
				c.log.Info(ctx, "session cleared", "reason", "unauthorized", "path", path)
			}
		}
		return &ServerError{StatusCode: resp.StatusCode, Message: serverMessage(raw), Err: ErrUnauthorized}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{StatusCode: resp.StatusCode, Message: serverMessage(raw)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// serverMessage pulls the human-readable message out of an error body.
func serverMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.Message
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	var resp SignupResponse
	if err := c.do(ctx, http.MethodPost, "/signup", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) VerifyOTP(ctx context.Context, userID, otp string) (*VerifyOTPResponse, error) {
	var resp VerifyOTPResponse
	err := c.do(ctx, http.MethodPost, "/verify-otp", verifyOTPRequest{UserID: userID, OTP: otp}, &resp, false)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ResendOTP(ctx context.Context, userID, otpMethod string) (*MessageResponse, error) {
	var resp MessageResponse
	err := c.do(ctx, http.MethodPost, "/resend-otp", resendOTPRequest{UserID: userID, OTPMethod: otpMethod}, &resp, false)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/login", req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email, otpMethod string) (*MessageResponse, error) {
	var resp MessageResponse
	err := c.do(ctx, http.MethodPost, "/forgotPassword", forgotPasswordRequest{Email: email, OTPMethod: otpMethod}, &resp, false)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) VerifyResetOTP(ctx context.Context, email, otp string) (*VerifyResetOTPResponse, error) {
	var resp VerifyResetOTPResponse
	err := c.do(ctx, http.MethodPost, "/verifyResetOTP", verifyResetOTPRequest{Email: email, OTP: otp}, &resp, false)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ResendResetOTP(ctx context.Context, email, otpMethod string) (*MessageResponse, error) {
	var resp MessageResponse
	err := c.do(ctx, http.MethodPost, "/resend-reset-otp", resendResetOTPRequest{Email: email, OTPMethod: otpMethod}, &resp, false)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ResetPassword(ctx context.Context, resetToken, password, confirmPassword string) (*MessageResponse, error) {
	var resp MessageResponse
	path := "/resetPassword/" + url.PathEscape(resetToken)
	err := c.do(ctx, http.MethodPatch, path, resetPasswordRequest{Password: password, ConfirmPassword: confirmPassword}, &resp, false)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdatePassword(ctx context.Context, currentPassword, password, confirmPassword string) (*MessageResponse, error) {
	var resp MessageResponse
	req := updatePasswordRequest{CurrentPassword: currentPassword, Password: password, ConfirmPassword: confirmPassword}
	err := c.do(ctx, http.MethodPatch, "/updateMyPassword", req, &resp, false)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*UpdateProfileResponse, error) {
	var resp UpdateProfileResponse
	if err := c.do(ctx, http.MethodPost, "/update-profile", update, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}
