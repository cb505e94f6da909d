package auth

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/techwork/portal-cli/internal/api"
	"github.com/techwork/portal-cli/internal/logging"
	"github.com/techwork/portal-cli/internal/models"
	"github.com/techwork/portal-cli/internal/session"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupSession(t *testing.T) *session.Store {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE session (key TEXT PRIMARY KEY, value TEXT NOT NULL);`)
	require.NoError(t, err)
	return session.NewStore(session.NewSQLiteRepository(db))
}

func newTestService(t *testing.T, client Client) (Service, *session.Store) {
	t.Helper()
	sess := setupSession(t)
	log := logging.NewDefault(io.Discard, slog.LevelError)
	return NewService(client, sess, log), sess
}

// ---- fake client ----

type fakeClient struct {
	signupCalls int
	signupReq   api.SignupRequest
	signupResp  *api.SignupResponse
	signupErr   error

	verifyOTPUserID string
	verifyOTPCode   string
	verifyOTPResp   *api.VerifyOTPResponse
	verifyOTPErr    error

	resendOTPUserID string
	resendOTPMethod string
	resendOTPResp   *api.MessageResponse
	resendOTPErr    error

	loginReq  api.LoginRequest
	loginResp *api.LoginResponse
	loginErr  error

	forgotEmail  string
	forgotMethod string
	forgotResp   *api.MessageResponse
	forgotErr    error

	verifyResetEmail string
	verifyResetOTP   string
	verifyResetCalls int
	verifyResetResp  *api.VerifyResetOTPResponse
	verifyResetErr   error

	resendResetCalls int
	resendResetResp  *api.MessageResponse
	resendResetErr   error

	resetToken string
	resetCalls int
	resetResp  *api.MessageResponse
	resetErr   error

	updatePasswordResp *api.MessageResponse
	updatePasswordErr  error

	updateProfileCalls int
	updateProfileReq   api.ProfileUpdate
	updateProfileResp  *api.UpdateProfileResponse
	updateProfileErr   error
}

func (f *fakeClient) Signup(ctx context.Context, req api.SignupRequest) (*api.SignupResponse, error) {
	f.signupCalls++
	f.signupReq = req
	return f.signupResp, f.signupErr
}

func (f *fakeClient) VerifyOTP(ctx context.Context, userID, otp string) (*api.VerifyOTPResponse, error) {
	f.verifyOTPUserID = userID
	f.verifyOTPCode = otp
	return f.verifyOTPResp, f.verifyOTPErr
}

func (f *fakeClient) ResendOTP(ctx context.Context, userID, otpMethod string) (*api.MessageResponse, error) {
	f.resendOTPUserID = userID
	f.resendOTPMethod = otpMethod
	return f.resendOTPResp, f.resendOTPErr
}

func (f *fakeClient) Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error) {
	f.loginReq = req
	return f.loginResp, f.loginErr
}

func (f *fakeClient) ForgotPassword(ctx context.Context, email, otpMethod string) (*api.MessageResponse, error) {
	f.forgotEmail = email
	f.forgotMethod = otpMethod
	return f.forgotResp, f.forgotErr
}

func (f *fakeClient) VerifyResetOTP(ctx context.Context, email, otp string) (*api.VerifyResetOTPResponse, error) {
	f.verifyResetCalls++
	f.verifyResetEmail = email
	f.verifyResetOTP = otp
	return f.verifyResetResp, f.verifyResetErr
}

func (f *fakeClient) ResendResetOTP(ctx context.Context, email, otpMethod string) (*api.MessageResponse, error) {
	f.resendResetCalls++
	return f.resendResetResp, f.resendResetErr
}

func (f *fakeClient) ResetPassword(ctx context.Context, resetToken, password, confirmPassword string) (*api.MessageResponse, error) {
	f.resetCalls++
	f.resetToken = resetToken
	return f.resetResp, f.resetErr
}

func (f *fakeClient) UpdatePassword(ctx context.Context, currentPassword, password, confirmPassword string) (*api.MessageResponse, error) {
	return f.updatePasswordResp, f.updatePasswordErr
}

func (f *fakeClient) UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*api.UpdateProfileResponse, error) {
	f.updateProfileCalls++
	f.updateProfileReq = update
	return f.updateProfileResp, f.updateProfileErr
}

func signupResponse(id string) *api.SignupResponse {
	resp := &api.SignupResponse{Status: "success", Message: "OTP sent"}
	resp.Data = &struct {
		User   *models.User `json:"user"`
		UserID string       `json:"userId"`
	}{User: &models.User{ID: id}}
	return resp
}

func loginResponse(token string, user *models.User) *api.LoginResponse {
	resp := &api.LoginResponse{Status: "success", Token: token}
	resp.Data = &struct {
		User *models.User `json:"user"`
	}{User: user}
	return resp
}

// ---- tests ----

func TestSignup_InvalidWhatsappNeverHitsNetwork(t *testing.T) {
	fc := &fakeClient{signupResp: signupResponse("u1")}
	svc, _ := newTestService(t, fc)

	form := validForm()
	form.WhatsappNumber = "0712345678"

	_, err := svc.Signup(context.Background(), form)
	require.Error(t, err)
	require.Contains(t, err.Error(), "country code 254")
	require.Zero(t, fc.signupCalls, "validation failure must reject before any network call")
}

func TestSignup_DefaultsOTPMethodAndReturnsPendingID(t *testing.T) {
	fc := &fakeClient{signupResp: signupResponse("u1")}
	svc, sess := newTestService(t, fc)

	form := validForm()
	form.OTPMethod = ""

	res, err := svc.Signup(context.Background(), form)
	require.NoError(t, err)
	require.Equal(t, "u1", res.PendingUserID)
	require.Equal(t, "whatsapp", fc.signupReq.OTPMethod)
	require.Equal(t, "1", fc.signupReq.YearOfStudy)

	// Signup itself has no session side effect.
	tempID, err := sess.TempUserID(context.Background())
	require.NoError(t, err)
	require.Empty(t, tempID)
}

func TestVerifyOTP_StoresToken(t *testing.T) {
	fc := &fakeClient{verifyOTPResp: &api.VerifyOTPResponse{Status: "success", Token: "t1"}}
	svc, sess := newTestService(t, fc)
	ctx := context.Background()

	require.NoError(t, svc.VerifyOTP(ctx, "u1", "123456"))
	require.Equal(t, "u1", fc.verifyOTPUserID)
	require.Equal(t, "123456", fc.verifyOTPCode)

	token, err := sess.Token(ctx)
	require.NoError(t, err)
	require.Equal(t, "t1", token)
	require.True(t, svc.IsAuthenticated(ctx))
}

func TestLogin_EmailVersusUsernamePayload(t *testing.T) {
	user := &models.User{ID: "u1", Username: "jdoe"}

	fc := &fakeClient{loginResp: loginResponse("t1", user)}
	svc, _ := newTestService(t, fc)
	ctx := context.Background()

	_, err := svc.Login(ctx, "user@x.com", "pw")
	require.NoError(t, err)
	require.Equal(t, "user@x.com", fc.loginReq.Email)
	require.Empty(t, fc.loginReq.Username)

	_, err = svc.Login(ctx, "someuser", "pw")
	require.NoError(t, err)
	require.Equal(t, "someuser", fc.loginReq.Username)
	require.Empty(t, fc.loginReq.Email)
}

func TestLogin_PersistsTokenAndUser(t *testing.T) {
	user := &models.User{ID: "u1", Username: "jdoe", Role: models.RoleStudent}
	fc := &fakeClient{loginResp: loginResponse("t1", user)}
	svc, sess := newTestService(t, fc)
	ctx := context.Background()

	got, err := svc.Login(ctx, "jdoe", "pw")
	require.NoError(t, err)
	require.Equal(t, "u1", got.ID)
	require.True(t, svc.IsAuthenticated(ctx))

	// Simulated reload: a fresh service over the same storage still sees it.
	cached, err := sess.User(ctx)
	require.NoError(t, err)
	require.Equal(t, "jdoe", cached.Username)
}

func TestForgotPassword_RecordsScratchState(t *testing.T) {
	fc := &fakeClient{forgotResp: &api.MessageResponse{Status: "success", Message: "OTP sent"}}
	svc, sess := newTestService(t, fc)
	ctx := context.Background()

	msg, err := svc.ForgotPassword(ctx, "jdoe@uni.ac.ke", "email")
	require.NoError(t, err)
	require.Equal(t, "OTP sent", msg)

	email, err := sess.ResetEmail(ctx)
	require.NoError(t, err)
	require.Equal(t, "jdoe@uni.ac.ke", email)
	method, err := sess.ResetOTPMethod(ctx)
	require.NoError(t, err)
	require.Equal(t, "email", method)
}

func TestVerifyResetOTP_WithoutEmailFailsBeforeNetwork(t *testing.T) {
	fc := &fakeClient{verifyResetResp: &api.VerifyResetOTPResponse{ResetToken: "rt"}}
	svc, _ := newTestService(t, fc)

	err := svc.VerifyResetOTP(context.Background(), "123456")
	require.ErrorIs(t, err, ErrSessionExpired)
	require.Zero(t, fc.verifyResetCalls)
}

func TestVerifyResetOTP_MissingResetTokenInResponse(t *testing.T) {
	fc := &fakeClient{verifyResetResp: &api.VerifyResetOTPResponse{Status: "success"}}
	svc, sess := newTestService(t, fc)
	ctx := context.Background()

	require.NoError(t, sess.SetResetEmail(ctx, "jdoe@uni.ac.ke"))
	err := svc.VerifyResetOTP(ctx, "123456")
	require.ErrorIs(t, err, ErrInvalidServerResponse)
}

func TestVerifyResetOTP_StoresResetToken(t *testing.T) {
	fc := &fakeClient{verifyResetResp: &api.VerifyResetOTPResponse{Status: "success", ResetToken: "rt-9"}}
	svc, sess := newTestService(t, fc)
	ctx := context.Background()

	require.NoError(t, sess.SetResetEmail(ctx, "jdoe@uni.ac.ke"))
	require.NoError(t, svc.VerifyResetOTP(ctx, "123456"))
	require.Equal(t, "jdoe@uni.ac.ke", fc.verifyResetEmail)

	token, err := sess.ResetToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "rt-9", token)
}

func TestResendPasswordResetOTP_RequiresScratchState(t *testing.T) {
	fc := &fakeClient{resendResetResp: &api.MessageResponse{Status: "success"}}
	svc, sess := newTestService(t, fc)
	ctx := context.Background()

	_, err := svc.ResendPasswordResetOTP(ctx)
	require.ErrorIs(t, err, ErrSessionExpired)
	require.Zero(t, fc.resendResetCalls)

	// Email alone is not enough.
	require.NoError(t, sess.SetResetEmail(ctx, "jdoe@uni.ac.ke"))
	_, err = svc.ResendPasswordResetOTP(ctx)
	require.ErrorIs(t, err, ErrSessionExpired)

	require.NoError(t, sess.SetResetOTPMethod(ctx, "whatsapp"))
	_, err = svc.ResendPasswordResetOTP(ctx)
	require.NoError(t, err)
}

func TestResendPasswordResetOTP_NonSuccessStatus(t *testing.T) {
	fc := &fakeClient{resendResetResp: &api.MessageResponse{Status: "fail", Message: "too many requests"}}
	svc, sess := newTestService(t, fc)
	ctx := context.Background()

	require.NoError(t, sess.SetResetEmail(ctx, "jdoe@uni.ac.ke"))
	require.NoError(t, sess.SetResetOTPMethod(ctx, "whatsapp"))

	_, err := svc.ResendPasswordResetOTP(ctx)
	require.EqualError(t, err, "too many requests")
}

func TestResetPassword_RequiresResetToken(t *testing.T) {
	fc := &fakeClient{resetResp: &api.MessageResponse{Status: "success", Message: "done"}}
	svc, _ := newTestService(t, fc)

	_, err := svc.ResetPassword(context.Background(), "newpw1", "newpw1")
	require.ErrorIs(t, err, ErrNoResetToken)
	require.Zero(t, fc.resetCalls)
}

func TestResetPassword_ClearsScratchOnSuccess(t *testing.T) {
	fc := &fakeClient{resetResp: &api.MessageResponse{Status: "success", Message: "done"}}
	svc, sess := newTestService(t, fc)
	ctx := context.Background()

	require.NoError(t, sess.SetResetEmail(ctx, "jdoe@uni.ac.ke"))
	require.NoError(t, sess.SetResetOTPMethod(ctx, "whatsapp"))
	require.NoError(t, sess.SetResetToken(ctx, "rt-9"))

	msg, err := svc.ResetPassword(ctx, "newpw1", "newpw1")
	require.NoError(t, err)
	require.Equal(t, "done", msg)
	require.Equal(t, "rt-9", fc.resetToken)

	email, err := sess.ResetEmail(ctx)
	require.NoError(t, err)
	require.Empty(t, email)
	token, err := sess.ResetToken(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestUpdateProfile_OverwritesCachedUserWholesale(t *testing.T) {
	updated := &models.User{ID: "u1", Username: "jdoe", PhoneNumber: "0712345678"}
	fc := &fakeClient{updateProfileResp: &api.UpdateProfileResponse{User: updated, Message: "saved"}}
	svc, sess := newTestService(t, fc)
	ctx := context.Background()

	// Stale cache with fields the response does not carry.
	require.NoError(t, sess.SetUser(ctx, &models.User{ID: "u1", Username: "old", WhatsappNumber: "254712345678"}))

	phone := "0712345678"
	user, msg, err := svc.UpdateProfile(ctx, api.ProfileUpdate{PhoneNumber: &phone})
	require.NoError(t, err)
	require.Equal(t, "saved", msg)
	require.Equal(t, "jdoe", user.Username)

	cached, err := sess.User(ctx)
	require.NoError(t, err)
	require.Equal(t, "jdoe", cached.Username)
	require.Empty(t, cached.WhatsappNumber, "cache is replaced wholesale, not merged")
}

func TestUpdateProfile_ValidatesWhatsappBeforeNetwork(t *testing.T) {
	fc := &fakeClient{updateProfileResp: &api.UpdateProfileResponse{}}
	svc, _ := newTestService(t, fc)

	bad := "0712345678"
	_, _, err := svc.UpdateProfile(context.Background(), api.ProfileUpdate{WhatsappNumber: &bad})
	require.Error(t, err)
	require.Zero(t, fc.updateProfileCalls)
}

func TestUpdateProfile_PropagatesUnauthorized(t *testing.T) {
	fc := &fakeClient{updateProfileErr: &api.ServerError{StatusCode: 401, Message: "unauthorized", Err: api.ErrUnauthorized}}
	svc, _ := newTestService(t, fc)

	phone := "0712345678"
	_, _, err := svc.UpdateProfile(context.Background(), api.ProfileUpdate{PhoneNumber: &phone})
	require.ErrorIs(t, err, api.ErrUnauthorized)
	require.Equal(t, 1, fc.updateProfileCalls, "no client-side auth gate: the call still goes out")
}

func TestLogout_ClearsAuthKeepsPendingSignup(t *testing.T) {
	fc := &fakeClient{}
	svc, sess := newTestService(t, fc)
	ctx := context.Background()

	require.NoError(t, sess.SetToken(ctx, "t1"))
	require.NoError(t, sess.SetUser(ctx, &models.User{ID: "u1"}))
	require.NoError(t, sess.SetResetEmail(ctx, "jdoe@uni.ac.ke"))
	require.NoError(t, sess.SetPendingSignup(ctx, "u2", "email"))

	svc.Logout(ctx)

	require.False(t, svc.IsAuthenticated(ctx))
	require.Nil(t, svc.CurrentUser(ctx))
	email, err := sess.ResetEmail(ctx)
	require.NoError(t, err)
	require.Empty(t, email)

	tempID, err := sess.TempUserID(ctx)
	require.NoError(t, err)
	require.Equal(t, "u2", tempID)
}

func TestSignupThenVerifyEndToEnd(t *testing.T) {
	fc := &fakeClient{
		signupResp:    signupResponse("u1"),
		verifyOTPResp: &api.VerifyOTPResponse{Status: "success", Token: "t1"},
	}
	svc, sess := newTestService(t, fc)
	ctx := context.Background()

	res, err := svc.Signup(ctx, validForm())
	require.NoError(t, err)
	require.Equal(t, "u1", res.PendingUserID)

	// The flow controller records the pending signup at response time.
	require.NoError(t, sess.SetPendingSignup(ctx, res.PendingUserID, "whatsapp"))

	require.NoError(t, svc.VerifyOTP(ctx, "u1", "123456"))
	require.True(t, svc.IsAuthenticated(ctx), "token alone decides authentication")
}

func TestOptionLists(t *testing.T) {
	svc, _ := newTestService(t, &fakeClient{})

	years := svc.YearOptions()
	require.Len(t, years, 4)
	require.Equal(t, models.Option{Value: "1", Label: "Year 1"}, years[0])

	require.Len(t, svc.SemesterOptions(), 2)

	methods := svc.OTPMethodOptions()
	require.Len(t, methods, 2)
	require.Equal(t, "whatsapp", methods[0].Value)
}

func TestServiceErrorsAreSentinels(t *testing.T) {
	fc := &fakeClient{loginErr: errors.New("boom")}
	svc, _ := newTestService(t, fc)

	_, err := svc.Login(context.Background(), "jdoe", "pw")
	require.EqualError(t, err, "boom")
}
