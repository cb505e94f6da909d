package api

import "github.com/techwork/portal-cli/internal/models"

// Request and response shapes of the portal auth API. Field names follow the
// wire format exactly; the API reports outcomes as {status, message, ...}.

type SignupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	WhatsappNumber  string `json:"whatsappNumber"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	YearOfStudy     string `json:"yearOfStudy"`
	Semester        string `json:"semester"`
	OTPMethod       string `json:"otpMethod"`
}

type SignupResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    *struct {
		User   *models.User `json:"user"`
		UserID string       `json:"userId"`
	} `json:"data"`
}

// PendingUserID returns the server-issued id of the not-yet-verified account,
// whichever of the two places the API put it in.
func (r *SignupResponse) PendingUserID() string {
	if r.Data == nil {
		return ""
	}
	if r.Data.User != nil && r.Data.User.ID != "" {
		return r.Data.User.ID
	}
	return r.Data.UserID
}

type verifyOTPRequest struct {
	UserID string `json:"userId"`
	OTP    string `json:"otp"`
}

type VerifyOTPResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

type resendOTPRequest struct {
	UserID    string `json:"userId"`
	OTPMethod string `json:"otpMethod"`
}

// LoginRequest carries exactly one of Email or Username, chosen by the
// caller based on the identifier shape.
type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Token   string `json:"token"`
	Data    *struct {
		User *models.User `json:"user"`
	} `json:"data"`
}

type forgotPasswordRequest struct {
	Email     string `json:"email"`
	OTPMethod string `json:"otpMethod"`
}

type verifyResetOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type VerifyResetOTPResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	ResetToken string `json:"resetToken"`
}

type resendResetOTPRequest struct {
	Email     string `json:"email"`
	OTPMethod string `json:"otpMethod"`
}

type resetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ProfileUpdate is a partial field set; nil pointers are omitted from the
// payload so untouched fields stay untouched server-side.
type ProfileUpdate struct {
	Username       *string `json:"username,omitempty"`
	PhoneNumber    *string `json:"phoneNumber,omitempty"`
	WhatsappNumber *string `json:"whatsappNumber,omitempty"`
	YearOfStudy    *string `json:"yearOfStudy,omitempty"`
	Semester       *string `json:"semester,omitempty"`
	ProfilePic     *string `json:"profilePic,omitempty"`
}

type UpdateProfileResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// MessageResponse covers the endpoints that answer with a status and a
// human-readable message only.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
