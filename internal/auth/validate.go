package auth

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// whatsappPattern: Kenyan number in international form, country code 254
// followed by nine digits, twelve digits total.
var whatsappPattern = regexp.MustCompile(`^254\d{9}$`)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("ke_whatsapp", func(fl validator.FieldLevel) bool {
		return whatsappPattern.MatchString(fl.Field().String())
	})
}

// SignupForm is the full registration form. It is checked locally before any
// network call; a failed check never reaches the wire.
type SignupForm struct {
	Username        string `validate:"required"`
	Email           string `validate:"required,email"`
	PhoneNumber     string `validate:"required"`
	WhatsappNumber  string `validate:"required,ke_whatsapp"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	YearOfStudy     string
	Semester        string
	OTPMethod       string
}

// ValidateSignupForm reports the first problem with the form as a
// user-facing message.
func ValidateSignupForm(form SignupForm) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	return fieldError(fieldErrs[0])
}

// ValidateWhatsappNumber applies the same rule the signup form uses, for the
// profile editor where the number can be changed on its own.
func ValidateWhatsappNumber(number string) error {
	if !whatsappPattern.MatchString(number) {
		return errWhatsappFormat
	}
	return nil
}

var errWhatsappFormat = errors.New("WhatsApp number must start with country code 254 (e.g., 2547XXXXXXXX)")

func fieldError(fe validator.FieldError) error {
	switch fe.Field() {
	case "WhatsappNumber":
		if fe.Tag() == "ke_whatsapp" {
			return errWhatsappFormat
		}
		return errors.New("WhatsApp number is required")
	case "Email":
		if fe.Tag() == "email" {
			return errors.New("email address is not valid")
		}
		return errors.New("email is required")
	case "Password":
		if fe.Tag() == "min" {
			return errors.New("password must be at least 6 characters")
		}
		return errors.New("password is required")
	case "ConfirmPassword":
		if fe.Tag() == "eqfield" {
			return errors.New("passwords do not match")
		}
		return errors.New("password confirmation is required")
	default:
		return fmt.Errorf("%s is required", fe.Field())
	}
}
