// Package models holds the client-side data types mirrored from the portal API.
package models

// Role is the access level assigned by the server.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// User is the portal account record as returned by the auth API.
//
// The client keeps a read-mostly cache of the last-known server copy; it is
// overwritten wholesale from login and profile-update responses and must not
// be treated as the source of truth.
type User struct {
	ID             string `json:"_id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Role           Role   `json:"role"`
	IsVerified     bool   `json:"isVerified"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
	WhatsappNumber string `json:"whatsappNumber,omitempty"`
	YearOfStudy    string `json:"yearOfStudy,omitempty"`
	Semester       string `json:"semester,omitempty"`
	ProfilePic     string `json:"profilePic,omitempty"`
}

// Option is a value/label pair for fixed select lists (year, semester,
// OTP delivery method).
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
