package httpapi

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type emailRequest struct {
	Email string `json:"email"`
}

func (r emailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.EmailFormat),
	)
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"verificationCode"`
}

func (r verifyEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.EmailFormat),
		validation.Field(&r.Code, validation.Required, validation.Length(1, 32)),
	)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.EmailFormat),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 1024)),
	)
}

// setPasswordRequest names its target by userId or email; the guard has
// already bound that identity to the session.
type setPasswordRequest struct {
	UserID             string `json:"userId"`
	Email              string `json:"email"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

func (r setPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.When(r.Email == "", validation.Required)),
		validation.Field(&r.Email, validation.When(r.UserID == "", validation.Required), is.EmailFormat),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(1, 1024)),
		validation.Field(&r.ConfirmNewPassword, validation.Required, validation.Length(1, 1024)),
	)
}

type sessionRequest struct {
	SessionID string `json:"sessionId"`
}

func (r sessionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SessionID, validation.Required, validation.Length(1, 256)),
	)
}
