package auth

import "errors"

// Domain errors surfaced to clients as 400-class responses. Everything else
// coming out of this package is a dependency failure and maps to a generic
// 500 at the HTTP boundary.
var (
	// ErrDuplicateAccount: signup attempted for an email with a confirmed account.
	ErrDuplicateAccount = errors.New("email already registered")
	// ErrSessionExpired: verify-otp referenced an unknown or already-promoted tempId.
	ErrSessionExpired = errors.New("signup session expired")
	// ErrOTPExpired: the code's expiry instant has passed.
	ErrOTPExpired = errors.New("otp expired")
	// ErrInvalidOTP: the submitted code does not match the stored hash.
	ErrInvalidOTP = errors.New("invalid otp")
	// ErrSignupExpired: resend-otp referenced an unknown tempId.
	ErrSignupExpired = errors.New("signup expired")
	// ErrInvalidCredentials covers both unknown email and wrong password;
	// the two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
