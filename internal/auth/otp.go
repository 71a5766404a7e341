package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/houseoftheai/server/internal/email"
)

const (
	otpTTL      = 10 * time.Minute
	otpHashCost = 10
)

// OTPIssuer generates one-time codes and dispatches them by email. The
// plaintext code exists only between Issue and Dispatch; it is never stored,
// logged, or returned to the API client.
type OTPIssuer struct {
	sender email.Sender
}

// NewOTPIssuer creates a new OTP issuer
func NewOTPIssuer(sender email.Sender) *OTPIssuer {
	return &OTPIssuer{sender: sender}
}

// Issue generates a 6-digit code, its bcrypt hash, and the expiry instant.
func (i *OTPIssuer) Issue() (otp, otpHash string, expiry time.Time, err error) {
	otp, err = generateOTP()
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("generate otp: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(otp), otpHashCost)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("hash otp: %w", err)
	}

	return otp, string(hash), time.Now().Add(otpTTL), nil
}

// Dispatch sends the plaintext code to the address.
func (i *OTPIssuer) Dispatch(ctx context.Context, to, otp string) error {
	if err := i.sender.Send(ctx, email.OTPEmail(to, otp)); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	return nil
}

// CompareOTP checks a candidate code against a stored hash.
func CompareOTP(otpHash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(otpHash), []byte(candidate)) == nil
}

// generateOTP samples a 6-digit decimal code from a secure random source.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
