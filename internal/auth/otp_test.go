package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/houseoftheai/server/internal/email"
)

type captureSender struct {
	sent []email.SendParams
	err  error
}

func (s *captureSender) Send(ctx context.Context, params email.SendParams) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, params)
	return nil
}

func TestOTPIssuer_Issue(t *testing.T) {
	issuer := NewOTPIssuer(&captureSender{})

	otp, otpHash, expiry, err := issuer.Issue()
	require.NoError(t, err)

	require.Len(t, otp, 6)
	for _, c := range otp {
		assert.True(t, c >= '0' && c <= '9', "otp must be numeric, got %q", otp)
	}

	assert.True(t, CompareOTP(otpHash, otp), "issued code must match its own hash")
	assert.False(t, CompareOTP(otpHash, "000000"), "wrong code must not match")

	remaining := time.Until(expiry)
	assert.Greater(t, remaining, 9*time.Minute)
	assert.LessOrEqual(t, remaining, 10*time.Minute)
}

func TestOTPIssuer_IssueCodesVary(t *testing.T) {
	issuer := NewOTPIssuer(&captureSender{})

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		otp, _, _, err := issuer.Issue()
		require.NoError(t, err)
		seen[otp] = true
	}
	// 10 identical draws from a 900000-value space means a broken generator.
	assert.Greater(t, len(seen), 1)
}

func TestOTPIssuer_Dispatch(t *testing.T) {
	sender := &captureSender{}
	issuer := NewOTPIssuer(sender)

	require.NoError(t, issuer.Dispatch(context.Background(), "ada@x.com", "123456"))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "ada@x.com", msg.To)
	assert.Equal(t, "Your OTP Verification Code", msg.Subject)
	assert.True(t, strings.Contains(msg.BodyHTML, "123456"), "email body must contain the code")
}

func TestGenerateOTP_Range(t *testing.T) {
	for i := 0; i < 50; i++ {
		otp, err := generateOTP()
		require.NoError(t, err)
		require.Len(t, otp, 6)
		assert.GreaterOrEqual(t, otp, "100000")
		assert.LessOrEqual(t, otp, "999999")
	}
}
