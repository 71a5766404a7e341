package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/houseoftheai/server/internal/model"
	"github.com/houseoftheai/server/internal/repo"
)

const passwordHashCost = 10

// AuthService orchestrates the two-step registration flow and the direct and
// federated login paths.
type AuthService struct {
	users   repo.UserRepo
	pending repo.PendingRepo
	otp     *OTPIssuer
	log     *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users repo.UserRepo, pending repo.PendingRepo, otp *OTPIssuer, log *slog.Logger) *AuthService {
	return &AuthService{
		users:   users,
		pending: pending,
		otp:     otp,
		log:     log,
	}
}

// Signup stages a pending signup and emails a verification code. Any older
// pending record for the same email is superseded. If the email cannot be
// delivered the freshly staged record is deleted again so no undeliverable
// signup lingers.
func (s *AuthService) Signup(ctx context.Context, name, emailAddr, password string) (tempID string, err error) {
	_, err = s.users.GetByEmail(ctx, emailAddr)
	if err == nil {
		return "", ErrDuplicateAccount
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return "", fmt.Errorf("check existing account: %w", err)
	}

	if err := s.pending.DeleteByEmail(ctx, emailAddr); err != nil {
		return "", fmt.Errorf("supersede pending signup: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	otp, otpHash, otpExpiry, err := s.otp.Issue()
	if err != nil {
		return "", err
	}

	staged, err := s.pending.Create(ctx, model.PendingUser{
		Name:         name,
		Email:        emailAddr,
		PasswordHash: string(passwordHash),
		OTPHash:      otpHash,
		OTPExpiry:    otpExpiry,
	})
	if err != nil {
		return "", fmt.Errorf("stage pending signup: %w", err)
	}

	if err := s.otp.Dispatch(ctx, emailAddr, otp); err != nil {
		// Compensate: a pending record nobody received a code for is useless.
		if delErr := s.pending.DeleteByID(ctx, staged.ID); delErr != nil {
			s.log.Warn("failed to clean up pending signup after email failure",
				slog.String("tempId", staged.ID.Hex()), slog.Any("error", delErr))
		}
		return "", err
	}

	return staged.ID.Hex(), nil
}

// VerifyOTP checks the submitted code and promotes the pending signup to a
// confirmed account. Promotion is idempotent: if a prior verify created the
// account but failed to delete the pending record, the existing account is
// reused and the stale record cleaned up.
func (s *AuthService) VerifyOTP(ctx context.Context, tempID, otp string) (model.User, error) {
	id, err := bson.ObjectIDFromHex(tempID)
	if err != nil {
		return model.User{}, ErrSessionExpired
	}

	pending, err := s.pending.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.User{}, ErrSessionExpired
		}
		return model.User{}, fmt.Errorf("load pending signup: %w", err)
	}

	if pending.OTPExpiry.Before(time.Now()) {
		return model.User{}, ErrOTPExpired
	}

	if !CompareOTP(pending.OTPHash, otp) {
		return model.User{}, ErrInvalidOTP
	}

	user, err := s.users.Create(ctx, model.User{
		Name:          pending.Name,
		Email:         pending.Email,
		PasswordHash:  pending.PasswordHash,
		EmailVerified: true,
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// A previous verify already promoted this signup.
		user, err = s.users.GetByEmail(ctx, pending.Email)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("promote pending signup: %w", err)
	}

	if err := s.pending.DeleteByID(ctx, pending.ID); err != nil {
		// The account is durable; a retry hits the idempotent path above.
		s.log.Warn("failed to delete promoted pending signup",
			slog.String("tempId", pending.ID.Hex()), slog.Any("error", err))
	}

	return user, nil
}

// ResendOTP issues a fresh code for an outstanding pending signup. The old
// code stops verifying as soon as the hash is overwritten.
func (s *AuthService) ResendOTP(ctx context.Context, tempID string) error {
	id, err := bson.ObjectIDFromHex(tempID)
	if err != nil {
		return ErrSignupExpired
	}

	pending, err := s.pending.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrSignupExpired
		}
		return fmt.Errorf("load pending signup: %w", err)
	}

	otp, otpHash, otpExpiry, err := s.otp.Issue()
	if err != nil {
		return err
	}

	if err := s.pending.ReplaceOTP(ctx, pending.ID, otpHash, otpExpiry); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrSignupExpired
		}
		return fmt.Errorf("replace otp: %w", err)
	}

	return s.otp.Dispatch(ctx, pending.Email, otp)
}

// Login authenticates with email and password. Unknown email and wrong
// password produce the same error so responses cannot be used to enumerate
// accounts.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (model.User, error) {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("load account: %w", err)
	}

	// Accounts created through federated login carry no password hash.
	if user.PasswordHash == "" {
		return model.User{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return model.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// GoogleLogin signs in with a federated identity, creating a verified account
// on first contact. An existing account with the same email is reused as-is,
// whether or not it was created through Google.
func (s *AuthService) GoogleLogin(ctx context.Context, googleID, emailAddr, name string) (model.User, error) {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return model.User{}, fmt.Errorf("load account: %w", err)
	}

	user, err = s.users.Create(ctx, model.User{
		Name:          name,
		Email:         emailAddr,
		GoogleID:      googleID,
		EmailVerified: true,
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// Lost a creation race; the account exists now.
		return s.users.GetByEmail(ctx, emailAddr)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("create account: %w", err)
	}

	return user, nil
}
