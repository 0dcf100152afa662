package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"urbancabz/internal/domain"
	"urbancabz/internal/logger"
	"urbancabz/internal/notify"
	"urbancabz/internal/repositories"
	"urbancabz/internal/utils"
)

const (
	otpTTL         = 5 * time.Minute
	otpMaxAttempts = 5
)

// PasswordResetService issues and verifies one-time codes over WhatsApp.
// Codes live only in Redis, hashed, with a hard attempt cap.
type PasswordResetService struct {
	DB       *sql.DB
	Redis    *redis.Client
	Notifier notify.Dispatcher
}

func NewPasswordResetService(database *sql.DB, rdb *redis.Client, notifier notify.Dispatcher) *PasswordResetService {
	return &PasswordResetService{DB: database, Redis: rdb, Notifier: notifier}
}

func otpKey(userID int64) string      { return fmt.Sprintf("pwreset:otp:%d", userID) }
func attemptsKey(userID int64) string { return fmt.Sprintf("pwreset:attempts:%d", userID) }

// RequestReset sends a 6-digit code to the phone on file for the given
// email. The response deliberately reveals only a masked phone, never
// whether the account exists with a different number.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) (string, error) {
	if s.Redis == nil {
		return "", domain.InternalError{Msg: "password reset is not available"}
	}

	users := repositories.UserRepository{DB: s.DB}
	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.NotFoundError{Resource: "account"}
		}
		return "", domain.InternalError{Msg: "failed to fetch user", Err: err}
	}
	if user.Phone == "" {
		return "", domain.ValidationError{Field: "phone", Msg: "no phone number on file"}
	}

	otp, err := generateOTP()
	if err != nil {
		return "", domain.InternalError{Msg: "failed to generate code", Err: err}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.DefaultCost)
	if err != nil {
		return "", domain.InternalError{Msg: "failed to hash code", Err: err}
	}

	if err := s.Redis.Set(ctx, otpKey(user.ID), string(hash), otpTTL).Err(); err != nil {
		return "", domain.InternalError{Msg: "failed to store code", Err: err}
	}
	if err := s.Redis.Set(ctx, attemptsKey(user.ID), 0, otpTTL).Err(); err != nil {
		return "", domain.InternalError{Msg: "failed to store code", Err: err}
	}

	if s.Notifier != nil {
		if err := s.Notifier.SendPasswordResetOTP(ctx, user.Phone, otp, otpTTL); err != nil {
			logger.ErrorLogger.Errorf("user %d: OTP send failed: %v", user.ID, err)
			return "", domain.UpstreamError{Provider: "twilio", Err: err}
		}
	}

	logger.InfoLogger.Infof("user %d: password reset code issued", user.ID)
	return utils.MaskPhone(user.Phone), nil
}

// ConfirmReset verifies the code and sets the new password. The code burns
// on success; five wrong guesses burn it too.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, email, otp, newPassword string) error {
	if s.Redis == nil {
		return domain.InternalError{Msg: "password reset is not available"}
	}
	if len(newPassword) < 6 {
		return domain.ValidationError{Field: "new_password", Msg: "must be at least 6 characters"}
	}

	users := repositories.UserRepository{DB: s.DB}
	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFoundError{Resource: "account"}
		}
		return domain.InternalError{Msg: "failed to fetch user", Err: err}
	}

	storedHash, err := s.Redis.Get(ctx, otpKey(user.ID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ValidationError{Field: "otp", Msg: "code expired or not requested"}
		}
		return domain.InternalError{Msg: "failed to read code", Err: err}
	}

	attempts, err := s.Redis.Incr(ctx, attemptsKey(user.ID)).Result()
	if err != nil {
		return domain.InternalError{Msg: "failed to track attempts", Err: err}
	}
	if attempts > otpMaxAttempts {
		s.Redis.Del(ctx, otpKey(user.ID), attemptsKey(user.ID))
		return domain.ValidationError{Field: "otp", Msg: "too many attempts, request a new code"}
	}

	if bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(otp)) != nil {
		return domain.ValidationError{Field: "otp", Msg: "incorrect code"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.InternalError{Msg: "failed to hash password", Err: err}
	}
	if err := users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return domain.InternalError{Msg: "failed to update password", Err: err}
	}

	s.Redis.Del(ctx, otpKey(user.ID), attemptsKey(user.ID))
	logger.InfoLogger.Infof("user %d: password reset completed", user.ID)
	return nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
