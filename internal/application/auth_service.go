package application

import (
	"context"
	"time"

	"github.com/sonirghv/Gemini-backend/internal/domain"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/jwt"
	"github.com/sonirghv/Gemini-backend/internal/infrastructure/password"
	"go.uber.org/zap"
)

// AuthService handles registration, login and credential recovery
type AuthService struct {
	users  domain.UserRepository
	otp    *OTPService
	sender domain.EmailSender
	jwt    *jwt.JWT
	logger *zap.Logger
}

func NewAuthService(users domain.UserRepository, otp *OTPService, sender domain.EmailSender, jwtService *jwt.JWT, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		otp:    otp,
		sender: sender,
		jwt:    jwtService,
		logger: logger,
	}
}

// Register creates an unverified account and issues an email verification code
func (s *AuthService) Register(ctx context.Context, email, username, pwd, fullName string) (*domain.User, error) {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	exists, err = s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUsernameTaken
	}

	hashed, err := password.HashPassword(pwd)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, domain.ErrInternal
	}

	user := domain.NewUser(email, username, hashed, fullName)
	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user", zap.Error(err))
		return nil, domain.ErrInternal
	}

	// Registration succeeds even when the verification email cannot go out;
	// the user can request a resend.
	if _, sent, err := s.otp.Create(ctx, email, domain.PurposeEmailVerification); err != nil || !sent {
		s.logger.Warn("verification code not delivered at registration",
			zap.String("email", email),
			zap.Error(err))
	}

	return user, nil
}

// Login authenticates a user and returns a token pair
func (s *AuthService) Login(ctx context.Context, email, pwd string) (*domain.User, *jwt.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	if err := password.CheckPassword(pwd, user.Password); err != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, domain.ErrUserInactive
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to stamp last login", zap.Error(err))
	}
	user.LastLogin = &now

	tokens, err := s.jwt.GenerateTokenPair(user.ID, user.Roles())
	if err != nil {
		s.logger.Error("failed to generate token pair", zap.Error(err))
		return nil, nil, domain.ErrFailedGenerateToken
	}
	return user, tokens, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := s.jwt.ValidateToken(refreshToken)
	if err != nil {
		return nil, jwt.ErrInvalidToken
	}

	userID, err := domain.ParseULID(claims.Subject)
	if err != nil {
		return nil, jwt.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, jwt.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	tokens, err := s.jwt.GenerateTokenPair(user.ID, user.Roles())
	if err != nil {
		return nil, domain.ErrFailedGenerateToken
	}
	return tokens, nil
}

// VerifyEmail checks the submitted code and marks the account verified
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) (bool, string, error) {
	ok, message, _ := s.otp.Verify(ctx, email, domain.PurposeEmailVerification, code)
	if !ok {
		return false, message, nil
	}

	if err := s.users.MarkVerified(ctx, email); err != nil {
		s.logger.Error("failed to mark user verified", zap.String("email", email), zap.Error(err))
		return false, "", domain.ErrInternal
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		if sent, why := s.sender.SendWelcomeEmail(ctx, email, user.Username); !sent {
			s.logger.Warn("welcome email not delivered", zap.String("reason", why))
		}
	}

	return true, message, nil
}

// RequestPasswordReset issues a password reset code for an existing account
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (bool, error) {
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		return false, err
	}

	_, sent, err := s.otp.Create(ctx, email, domain.PurposePasswordReset)
	if err != nil {
		return false, err
	}
	return sent, nil
}

// ResetPassword verifies the reset code and replaces the user's password
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) (bool, string, error) {
	ok, message, _ := s.otp.Verify(ctx, email, domain.PurposePasswordReset, code)
	if !ok {
		return false, message, nil
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return false, "", err
	}

	hashed, err := password.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return false, "", domain.ErrInternal
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		s.logger.Error("failed to update password", zap.Error(err))
		return false, "", domain.ErrInternal
	}

	s.otp.InvalidateAll(email, domain.PurposePasswordReset)
	return true, "Password reset successfully", nil
}
