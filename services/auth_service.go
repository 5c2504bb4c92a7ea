package services

import (
	"context"
	"fmt"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/kendall-kelly/kendalls-studio-api/config"
	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/kendall-kelly/kendalls-studio-api/utils"
	"github.com/sirupsen/logrus"
)

// Session is returned by login and refresh
type Session struct {
	UserID       uint   `json:"user_id"`
	Role         string `json:"role"`
	AccessToken  string `json:"jwt"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // access token lifetime in seconds
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthService logs users in, refreshes sessions and registers new accounts
type AuthService struct {
	users        *UserService
	verification *VerificationService
	validator    *validator.Validator
	key          []byte
	audience     string
	accessTTL    time.Duration
	refreshTTL   time.Duration
	now          func() time.Time
}

func NewAuthService(cfg *config.Config, users *UserService, verification *VerificationService) (*AuthService, error) {
	key := cfg.SigningKey()
	v, err := utils.NewTokenValidator(key, cfg.JWTAudience)
	if err != nil {
		return nil, fmt.Errorf("failed to set up token validator: %w", err)
	}

	return &AuthService{
		users:        users,
		verification: verification,
		validator:    v,
		key:          key,
		audience:     cfg.JWTAudience,
		accessTTL:    time.Duration(cfg.AuthTokenExpirationMinutes) * time.Minute,
		refreshTTL:   time.Duration(cfg.RefreshTokenExpirationDays) * 24 * time.Hour,
		now:          time.Now,
	}, nil
}

func (s *AuthService) sign(subject string, authorities []string, tokenType string, ttl time.Duration) (string, error) {
	return utils.SignToken(s.key, s.audience, utils.TokenSpec{
		Subject:     subject,
		Authorities: authorities,
		Type:        tokenType,
		IssuedAt:    s.now(),
		TTL:         ttl,
	})
}

func (s *AuthService) session(user *models.User, access, refresh string) *Session {
	return &Session{
		UserID:       user.ID,
		Role:         user.Role,
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}
}

// Login checks credentials and issues an access and a refresh token
func (s *AuthService) Login(ctx context.Context, login, password string) (*Session, error) {
	user, err := s.users.CheckCredentials(ctx, login, password)
	if err != nil {
		return nil, err
	}

	authorities := []string{user.Authority()}
	access, err := s.sign(user.Username, authorities, "", s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user.Username, authorities, utils.TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	logrus.WithField("user_id", user.ID).Info("User logged in")
	return s.session(user, access, refresh), nil
}

// Refresh issues a new access token for a valid refresh token. The refresh
// token itself is returned unchanged.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	validated, err := s.validator.ValidateToken(ctx, refreshToken)
	if err != nil {
		logrus.WithError(err).Debug("Refresh token rejected")
		return nil, authenticationFailed("invalid refresh token")
	}
	subject, claims, err := utils.ClaimsFrom(validated)
	if err != nil || !claims.IsRefresh() {
		return nil, authenticationFailed("invalid refresh token")
	}

	user, err := s.users.GetByUsernameOrEmail(ctx, subject)
	if err != nil {
		return nil, authenticationFailed("invalid refresh token")
	}

	access, err := s.sign(subject, claims.Authorities, "", s.accessTTL)
	if err != nil {
		return nil, err
	}
	return s.session(user, access, refreshToken), nil
}

// Register creates an inactive USER account and mails a verification code
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.verification.Enroll(ctx, CreateUserInput{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      models.RoleUser,
		IsActive:  false,
	})
}
