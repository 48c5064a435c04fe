package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/tracktivity/tracktivity-api/internal/middleware"
	"github.com/tracktivity/tracktivity-api/pkg/oauth"
)

// ErrSignInFailed wraps any failure along the code-for-cookie exchange.
var ErrSignInFailed = errors.New("sign in failed")

// OAuthExchanger is the slice of the OAuth client the auth service needs.
type OAuthExchanger interface {
	Exchange(ctx context.Context, code string) (string, error)
	FetchBasicInfo(ctx context.Context, accessToken string) (oauth.BasicInfo, error)
}

// AuthService turns OAuth authorization codes into signed session tokens.
type AuthService interface {
	SignIn(ctx context.Context, authorizationCode string) (string, middleware.SessionClaims, error)
}

type authService struct {
	oauth      OAuthExchanger
	jwtSecret  string
	sessionTTL time.Duration
	logger     zerolog.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(oauthClient OAuthExchanger, jwtSecret string, sessionTTL time.Duration, logger zerolog.Logger) AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	return &authService{
		oauth:      oauthClient,
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
		logger:     logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) SignIn(ctx context.Context, authorizationCode string) (string, middleware.SessionClaims, error) {
	accessToken, err := s.oauth.Exchange(ctx, authorizationCode)
	if err != nil {
		s.logger.Warn().Err(err).Msg("authorization code exchange failed")
		return "", middleware.SessionClaims{}, ErrSignInFailed
	}

	info, err := s.oauth.FetchBasicInfo(ctx, accessToken)
	if err != nil {
		s.logger.Warn().Err(err).Msg("basic info fetch failed")
		return "", middleware.SessionClaims{}, ErrSignInFailed
	}

	now := time.Now()
	claims := middleware.SessionClaims{
		Account:        info.Account,
		AccountName:    info.AccountName,
		FirstnameEN:    info.FirstnameEN,
		LastnameEN:     info.LastnameEN,
		StudentID:      info.StudentID,
		OrganizationEN: info.OrganizationEN,
		AccountTypeID:  info.AccountTypeID,
		AccountTypeEN:  info.AccountTypeEN,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", middleware.SessionClaims{}, err
	}

	s.logger.Info().Str("user_id", info.Account).Str("role", claims.Role()).Msg("user signed in")

	return token, claims, nil
}
