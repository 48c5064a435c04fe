package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/tracktivity/tracktivity-api/internal/middleware"
	"github.com/tracktivity/tracktivity-api/pkg/oauth"
)

type oauthStub struct {
	info        oauth.BasicInfo
	exchangeErr error
	infoErr     error
	seenCode    string
}

func (o *oauthStub) Exchange(ctx context.Context, code string) (string, error) {
	o.seenCode = code
	if o.exchangeErr != nil {
		return "", o.exchangeErr
	}
	return "access-token", nil
}

func (o *oauthStub) FetchBasicInfo(ctx context.Context, accessToken string) (oauth.BasicInfo, error) {
	if o.infoErr != nil {
		return oauth.BasicInfo{}, o.infoErr
	}
	return o.info, nil
}

func TestAuthServiceSignInIssuesSignedToken(t *testing.T) {
	stub := &oauthStub{info: oauth.BasicInfo{
		Account:       "jdoe@cmu.ac.th",
		FirstnameEN:   "John",
		LastnameEN:    "Doe",
		StudentID:     "650612345",
		AccountTypeID: "StdAcc",
	}}
	svc := NewAuthService(stub, "secret", time.Hour, testLogger())

	token, claims, err := svc.SignIn(context.Background(), "auth-code")
	require.NoError(t, err)
	require.Equal(t, "auth-code", stub.seenCode)
	require.Equal(t, middleware.RoleStudent, claims.Role())

	parsed := &middleware.SessionClaims{}
	decoded, err := jwt.ParseWithClaims(token, parsed, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, decoded.Valid)
	require.Equal(t, "jdoe@cmu.ac.th", parsed.Account)
	require.Equal(t, "650612345", parsed.StudentID)
	require.WithinDuration(t, time.Now().Add(time.Hour), parsed.ExpiresAt.Time, 5*time.Second)
}

func TestAuthServiceSignInMapsAdminRole(t *testing.T) {
	stub := &oauthStub{info: oauth.BasicInfo{
		Account:       "staff@cmu.ac.th",
		AccountTypeID: "MISEmpAcc",
	}}
	svc := NewAuthService(stub, "secret", time.Hour, testLogger())

	_, claims, err := svc.SignIn(context.Background(), "auth-code")
	require.NoError(t, err)
	require.Equal(t, middleware.RoleAdmin, claims.Role())
}

func TestAuthServiceSignInFailures(t *testing.T) {
	svc := NewAuthService(&oauthStub{exchangeErr: errors.New("bad code")}, "secret", time.Hour, testLogger())
	_, _, err := svc.SignIn(context.Background(), "bad")
	require.ErrorIs(t, err, ErrSignInFailed)

	svc = NewAuthService(&oauthStub{infoErr: errors.New("upstream down")}, "secret", time.Hour, testLogger())
	_, _, err = svc.SignIn(context.Background(), "ok")
	require.ErrorIs(t, err, ErrSignInFailed)
}
