package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Locals keys populated by the session middleware.
const (
	LocalsSession  = "session"
	LocalsUserID   = "user_id"
	LocalsUserRole = "user_role"
)

// Role values derived from the OAuth account type.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// SessionClaims mirrors the OAuth basic-info payload signed into the session
// token at sign-in.
type SessionClaims struct {
	Account          string `json:"cmuitaccount"`
	AccountName      string `json:"cmuitaccount_name"`
	FirstnameEN      string `json:"firstname_EN"`
	LastnameEN       string `json:"lastname_EN"`
	StudentID        string `json:"student_id"`
	OrganizationEN   string `json:"organization_name_EN"`
	AccountTypeID    string `json:"itaccounttype_id"`
	AccountTypeEN    string `json:"itaccounttype_EN"`
	jwt.RegisteredClaims
}

// Role maps the identity provider's account type onto the two roles the
// application distinguishes.
func (c SessionClaims) Role() string {
	switch c.AccountTypeID {
	case "StdAcc":
		return RoleStudent
	case "MISEmpAcc":
		return RoleAdmin
	default:
		if strings.EqualFold(c.AccountTypeEN, "MIS Employee") {
			return RoleAdmin
		}
		return RoleStudent
	}
}

// Session resolves the signed session token once per request and stores the
// decoded claims in locals. It never rejects by itself; route guards decide
// whether an anonymous request may proceed.
func Session(cookieName, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := strings.TrimSpace(c.Cookies(cookieName))
		if tokenString == "" {
			if auth := c.Get("Authorization"); strings.HasPrefix(strings.ToLower(auth), "bearer ") {
				tokenString = strings.TrimSpace(auth[len("bearer "):])
			}
		}
		if tokenString == "" {
			return c.Next()
		}

		claims := &SessionClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return c.Next()
		}

		c.Locals(LocalsSession, claims)
		c.Locals(LocalsUserID, claims.Account)
		c.Locals(LocalsUserRole, claims.Role())

		return c.Next()
	}
}

// ClaimsFromCtx returns the resolved session claims, or nil for anonymous requests.
func ClaimsFromCtx(c *fiber.Ctx) *SessionClaims {
	claims, _ := c.Locals(LocalsSession).(*SessionClaims)
	return claims
}
