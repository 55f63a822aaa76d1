package auth

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type JwtCustomClaims struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// tokenLookup accepts the session token from the Authorization header or
// the session cookie the storefront sets at login.
const tokenLookup = "header:Authorization:Bearer ,cookie:session"

// RequireSession rejects requests without a valid token with a 401 JSON
// body. Used for reads where the client must be told to log in.
func RequireSession(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JwtCustomClaims)
		},
		SigningKey:  []byte(secret),
		TokenLookup: tokenLookup,
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(401, map[string]string{"error": "unauthorized"})
		},
	})
}

// OptionalSession parses a token when one is present and lets the request
// through either way. Handlers behind it decide what an absent session
// means (empty order history, absent address).
func OptionalSession(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JwtCustomClaims)
		},
		SigningKey:             []byte(secret),
		TokenLookup:            tokenLookup,
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
	})
}

// ResolveSession returns the acting user id and role from the parsed
// token, or ok=false when the request carries no usable session. A missing
// user id in the claims counts as no session, never as an anonymous one.
func ResolveSession(c echo.Context) (userID int, role string, ok bool) {
	token, isToken := c.Get("user").(*jwt.Token)
	if !isToken {
		return 0, "", false
	}
	claims, isClaims := token.Claims.(*JwtCustomClaims)
	if !isClaims || claims.UserID <= 0 {
		return 0, "", false
	}
	return claims.UserID, claims.Role, true
}
