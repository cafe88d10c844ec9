package token

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/nahid-hossain/flocknet/backend/internal/models"
)

// CookieName is the session cookie carrying the signed token.
const CookieName = "jwt"

// Lifetime is how long an issued token and its cookie stay valid.
const Lifetime = 15 * 24 * time.Hour

// Generate issues a signed HS256 token embedding the user id.
func Generate(userID, secret string) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(Lifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// Parse verifies a token string and returns the embedded user id.
func Parse(tokenString, secret string) (string, error) {
	claims := &models.JwtCustomClaims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !t.Valid {
		return "", fmt.Errorf("invalid token")
	}
	return claims.UserID, nil
}

// SetCookie writes the session cookie. Secure is only set outside
// development so local HTTP testing keeps working.
func SetCookie(c echo.Context, tokenString, env string) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    tokenString,
		MaxAge:   int(Lifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   env != "development",
		Path:     "/",
	})
}

// ClearCookie expires the session cookie.
func ClearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}
