package utils

import (
	"errors"
	"time"

	"dailytracker/backend/config"

	"github.com/golang-jwt/jwt/v4"
)

// Session tokens live for 7 days, matching the session cookie max age.
const SessionTokenTTL = 7 * 24 * time.Hour

// Password reset tokens are short-lived and carry a purpose claim so a
// session token can never be replayed as a reset token.
const resetTokenTTL = time.Hour

var ErrInvalidToken = errors.New("invalid token")

func GenerateSessionToken(userID uint, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(SessionTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseSessionToken verifies a session token and returns the user ID.
func ParseSessionToken(tokenString string, cfg *config.Config) (uint, error) {
	claims, err := parseClaims(tokenString, cfg)
	if err != nil {
		return 0, err
	}
	if purpose, _ := claims["purpose"].(string); purpose != "" {
		return 0, ErrInvalidToken
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}
	return uint(userIDFloat), nil
}

func GeneratePasswordResetToken(email string, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"email":   email,
		"purpose": "password_reset",
		"exp":     time.Now().Add(resetTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// VerifyPasswordResetToken returns the email a reset token was issued for.
func VerifyPasswordResetToken(tokenString string, cfg *config.Config) (string, error) {
	claims, err := parseClaims(tokenString, cfg)
	if err != nil {
		return "", err
	}
	if purpose, _ := claims["purpose"].(string); purpose != "password_reset" {
		return "", ErrInvalidToken
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", ErrInvalidToken
	}
	return email, nil
}

func parseClaims(tokenString string, cfg *config.Config) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
