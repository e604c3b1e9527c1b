package auth

import (
	"errors"
	"time"

	"github.com/dzuokumor/Civic-voice/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenExpiry       = 24 * time.Hour
	VerificationTokenExpiry = 24 * time.Hour

	purposeEmailVerification = "email_verification"
)

type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type verificationClaims struct {
	UserID  string `json:"userId"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func GenerateAccessToken(user *model.User, secret string) (string, error) {
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "civicvoice",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateAccessToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// GenerateVerificationToken issues the purpose-scoped token embedded in the
// account verification email.
func GenerateVerificationToken(userID, secret string) (string, error) {
	claims := verificationClaims{
		UserID:  userID,
		Purpose: purposeEmailVerification,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(VerificationTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "civicvoice",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateVerificationToken checks an email-verification token and returns
// the user it belongs to. Tokens minted for any other purpose are rejected.
func ValidateVerificationToken(tokenString, secret string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &verificationClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*verificationClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Purpose != purposeEmailVerification {
		return "", errors.New("invalid token purpose")
	}
	return claims.UserID, nil
}
