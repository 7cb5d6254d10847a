package utils

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maheshrc27/postqueue/internal/transfer"
)

const issuer = "postqueue"

func GenerateToken(secretKey, userID string, tokenDuration time.Duration) (string, error) {
	claims := transfer.CustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(secretKey))

	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return signedToken, nil
}

func ValidateToken(secretKey, tokenString string) (*transfer.CustomClaims, error) {
	claims := &transfer.CustomClaims{}
	if err := parse(secretKey, tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// GenerateNonce signs a short lived token valid only for action and userID.
func GenerateNonce(secretKey, action string, userID int64, ttl time.Duration) (string, error) {
	claims := transfer.NonceClaims{
		Action: action,
		UserID: strconv.FormatInt(userID, 10),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
			Subject:   "nonce",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(secretKey))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	return signedToken, nil
}

// VerifyNonce reports whether nonce was issued for action to userID and has
// not expired.
func VerifyNonce(secretKey, nonce, action string, userID int64) bool {
	claims := &transfer.NonceClaims{}
	if err := parse(secretKey, nonce, claims); err != nil {
		return false
	}
	return claims.Subject == "nonce" &&
		claims.Action == action &&
		claims.UserID == strconv.FormatInt(userID, 10)
}

func parse(secretKey, tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(secretKey), nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		slog.Info(err.Error())
		return err
	}

	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}
