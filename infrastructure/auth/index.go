package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"facegate.io/infrastructure/database/repository/cache"
	"facegate.io/infrastructure/logger"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	ErrVerdictTokenInvalid = errors.New("verdict token is invalid")
	ErrVerdictTokenUsed    = errors.New("verdict token has already been redeemed")
)

// VerdictClaims attests a finalized liveness verdict to downstream consumers
// (credential issuance, face matching) without a callback to this service.
type VerdictClaims struct {
	SessionID string  `json:"sessionID"`
	Verified  bool    `json:"verified"`
	Reason    *string `json:"reason,omitempty"`
	jwt.RegisteredClaims
}

const verdictTokenTTL = time.Minute * 5

func SignVerdictToken(sessionID string, verified bool, reason *string) (string, error) {
	now := time.Now()
	claims := VerdictClaims{
		SessionID: sessionID,
		Verified:  verified,
		Reason:    reason,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    "facegate.io",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(verdictTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("VERDICT_SIGNING_KEY")))
	if err != nil {
		logger.Error("error signing verdict token", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return "", err
	}
	return signed, nil
}

// VerifyVerdictToken validates the signature and burns the token id so each
// verdict can be redeemed exactly once.
func VerifyVerdictToken(tokenString string) (*VerdictClaims, error) {
	claims := &VerdictClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(os.Getenv("VERDICT_SIGNING_KEY")), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrVerdictTokenInvalid
	}
	unused := cache.Cache.CreateEntryIfNotExists(fmt.Sprintf("verdict-jti-%s", claims.ID), "redeemed", verdictTokenTTL)
	if !unused {
		return nil, ErrVerdictTokenUsed
	}
	return claims, nil
}
