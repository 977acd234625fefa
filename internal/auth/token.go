package auth

import (
	"strconv"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/core/clock"
	"github.com/golang-jwt/jwt/v5"
)

type JWTTokenGenerator struct {
	Secret []byte
	TTL    time.Duration
	Clock  clock.Clock
}

func NewJWTTokenGenerator(secret string, ttl time.Duration, clk clock.Clock) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if clk == nil {
		clk = clock.NewSystem(time.UTC)
	}
	return &JWTTokenGenerator{
		Secret: []byte(secret),
		TTL:    ttl,
		Clock:  clk,
	}
}

// GenerateAccessToken snapshots the user's token_version into the claims.
func (j *JWTTokenGenerator) GenerateAccessToken(cred *Credential) (string, time.Time, error) {
	now := j.Clock.Now()
	expiresAt := now.Add(j.TTL)

	claims := &Claims{
		UserID:       cred.UserID,
		Email:        cred.Email,
		Role:         string(cred.Role),
		EmployeeID:   cred.EmployeeID,
		TokenVersion: cred.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(cred.UserID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ValidateToken checks signature, algorithm and expiry. It does not look at token_version.
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return j.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.Clock.Now),
	)
	if err != nil || !token.Valid {
		return nil, internal.ErrInvalidOrExpiredToken.WithCause(err)
	}
	if claims.UserID == 0 {
		return nil, internal.ErrInvalidOrExpiredToken
	}
	return claims, nil
}
