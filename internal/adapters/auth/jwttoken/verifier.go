package jwttoken

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vendor-notices/internal/ports/auth"
)

var ErrNoSecret = errors.New("jwt secret not configured")

// FeedClaims son los claims de un token de suscripción/API firmado (HS256).
type FeedClaims struct {
	Username     string   `json:"username,omitempty"`
	Superuser    bool     `json:"su,omitempty"`
	Capabilities []string `json:"caps,omitempty"`
	jwt.RegisteredClaims
}

// Verifier valida tokens firmados con el secreto compartido.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Identity, error) {
	if len(v.secret) == 0 {
		return auth.Identity{}, ErrNoSecret
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Identity{}, auth.ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &FeedClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return auth.Identity{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return auth.Identity{}, fmt.Errorf("%w: missing subject", auth.ErrInvalidToken)
	}

	return auth.Identity{
		UserID:       claims.Subject,
		Username:     claims.Username,
		Superuser:    claims.Superuser,
		Capabilities: claims.Capabilities,
	}, nil
}

// IssueInput describe el token a emitir (lo usa cmd/feedtoken).
type IssueInput struct {
	UserID       string
	Username     string
	Superuser    bool
	Capabilities []string
	TTL          time.Duration // 0 => sin expiración
}

func (v *Verifier) Issue(in IssueInput) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrNoSecret
	}
	if strings.TrimSpace(in.UserID) == "" {
		return "", errors.New("user id required")
	}

	now := v.now()
	claims := FeedClaims{
		Username:     in.Username,
		Superuser:    in.Superuser,
		Capabilities: in.Capabilities,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  in.UserID,
			Issuer:   v.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if in.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(in.TTL))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
