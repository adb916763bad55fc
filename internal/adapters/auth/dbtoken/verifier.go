package dbtoken

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vendor-notices/internal/ports/auth"
)

var ErrNotFound = errors.New("api token not found")

// APIToken es un token de API persistido. El secreto solo se guarda como hash bcrypt.
type APIToken struct {
	ID           string
	UserID       string
	Username     string
	Superuser    bool
	Capabilities []string
	SecretHash   []byte
	Enabled      bool
	ExpiresAt    *time.Time
	CreatedAt    time.Time
}

type Repository interface {
	Create(ctx context.Context, t APIToken) error
	GetByID(ctx context.Context, id string) (APIToken, error)
}

// Verifier valida tokens con formato "<id>.<secret>".
type Verifier struct {
	repo Repository
	cost int
	now  func() time.Time
}

func NewVerifier(repo Repository) *Verifier {
	return &Verifier{
		repo: repo,
		cost: bcrypt.DefaultCost,
		now:  time.Now,
	}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Identity, error) {
	id, secret, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || id == "" || secret == "" {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	if _, err := uuid.Parse(id); err != nil {
		return auth.Identity{}, auth.ErrInvalidToken
	}

	t, err := v.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return auth.Identity{}, auth.ErrInvalidToken
		}
		return auth.Identity{}, fmt.Errorf("api token lookup: %w", err)
	}

	if !t.Enabled {
		return auth.Identity{}, fmt.Errorf("%w: disabled", auth.ErrInvalidToken)
	}
	if t.ExpiresAt != nil && !v.now().Before(*t.ExpiresAt) {
		return auth.Identity{}, fmt.Errorf("%w: expired", auth.ErrInvalidToken)
	}
	if err := bcrypt.CompareHashAndPassword(t.SecretHash, []byte(secret)); err != nil {
		return auth.Identity{}, auth.ErrInvalidToken
	}

	return auth.Identity{
		UserID:       t.UserID,
		Username:     t.Username,
		Superuser:    t.Superuser,
		Capabilities: t.Capabilities,
	}, nil
}

type CreateInput struct {
	UserID       string
	Username     string
	Superuser    bool
	Capabilities []string
	TTL          time.Duration
}

// Create genera y persiste un token nuevo. El valor en claro solo se devuelve acá.
func (v *Verifier) Create(ctx context.Context, in CreateInput) (string, APIToken, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return "", APIToken{}, errors.New("user id required")
	}

	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", APIToken{}, err
	}
	secret := base64.RawURLEncoding.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), v.cost)
	if err != nil {
		return "", APIToken{}, err
	}

	now := v.now().UTC()
	t := APIToken{
		ID:           uuid.NewString(),
		UserID:       strings.TrimSpace(in.UserID),
		Username:     strings.TrimSpace(in.Username),
		Superuser:    in.Superuser,
		Capabilities: in.Capabilities,
		SecretHash:   hash,
		Enabled:      true,
		CreatedAt:    now,
	}
	if in.TTL > 0 {
		exp := now.Add(in.TTL)
		t.ExpiresAt = &exp
	}

	if err := v.repo.Create(ctx, t); err != nil {
		return "", APIToken{}, err
	}
	return t.ID + "." + secret, t, nil
}
