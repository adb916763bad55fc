// feedtoken emite un token de suscripción al feed (?token=) para un usuario.
// Con token_backend=jwt firma un JWT; con token_backend=db persiste un token
// hasheado en Postgres.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"vendor-notices/internal/adapters/auth/dbtoken"
	"vendor-notices/internal/adapters/auth/jwttoken"
	pg "vendor-notices/internal/adapters/storage/postgres"
	"vendor-notices/internal/config"
)

func main() {
	var (
		cfgPath   = flag.String("config", "config.yaml", "archivo de configuración YAML")
		userID    = flag.String("user", "", "id del usuario (obligatorio)")
		username  = flag.String("username", "", "nombre a mostrar")
		caps      = flag.String("caps", "events:read", "capabilities separadas por coma")
		ttl       = flag.Duration("ttl", 0, "vigencia (0 => sin expiración)")
		superuser = flag.Bool("superuser", false, "token de superusuario")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	token, err := issue(context.Background(), cfg, issueRequest{
		UserID:       *userID,
		Username:     *username,
		Superuser:    *superuser,
		Capabilities: splitCSV(*caps),
		TTL:          *ttl,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "feedtoken:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

type issueRequest struct {
	UserID       string
	Username     string
	Superuser    bool
	Capabilities []string
	TTL          time.Duration
}

func issue(ctx context.Context, cfg *config.Config, in issueRequest) (string, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return "", errors.New("-user is required")
	}

	switch cfg.Auth.TokenBackend {
	case "db":
		if cfg.Database.DSN == "" {
			return "", errors.New("token_backend=db needs database.dsn")
		}
		db, err := pg.Open(ctx, cfg.Database.DSN, pg.PoolOptions{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return "", err
		}
		defer db.Close()
		if err := pg.EnsureSchema(ctx, db); err != nil {
			return "", err
		}
		token, _, err := dbtoken.NewVerifier(pg.NewTokensRepo(db)).Create(ctx, dbtoken.CreateInput{
			UserID:       in.UserID,
			Username:     in.Username,
			Superuser:    in.Superuser,
			Capabilities: in.Capabilities,
			TTL:          in.TTL,
		})
		return token, err
	case "odin":
		return "", errors.New("token_backend=odin: tokens are issued by the IAM")
	default:
		return jwttoken.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer).Issue(jwttoken.IssueInput{
			UserID:       in.UserID,
			Username:     in.Username,
			Superuser:    in.Superuser,
			Capabilities: in.Capabilities,
			TTL:          in.TTL,
		})
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
