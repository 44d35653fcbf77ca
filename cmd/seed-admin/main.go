package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/acolhimento-gf/visitantes-api/internal/business/accounts"
	"github.com/acolhimento-gf/visitantes-api/internal/platform/config"
	"github.com/acolhimento-gf/visitantes-api/internal/platform/logger"
	"github.com/acolhimento-gf/visitantes-api/internal/repository/stores"
	"github.com/acolhimento-gf/visitantes-api/internal/session"
)

func main() {
	name := flag.String("name", "Administrador", "Display name of the admin account")
	email := flag.String("email", os.Getenv("SEED_ADMIN_EMAIL"), "Login email (or SEED_ADMIN_EMAIL)")
	password := flag.String("password", os.Getenv("SEED_ADMIN_PASSWORD"), "Initial password (or SEED_ADMIN_PASSWORD)")
	dryRun := flag.Bool("dry-run", false, "Validate input without writing anything")
	flag.Parse()

	ctx := context.Background()

	// Load environment variables
	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	set, err := stores.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreBackend, err)
	}
	defer set.Close()
	log.Printf("Connected to %s store using %s", set.Backend, set.Source)

	svc := accounts.NewService(set.Users, session.NewIssuer(cfg.JWTSecret, cfg.JWTTTL), logger.NewNop())
	input := accounts.UserInput{Nome: *name, Email: *email, Role: string(session.RoleAdmin), Password: *password}

	if *dryRun {
		if _, err := svc.HashPassword(input.Password); err != nil {
			log.Fatalf("Invalid input: %v", err)
		}
		fmt.Printf("[DRY-RUN] Would create admin %q <%s>\n", input.Nome, input.Email)
		return
	}

	u, err := svc.CreateUser(ctx, input)
	switch {
	case errors.Is(err, accounts.ErrEmailTaken):
		fmt.Printf("Admin %s already exists, nothing to do\n", input.Email)
		return
	case err != nil:
		log.Fatalf("Failed to create admin: %v", err)
	}
	fmt.Printf("✓ Admin created: %s <%s> (id %s)\n", u.Nome, u.Email, u.ID)
}
