package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"authdesk/internal/auth"
	"authdesk/internal/config"
	"authdesk/internal/db"
	apperrors "authdesk/internal/errors"
	"authdesk/internal/repository"
	"authdesk/internal/service"
)

// SeedUserData is one entry of the seed document.
type SeedUserData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func main() {
	source := flag.String("source", "users.json", "path or http(s) URL of a JSON array of {email, password}")
	flag.Parse()

	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := db.Migrate(gormDB, false); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	log.Printf("Loading users from: %s", *source)
	users, err := loadUsers(*source)
	if err != nil {
		log.Fatalf("Failed to load users: %v", err)
	}
	log.Printf("Loaded %d users", len(users))

	hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		log.Fatalf("Failed to build password hasher: %v", err)
	}
	// Tokens issued during seeding are discarded; no token store or cache is needed.
	authService := service.NewAuthService(
		repository.NewUserRepository(gormDB),
		hasher,
		auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL),
		auth.NewTokenStore(nil),
		nil,
	)

	created, existing, skipped, err := seedUsers(context.Background(), authService, users)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", created)
	log.Printf("  - Already registered: %d", existing)
	log.Printf("  - Skipped invalid entries: %d", skipped)
}

// loadUsers reads the seed document from a local file or an http(s) URL.
func loadUsers(source string) ([]SeedUserData, error) {
	var body []byte
	var err error

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		body, err = fetch(source)
	} else {
		body, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}

	var users []SeedUserData
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return users, nil
}

func fetch(url string) ([]byte, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source returned status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// seedUsers signs every entry up through the auth service, so seeded users get
// the same validation and hashing as real signups.
func seedUsers(ctx context.Context, svc service.AuthService, users []SeedUserData) (created, existing, skipped int, err error) {
	for _, u := range users {
		_, err := svc.Signup(ctx, u.Email, u.Password, u.Password)
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrEmailTaken):
			existing++
		case errors.Is(err, apperrors.ErrMissingFields):
			log.Printf("Skipping entry with missing email or password: %q", u.Email)
			skipped++
		default:
			return created, existing, skipped, fmt.Errorf("error creating user %s: %w", u.Email, err)
		}
	}
	return created, existing, skipped, nil
}
