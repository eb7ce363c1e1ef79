package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/lendora/loan-origination/config"
	"github.com/lendora/loan-origination/pkg/helpers"
)

// Seeds one account per role so a fresh environment can exercise the whole
// approval flow without manual signups.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	seed := []struct {
		email, phone, name, role string
	}{
		{"banker@lendora.dev", "+15550100001", "Demo Banker", "BANKER"},
		{"merchant@lendora.dev", "+15550100002", "Demo Merchant", "MERCHANT"},
		{"customer@lendora.dev", "+15550100003", "Demo Customer", "CUSTOMER"},
	}
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	for _, u := range seed {
		var id string
		err = db.QueryRow(`
			INSERT INTO users (email, phone, password_hash, name, role)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO UPDATE SET name=EXCLUDED.name
			RETURNING id
		`, u.email, u.phone, hash, u.name, u.role).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed %s: %v", u.role, err)
		}
		fmt.Printf("seeded user: id=%s email=%s role=%s password=%s\n", id, u.email, u.role, password)
	}
}
