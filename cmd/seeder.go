package cmd

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users and publication packages for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			for _, table := range []string{"catalog_payments", "catalogs", "packages", "users"} {
				if _, err := db.Exec("DELETE FROM " + table); err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)

		seedUser(db, "sari@mail.com", "Sari", "MEMBER", string(hash))
		seedUser(db, "budi@mail.com", "Budi Editor", "EDITOR", string(hash))
		seedUser(db, "agus@mail.com", "Agus Admin", "ADMIN", string(hash))

		seedPackage(db, "Basic", "150000.00", 3, `["Listing in the public directory","PDF catalog download"]`)
		seedPackage(db, "Standard", "250000.00", 6, `["Listing in the public directory","PDF catalog download","Category placement"]`)
		seedPackage(db, "Premium", "400000.00", 12, `["Listing in the public directory","PDF catalog download","Category placement","Homepage highlight"]`)
	},
}

func seedUser(db *sqlx.DB, email, name, role, passwordHash string) {
	var exists int
	if err := db.QueryRow("SELECT 1 FROM users WHERE email = $1", email).Scan(&exists); err == nil {
		fmt.Println("user already exists:", email)
		return
	}

	_, err := db.Exec(
		"INSERT INTO users (email, name, role, password_hash, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, true, now(), now())",
		email, name, role, passwordHash)
	if err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email, "role:", role)
}

func seedPackage(db *sqlx.DB, name, price string, durationMonths int, features string) {
	var exists int
	if err := db.QueryRow("SELECT 1 FROM packages WHERE name = $1", name).Scan(&exists); err == nil {
		fmt.Println("package already exists:", name)
		return
	}

	_, err := db.Exec(
		"INSERT INTO packages (name, price, duration_months, features, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, true, now(), now())",
		name, price, durationMonths, features)
	if err != nil {
		log.Fatalf("failed to insert package %s: %v", name, err)
	}
	fmt.Println("Seeded package:", name)
}
