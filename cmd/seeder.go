package cmd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with an admin account and default departments for development and testing purposes.`,
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
			tables := []string{
				"excuse_letters", "certificates", "attendance", "events",
				"account_requests", "users", "identity_accounts", "departments",
			}
			for _, table := range tables {
				if _, err := db.Exec("DELETE FROM " + table); err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		adminEmail := "admin@attendance.local"
		password := "admin-password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BCryptCost)

		var exists int
		adminExists := false
		if err := db.QueryRow("SELECT 1 FROM identity_accounts WHERE email = $1", adminEmail).Scan(&exists); err == nil {
			fmt.Println("admin account already exists:", adminEmail)
			adminExists = true
		}

		if !adminExists {
			adminUID := uuid.New().String()
			if _, err := db.Exec(
				"INSERT INTO identity_accounts (uid, email, password_hash, role, disabled, created_at, updated_at) VALUES ($1, $2, $3, 'ADMIN', false, now(), now())",
				adminUID, adminEmail, string(hash)); err != nil {
				log.Fatalf("failed to insert admin account: %v", err)
			}

			if _, err := db.Exec(
				"INSERT INTO users (user_id, first_name, last_name, email, school_id, password_hash, role, verified, created_at, updated_at) VALUES ($1, 'System', 'Administrator', $2, 'ADMIN-000', $3, 'ADMIN', true, now(), now())",
				adminUID, adminEmail, string(hash)); err != nil {
				log.Fatalf("failed to insert admin user: %v", err)
			}
			fmt.Println("Seeded admin account:", adminEmail)
		}

		departments := []struct {
			Name      string
			ShortCode string
		}{
			{"College of Computer Studies", "CCS"},
			{"College of Engineering", "COE"},
			{"College of Business Administration", "CBA"},
			{"College of Arts and Sciences", "CAS"},
			{"College of Education", "CED"},
		}

		for _, d := range departments {
			if err := db.QueryRow("SELECT 1 FROM departments WHERE LOWER(name) = LOWER($1)", d.Name).Scan(&exists); err == nil {
				continue
			}

			if _, err := db.Exec(
				"INSERT INTO departments (id, name, short_code, is_active, created_at, updated_at) VALUES ($1, $2, $3, true, now(), now())",
				uuid.New().String(), d.Name, d.ShortCode); err != nil {
				log.Fatalf("failed to insert department %s: %v", d.Name, err)
			}
			fmt.Printf("Seeded department: %s\n", d.Name)
		}

		fmt.Println("Seeding complete")
	},
}
