package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/canteenhub/api/internal/config"
	"github.com/canteenhub/api/internal/enum"
	"github.com/canteenhub/api/internal/store"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// CLI flags
	userID := flag.String("user-id", "", "Main admin employee ID")
	username := flag.String("username", "", "Main admin username")
	password := flag.String("password", "", "Main admin password")
	flag.Parse()

	// Fall back to environment variables
	if *userID == "" {
		*userID = os.Getenv("SEED_USER_ID")
	}
	if *username == "" {
		*username = os.Getenv("SEED_USERNAME")
	}
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}

	// Fall back to defaults
	if *userID == "" {
		*userID = "ADMIN001"
	}
	if *username == "" {
		*username = "admin"
	}
	if *password == "" {
		*password = "password123"
		log.Println("WARNING: Using default password 'password123'. Change immediately in production!")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	ctx := context.Background()
	db, err := store.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Printf("Connected to %s database", cfg.DBDriver)

	// Seed in a transaction so we get the full fixture or nothing
	tx, err := db.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	q := store.New(tx, db.Dialect())

	adminID, err := seedMainAdmin(ctx, q, *userID, *username, *password)
	if err != nil {
		log.Fatalf("Failed to seed main admin: %v", err)
	}

	if err := seedSampleData(ctx, q); err != nil {
		log.Fatalf("Failed to seed sample data: %v", err)
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed completed successfully")
	log.Printf("Main admin ID: %d", adminID)
}

// seedMainAdmin creates the initial main_admin account if it doesn't exist.
func seedMainAdmin(ctx context.Context, q *store.Queries, userID, username, password string) (int64, error) {
	existing, err := q.GetAdminByLogin(ctx, username)
	if err == nil {
		log.Printf("Admin '%s' already exists (ID: %d), skipping", username, existing.ID)
		return existing.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("check admin: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	admin, err := q.CreateAdmin(ctx, store.CreateAdminParams{
		UserID:       userID,
		Username:     username,
		PasswordHash: string(hashed),
		Role:         enum.RoleMainAdmin,
	})
	if err != nil {
		return 0, fmt.Errorf("insert admin: %w", err)
	}

	log.Printf("Created main admin '%s' (ID: %d)", username, admin.ID)
	return admin.ID, nil
}

// seedSampleData creates a starter branch, canteen, and menu item so a
// fresh install has something to click on.
func seedSampleData(ctx context.Context, q *store.Queries) error {
	branches, err := q.ListBranches(ctx)
	if err != nil {
		return fmt.Errorf("list branches: %w", err)
	}
	if len(branches) > 0 {
		log.Println("Branches already present, skipping sample data")
		return nil
	}

	branch, err := q.CreateBranch(ctx, "Head Office")
	if err != nil {
		return fmt.Errorf("insert branch: %w", err)
	}
	log.Printf("Created branch '%s' (ID: %d)", branch.Name, branch.ID)

	canteen, err := q.CreateCanteen(ctx, "Main Cafeteria", &branch.ID)
	if err != nil {
		return fmt.Errorf("insert canteen: %w", err)
	}
	log.Printf("Created canteen '%s' (ID: %d)", canteen.Name, canteen.ID)

	item, err := q.CreateMenuItem(ctx, store.CreateMenuItemParams{
		Name:      "Masala Dosa",
		Price:     "₹45.00",
		IsActive:  true,
		CanteenID: canteen.ID,
	})
	if err != nil {
		return fmt.Errorf("insert menu item: %w", err)
	}
	log.Printf("Created menu item '%s' (ID: %d)", item.Name, item.ID)

	return nil
}
