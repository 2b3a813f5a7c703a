// Command create-admin adds an admin account to the catalog database, or
// reports whether one exists.
//
//	create-admin -username root -password s3cret
//	create-admin -check -username root
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/fjod/gizmo_store/internal/auth"
	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/fjod/gizmo_store/internal/repository"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type adminStore interface {
	GetAdminByUsername(ctx context.Context, username string) (*domain.Admin, error)
	CreateAdmin(ctx context.Context, a *domain.Admin) error
}

func main() {
	_ = godotenv.Load()

	dbPath := os.Getenv("SQLITE_PATH")
	if dbPath == "" {
		dbPath = "gizmos.db"
	}

	username := flag.String("username", "admin", "admin username")
	password := flag.String("password", "", "admin password")
	check := flag.Bool("check", false, "only report whether the admin exists")
	flag.StringVar(&dbPath, "db", dbPath, "path to the sqlite database")
	flag.Parse()

	if *username == "" || (!*check && *password == "") {
		flag.Usage()
		os.Exit(2)
	}

	repo, err := repository.NewSQLiteRepository(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if *check {
		if err := checkAdmin(ctx, repo, *username, os.Stdout); err != nil {
			log.Fatalf("failed to check admin: %v", err)
		}
		return
	}

	if err := createAdmin(ctx, repo, *username, *password); err != nil {
		if errors.Is(err, repository.ErrDuplicateAdmin) {
			log.Fatalf("admin %q already exists", *username)
		}
		log.Fatalf("failed to create admin: %v", err)
	}
	log.Printf("admin %q created", *username)
}

func createAdmin(ctx context.Context, store adminStore, username, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return store.CreateAdmin(ctx, &domain.Admin{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
}

// checkAdmin prints the admin's id and whether it has a password set.
func checkAdmin(ctx context.Context, store adminStore, username string, out io.Writer) error {
	admin, err := store.GetAdminByUsername(ctx, username)
	if errors.Is(err, repository.ErrAdminNotFound) {
		fmt.Fprintln(out, "No admin user found")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Admin user found: id=%s username=%s hasPassword=%t\n",
		admin.ID, admin.Username, admin.PasswordHash != "")
	return nil
}
