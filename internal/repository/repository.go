package repository

import (
	"embed"
	"errors"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrDuplicateOrder  = errors.New("order already exists")
	ErrProductNotFound = errors.New("product not found")
	ErrAdminNotFound   = errors.New("admin not found")
	ErrDuplicateAdmin  = errors.New("admin already exists")
)

//go:embed migrations
var migrationsFS embed.FS

type Credentials struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}
