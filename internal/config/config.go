// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"credikhaata-ledger/pkg/db" // Import db package for its Config struct
)

// Storage driver names accepted in STORAGE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort    string
	StorageDriver string
	DataDir       string // file driver
	SQLitePath    string // sqlite driver
	DB            db.Config
}

// LoadConfig loads configuration from a .env file when present, then from
// environment variables. It returns an AppConfig instance or an error if
// any variable is invalid.
func LoadConfig() (*AppConfig, error) {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	storageDriver := os.Getenv("STORAGE_DRIVER")
	if storageDriver == "" {
		storageDriver = DriverFile
	}
	switch storageDriver {
	case DriverMemory, DriverFile, DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", storageDriver)
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = "credikhaata.db"
	}

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		dbPortStr = "5432"
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		dbUser = "user"
	}
	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		dbPassword = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "credikhaata"
	}
	dbSSLMode := os.Getenv("DB_SSLMODE")
	if dbSSLMode == "" {
		dbSSLMode = "disable"
	}

	return &AppConfig{
		ServerPort:    serverPort,
		StorageDriver: storageDriver,
		DataDir:       dataDir,
		SQLitePath:    sqlitePath,
		DB: db.Config{
			Host:     dbHost,
			Port:     dbPort,
			User:     dbUser,
			Password: dbPassword,
			DBName:   dbName,
			SSLMode:  dbSSLMode,
		},
	}, nil
}
