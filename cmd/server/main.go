//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/himanishpuri/FoodLens/pkg/foodlens"
	"github.com/himanishpuri/FoodLens/pkg/logger"
)

var (
	port           int
	dbPath         string
	configPath     string
	allowedOrigins string
	logRequests    bool
)

func init() {
	flag.IntVar(&port, "port", getEnvIntOrDefault("FOODLENS_PORT", 8080), "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("FOODLENS_DB_PATH", "foodlens.sqlite3"), "Path to SQLite scan journal")
	flag.StringVar(&configPath, "config", getEnvOrDefault("FOODLENS_CONFIG", ""), "Path to a YAML config file")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
	flag.BoolVar(&logRequests, "log-requests", false, "Log every HTTP request")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func main() {
	flag.Parse()
	log := logger.Named("server")

	// Parse allowed origins
	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	var opts []foodlens.Option
	if configPath != "" {
		fc, err := foodlens.LoadConfigFile(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		opts = fc.Options()
		if fc.Storage.DBPath != "" && dbPath == "foodlens.sqlite3" {
			dbPath = fc.Storage.DBPath
		}
	}

	journal, err := foodlens.NewSQLiteJournal(dbPath)
	if err != nil {
		log.Fatalf("Failed to open journal: %v", err)
	}
	defer journal.Close()

	config := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		AllowedOrigins: origins,
	}

	server := NewServer(journal, config, opts...)
	defer server.Close()

	if err := server.Start(logRequests); err != nil {
		log.Errorf("Server failed: %v", err)
	}
}
