package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	BackendURL string
	ScratchDir string
	DBDSN      string
	LogFile    string
	DraftTTL   time.Duration
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	backend := os.Getenv("BACKEND_URL")
	if backend == "" {
		backend = "http://localhost:5000"
	}
	scratch := os.Getenv("SCRATCH_DIR")
	if scratch == "" {
		// Staged upload spool; previews are served from here.
		scratch = "./web/scratch"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "bukroadmin.db" // sqlite file in project root
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./bukroadmin.log"
	}
	ttl := 2 * time.Hour
	if raw := os.Getenv("DRAFT_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			ttl = d
		} else {
			log.Printf("[warn] bad DRAFT_TTL %q, keeping %s", raw, ttl)
		}
	}

	cfg := Config{Port: port, BackendURL: backend, ScratchDir: scratch, DBDSN: dsn, LogFile: logFile, DraftTTL: ttl}
	log.Printf("[config] PORT=%s BACKEND_URL=%s SCRATCH_DIR=%s DB_DSN=%s DRAFT_TTL=%s", cfg.Port, cfg.BackendURL, cfg.ScratchDir, cfg.DBDSN, cfg.DraftTTL)
	return cfg
}
