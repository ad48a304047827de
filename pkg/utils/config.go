package utils

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv reads a local .env file if one exists. Missing file is fine;
// real environments set variables directly.
func LoadDotEnv() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}
}

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("MANGABACKEND_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("MANGABACKEND_JWT_ISSUER")
	if issuer == "" {
		issuer = "manga-backend"
	}

	hours := envInt("MANGABACKEND_JWT_TTL_HOURS", 24)

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: time.Duration(hours) * time.Hour,
	}
}

// StagingConfig configures the remote page-image host. When Enabled is
// false the ingestion pipeline stores pages inline as base64 instead of
// transcoding and uploading them.
type StagingConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	RootDir  string // remote directory all manga dirs live under
	BaseURL  string // public prefix for served page URLs
}

func LoadStagingConfig() StagingConfig {
	return StagingConfig{
		Enabled:  envBool("MANGABACKEND_STAGING_ENABLED", false),
		Host:     envString("MANGABACKEND_FTP_HOST", "localhost"),
		Port:     envInt("MANGABACKEND_FTP_PORT", 21),
		User:     envString("MANGABACKEND_FTP_USER", "anonymous"),
		Password: os.Getenv("MANGABACKEND_FTP_PASSWORD"),
		RootDir:  envString("MANGABACKEND_FTP_ROOT", "manga"),
		BaseURL:  envString("MANGABACKEND_PUBLIC_BASE_URL", "http://localhost/manga"),
	}
}

// IngestConfig exposes the orchestrator's policy knobs.
type IngestConfig struct {
	AbortChapterOnPageError bool
	ForceReingest           bool
}

func LoadIngestConfig() IngestConfig {
	return IngestConfig{
		AbortChapterOnPageError: envBool("MANGABACKEND_INGEST_ABORT_CHAPTER_ON_PAGE_ERROR", false),
		ForceReingest:           envBool("MANGABACKEND_INGEST_FORCE_REINGEST", false),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
