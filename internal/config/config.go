package config

import (
	"log"
	"os"
)

type Config struct {
	HTTPPort     string
	DatabaseDSN  string
	JWTSecret    string
	CORSOrigins  string
	GeminiAPIKey string
	KnowledgeCSV string // substitution dataset path
	Debug        bool
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:     getEnv("HTTP_PORT", "5000"),
		DatabaseDSN:  os.Getenv("DB_DSN"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		CORSOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		KnowledgeCSV: getEnv("KNOWLEDGE_CSV", "./knowledge.csv"),
		Debug:        os.Getenv("DEBUG") == "true",
	}

	if cfg.DatabaseDSN == "" {
		log.Fatal("❌ Error: DB_DSN not found in .env file. Please configure your database.")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("❌ Error: JWT_SECRET not found in .env file. Refusing to sign tokens with an empty key.")
	}
	if cfg.GeminiAPIKey == "" {
		log.Println("⚠️ Warning: GEMINI_API_KEY is not set. Substitution lookup will be unavailable.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
