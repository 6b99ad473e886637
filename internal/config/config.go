package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/game"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL      string
	ServerHost       string
	ServerPort       int
	Debug            bool
	Seed             int64
	RulesFile        string
	StartingPowerUps int
	TokenSecret      []byte
	Rules            game.Rules
}

// Load reads .env (if present) and the environment, then the Lua rules file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading from environment")
	}

	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", "blocktopia.db"),
		ServerHost:       getEnv("SERVER_HOST", "localhost"),
		ServerPort:       getEnvAsInt("SERVER_PORT", 8080),
		Debug:            getEnvAsBool("DEBUG", false),
		Seed:             getEnvAsInt64("SEED", 0),
		RulesFile:        getEnv("RULES_FILE", "configs/rules.lua"),
		StartingPowerUps: getEnvAsInt("STARTING_POWER_UPS", 1),
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if secret := os.Getenv("TOKEN_SECRET"); secret != "" {
		cfg.TokenSecret = []byte(secret)
	} else {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate token secret: %w", err)
		}
		cfg.TokenSecret = []byte(base64.StdEncoding.EncodeToString(key))
		log.Println("[INFO] TOKEN_SECRET not set, resume tokens last for this process only")
	}

	rules, err := LoadRules(cfg.RulesFile)
	if err != nil {
		log.Printf("[WARN] %v, using default rules", err)
		rules = game.DefaultRules()
	}
	rules.BoardSize = getEnvAsInt("BOARD_SIZE", rules.BoardSize)
	rules.HandSize = getEnvAsInt("HAND_SIZE", rules.HandSize)
	cfg.Rules = rules

	return cfg, nil
}

// Addr is the listen address for the server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
