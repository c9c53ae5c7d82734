package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func Config(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	return os.Getenv(key)
}

// ConfigBool reads a boolean flag; anything other than "false" or "0" counts
// as enabled so unset flags keep their default behavior.
func ConfigBool(key string, fallback bool) bool {
	v := Config(key)
	if v == "" {
		return fallback
	}
	return v != "false" && v != "0"
}
