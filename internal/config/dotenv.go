package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv reads env files in precedence order: .env.local, then
// .env.<APP_ENV> when APP_ENV is set, then .env. godotenv never
// overwrites variables that are already set, so OS-level values win
// and earlier files shadow later ones. Returns the files found.
func LoadDotEnv() []string {
	candidates := []string{".env.local"}
	if env := os.Getenv("APP_ENV"); env != "" {
		candidates = append(candidates, fmt.Sprintf(".env.%s", env))
	}
	candidates = append(candidates, ".env")

	var found []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			found = append(found, f)
		}
	}
	if len(found) > 0 {
		_ = godotenv.Load(found...)
	}
	return found
}
