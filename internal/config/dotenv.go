package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env files, most specific first:
// .env.<env>.local > .env.local > .env.<env> > .env
// godotenv.Load never overwrites variables that are already set, so OS env
// vars always win and earlier files win over later ones.
// Returns the files actually loaded.
func LoadDotEnv(env string) []string {
	var candidates []string
	if env != "" {
		candidates = append(candidates, ".env."+env+".local")
	}
	candidates = append(candidates, ".env.local")
	if env != "" {
		candidates = append(candidates, ".env."+env)
	}
	candidates = append(candidates, ".env")

	var loaded []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}
