// Command admintoken mints a bearer token for the admin endpoints.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"showcase/internal/config"
	"showcase/internal/platform/crypto"
)

func main() {
	sub := flag.String("sub", "admin", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	token, err := mint(cfg.JWTSecret, *sub, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "admintoken: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func mint(secret, sub string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive, got %s", ttl)
	}
	return crypto.GenerateToken(secret, sub, crypto.RoleAdmin, ttl)
}
