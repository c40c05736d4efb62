// Command admintoken prints a signed admin token for the /api/admin routes.
package main

import (
	"digital-storefront/internal/config"
	"digital-storefront/internal/middleware"
	"flag"
	"fmt"
	"os"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	subject := flag.String("sub", "", "admin identity recorded as decidedBy (e.g. an email)")
	ttl := flag.Duration("ttl", 0, "token lifetime (default ADMIN_TOKEN_TTL)")
	flag.Parse()

	_ = godotenv.Load()

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "-sub is required")
		os.Exit(2)
	}
	if cfg.Auth.AdminJWTSecret == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_JWT_SECRET is not set")
		os.Exit(1)
	}

	lifetime := cfg.Auth.AdminTokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := middleware.GenerateAdminToken(*subject, []byte(cfg.Auth.AdminJWTSecret), lifetime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
