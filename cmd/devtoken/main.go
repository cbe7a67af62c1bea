// Command devtoken mints a bearer token for local development.
//
//	JWT_SECRET=dev go run ./cmd/devtoken -email alice@example.com -name Alice
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mmynk/squadledger/internal/auth"
	"github.com/mmynk/squadledger/internal/config"
	"github.com/mmynk/squadledger/pkg/logging"
)

func main() {
	email := flag.String("email", "", "member email (required)")
	name := flag.String("name", "", "display name")
	picture := flag.String("picture", "", "avatar reference")
	flag.Parse()

	logger := logging.Setup(slog.LevelWarn)
	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(context.Background(), logger)
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL).Generate(*email, *name, *picture)
	if err != nil {
		logger.Error("Failed to generate token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
