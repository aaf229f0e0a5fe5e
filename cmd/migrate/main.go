// Package main はデータベースマイグレーションを実行するCLIです。
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/yourusername/shop-auth/internal/config"
)

func main() {
	command := flag.String("command", "up", "migrate command (up|status|down)")
	timeout := flag.Duration("timeout", time.Minute, "command timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required to run migrations")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Failed to set goose dialect: %v", err)
	}

	switch *command {
	case "up":
		err = goose.UpContext(ctx, db, cfg.MigrationsDir)
	case "status":
		err = goose.StatusContext(ctx, db, cfg.MigrationsDir)
	case "down":
		err = goose.DownContext(ctx, db, cfg.MigrationsDir)
	default:
		log.Fatalf("Unsupported command: %s", *command)
	}
	if err != nil {
		log.Fatalf("Migration %s failed: %v", *command, err)
	}

	log.Printf("Migration %s completed", *command)
}
