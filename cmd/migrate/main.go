package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/lemarcheci/storefront-backend/pkg/config"
	"github.com/lemarcheci/storefront-backend/pkg/db"
	"github.com/lemarcheci/storefront-backend/pkg/logger"
	"github.com/lemarcheci/storefront-backend/pkg/migrate"
)

func main() {
	_ = godotenv.Load()

	var (
		command = flag.String("cmd", "up", "goose command (up, down, status, version)")
		dir     = flag.String("dir", migrate.DefaultDir, "migrations directory")
		name    = flag.String("name", "", "migration name (create only)")
	)
	flag.Parse()

	if *command == "create" {
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			log.Fatalf("creating migration: %v", err)
		}
		fmt.Println(path)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "storefront-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	ctx := context.Background()

	client, err := db.New(ctx, cfg.DB, false, logg)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		log.Fatalf("extracting sql.DB: %v", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"cmd": *command, "dir": *dir})
	logg.Info(ctx, "running goose")

	if err := migrate.Run(ctx, sqlDB, *dir, *command, flag.Args()...); err != nil {
		logg.Error(ctx, "goose failed", err)
		os.Exit(1)
	}

	logg.Info(ctx, "goose completed")
}
