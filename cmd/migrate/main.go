package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/damoang/notion-gateway/internal/config"
	"github.com/damoang/notion-gateway/internal/database"
	"github.com/damoang/notion-gateway/internal/domain"
	"github.com/damoang/notion-gateway/internal/migration"
	"github.com/damoang/notion-gateway/internal/repository"
	"github.com/damoang/notion-gateway/internal/service"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// CLI flags
	configPath := flag.String("config", defaultConfigPath(), "config file path")
	seed := flag.Bool("seed", false, "provision the default tenant and the given demo tenants")
	demo := flag.String("demo", "demo", "comma separated subdomains of demo tenants to seed")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	if loaded := config.LoadDotEnv(os.Getenv("APP_ENV")); len(loaded) == 0 {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := gormlogger.Warn
	if *verbose {
		logLevel = gormlogger.Info
	}

	db, err := database.Open(&cfg.Database, logLevel)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	if err := migration.Run(db); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}
	tables, err := migration.Tables(db)
	if err != nil {
		log.Fatalf("Failed to inspect schema: %v", err)
	}
	log.Printf("[migrate] schema ready: %s", strings.Join(tables, ", "))

	if !*seed {
		return
	}

	ctx := context.Background()
	tenants := service.NewTenantService(
		repository.NewTenantRepository(db),
		repository.NewContentRepository(db),
		nil,
		zerolog.New(os.Stderr).With().Timestamp().Logger(),
	)

	created, err := tenants.EnsureDefaultTenant(ctx)
	if err != nil {
		log.Fatalf("Failed to seed default tenant: %v", err)
	}
	log.Printf("[seed] default tenant created=%v", created)

	for _, sub := range strings.Split(*demo, ",") {
		sub = strings.TrimSpace(sub)
		if sub == "" {
			continue
		}
		res, err := tenants.CreateTenant(ctx, &domain.CreateTenantRequest{
			Subdomain: sub,
			Title:     fmt.Sprintf("%s blog", sub),
		})
		if err != nil {
			log.Printf("[seed] skip %s: %v", sub, err)
			continue
		}
		log.Printf("[seed] tenant %s created (id=%s root=%s)", res.Subdomain, res.ID, res.RootPageID)
	}
}

func defaultConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}
