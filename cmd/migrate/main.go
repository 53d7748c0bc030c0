// Command migrate applies the database schema. It is idempotent and safe to
// run before every deploy.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lumenarts/mint-ledger/internal/config"
	"github.com/lumenarts/mint-ledger/internal/logger"
	"github.com/lumenarts/mint-ledger/internal/store/schema"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadMigrateConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx := context.Background()

	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "migrate",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	logger.InfoCtx(ctx, "Applying database schema", zap.String("database", cfg.Database.DBName))

	err = db.AutoMigrate(
		&schema.Collection{},
		&schema.Item{},
		&schema.Approval{},
		&schema.OperatorGrant{},
		&schema.Pledge{},
		&schema.BurnRecord{},
		&schema.Payout{},
		&schema.ChangesJournal{},
		&schema.KeyValueStore{},
	)
	if err != nil {
		logger.Fatal("Failed to apply database schema", zap.Error(err))
	}

	logger.Info("Database schema up to date")
}
