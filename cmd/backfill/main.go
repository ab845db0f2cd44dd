package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"tidewater/harbormaster/internal/api"
	"tidewater/harbormaster/internal/common"
	"tidewater/harbormaster/internal/db"
	"tidewater/harbormaster/internal/logging"
	"tidewater/harbormaster/internal/matching"
	"tidewater/harbormaster/internal/metrics"
	"tidewater/harbormaster/internal/services"
)

// Manual charge backfill. Sweeps charges written since the cutoff through
// the bridge, under the same lock the scheduled job uses.
func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cutoffArg := flag.String("cutoff", "", "only consider charges updated at or after this time (empty = full sweep)")
	timeoutArg := flag.Duration("timeout", 10*time.Minute, "abort the run after this long")
	flag.Parse()

	var cutoff time.Time
	if *cutoffArg != "" {
		parsed := matching.ParseFlexibleTime(*cutoffArg)
		if parsed == nil {
			log.Fatalf("❌ Unparseable cutoff: %q", *cutoffArg)
		}
		cutoff = *parsed
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
	}
	if err := logging.Init(appEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	if err := db.InitPostgres(); err != nil {
		log.Fatalf("❌ Failed to connect to Postgres (sqlx): %v", err)
	}
	if _, err := db.InitPostgresORM(db.DSN()); err != nil {
		log.Fatalf("❌ Failed to connect to Postgres (GORM): %v", err)
	}

	redisClient := common.NewRedisClient()
	metricsReg := metrics.NewMetricsRegistry()

	deps, err := api.InitDependencies(redisClient, metricsReg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize dependencies: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutArg)
	defer cancel()

	if cutoff.IsZero() {
		log.Println("Running full charge sweep")
	} else {
		log.Printf("Running charge backfill from %s", cutoff.Format(time.RFC3339))
	}

	result, err := deps.Services.Backfill.Run(ctx, cutoff)
	if err != nil {
		if errors.Is(err, services.ErrBackfillRunning) {
			log.Fatalf("❌ Another backfill run holds the lock, try again later")
		}
		log.Fatalf("❌ Backfill failed: %v", err)
	}

	log.Printf("Backfill done: processed=%d created=%d updated=%d failed=%d",
		result.Processed, result.Created, result.Updated, result.Failed)
}
