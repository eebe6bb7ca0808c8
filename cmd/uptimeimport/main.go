package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"

	"uptime-report-backend/config"
	"uptime-report-backend/internal/db"
	"uptime-report-backend/internal/ingest"
	"uptime-report-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "uptime-import ", log.LstdFlags)

	statusPath := flag.String("status", "", "CSV of store status pings (store_id,status,timestamp_utc)")
	timezonePath := flag.String("timezones", "", "CSV of store timezones (store_id,timezone_str)")
	hoursPath := flag.String("hours", "", "CSV of business hours (store_id,day,start_time_local,end_time_local)")
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}

	importer := ingest.NewImporter(store.NewGormStore(gormDB))
	ctx := context.Background()

	jobs := []struct {
		name string
		path string
		run  func(context.Context, io.Reader) (*ingest.Result, error)
	}{
		{"timezones", *timezonePath, importer.ImportTimezones},
		{"business hours", *hoursPath, importer.ImportBusinessHours},
		{"store status", *statusPath, importer.ImportObservations},
	}

	failed := false
	for _, job := range jobs {
		if job.path == "" {
			continue
		}
		f, err := os.Open(job.path)
		if err != nil {
			logger.Fatalf("failed to open %s: %v", job.path, err)
		}
		res, err := job.run(ctx, f)
		f.Close()
		if err != nil {
			logger.Fatalf("%s import from %s failed: %v", job.name, job.path, err)
		}
		logger.Printf("%s: %d rows read, %d imported, %d rejected", job.name, res.Total, res.Success, res.Failed)
		for _, e := range res.Errors {
			logger.Printf("  %s", e)
		}
		if res.Failed > 0 {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
