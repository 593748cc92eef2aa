package main

import (
	"context"
	"log"
	"os"

	"github.com/laboserve/laboserve-api/internal/repository"
	"github.com/laboserve/laboserve-api/internal/service"
	"github.com/laboserve/laboserve-api/pkg/config"
	"github.com/laboserve/laboserve-api/pkg/database"
	"github.com/laboserve/laboserve-api/pkg/logger"
)

// One-shot importer for the faculty timetable CSV. Replaces all fixed weekly
// entries in a single transaction; run again to re-import.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	path := cfg.Import.CSVPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		logr.Sugar().Fatal("no CSV path configured, pass it as the first argument")
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	f, err := os.Open(path)
	if err != nil {
		logr.Sugar().Fatalw("failed to open CSV", "path", path, "error", err)
	}
	defer f.Close()

	facultyRepo := repository.NewFacultyScheduleRepository(db)
	labRepo := repository.NewLabRepository(db)
	userRepo := repository.NewUserRepository(db)
	importSvc := service.NewImportService(facultyRepo, labRepo, userRepo, nil, logr)

	report, err := importSvc.Import(context.Background(), "", f)
	if err != nil {
		logr.Sugar().Fatalw("import failed", "path", path, "error", err)
	}

	logr.Sugar().Infow("import finished",
		"path", path,
		"rows_total", report.RowsTotal,
		"rows_skipped", report.RowsSkipped,
		"entries", report.Entries,
	)
}
