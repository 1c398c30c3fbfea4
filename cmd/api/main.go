package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/arti-ci/sygfp/internal/budget"
	budgetStore "github.com/arti-ci/sygfp/internal/budget/store"
	"github.com/arti-ci/sygfp/internal/config"
	"github.com/arti-ci/sygfp/internal/database"
	sygfpHttp "github.com/arti-ci/sygfp/internal/http"
	budgetLineHandler "github.com/arti-ci/sygfp/internal/http/budgetline"
	importHandler "github.com/arti-ci/sygfp/internal/http/importbudget"
	"github.com/arti-ci/sygfp/internal/importer"
	importjobStore "github.com/arti-ci/sygfp/internal/importjob/store"
	refdataStore "github.com/arti-ci/sygfp/internal/refdata/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		lineRepo = budgetStore.New(db)
		jobRepo  = importjobStore.New(db)
		refRepo  = refdataStore.New(db)

		budgetService = budget.NewService(lineRepo)
		parseService  = importer.NewService(refRepo)
		executor      = importer.NewExecutor(lineRepo, jobRepo, slog.Default())
	)

	var (
		importH     = importHandler.NewHandler(parseService, executor, jobRepo, cfg.Import.MaxFileSizeMB)
		budgetLineH = budgetLineHandler.NewHandler(budgetService)
	)

	router := sygfpHttp.New(importH, budgetLineH, cfg.CORS.AllowedOrigins, cfg.Auth.JWTSecret)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
