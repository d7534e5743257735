package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/MontiPy/pic-tracking-sub000/internal/cache"
	"github.com/MontiPy/pic-tracking-sub000/internal/config"
	httpserver "github.com/MontiPy/pic-tracking-sub000/internal/interfaces/http"
	"github.com/MontiPy/pic-tracking-sub000/internal/report"
	"github.com/MontiPy/pic-tracking-sub000/internal/repository"
	"github.com/MontiPy/pic-tracking-sub000/internal/service"
	"github.com/MontiPy/pic-tracking-sub000/migrations"
	"github.com/MontiPy/pic-tracking-sub000/pkg/database"
	"github.com/MontiPy/pic-tracking-sub000/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	// .env is optional; local overrides only
	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting supplier task tracking portal",
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(migrations.FS); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	supplierRepo := repository.NewSupplierRepository(db.DB, logger)
	projectRepo := repository.NewProjectRepository(db.DB, logger)
	taskTypeRepo := repository.NewTaskTypeRepository(db.DB, logger)
	templateRepo := repository.NewTemplateRepository(db.DB, logger)
	instanceRepo := repository.NewInstanceRepository(db.DB, logger)
	queryRepo := repository.NewTaskQueryRepository(db.DB, logger)

	// Cache for dashboard and summary aggregates
	appCache := cache.New(cfg.Cache.SummaryTTL, cfg.Cache.CleanupInterval, logger)

	// Services
	catalogService := service.NewCatalogService(supplierRepo, projectRepo, taskTypeRepo, appCache, logger)
	scheduleService := service.NewScheduleService(
		projectRepo, supplierRepo, taskTypeRepo, templateRepo, instanceRepo,
		db, appCache, logger,
	)
	taskService := service.NewTaskService(instanceRepo, queryRepo, db, appCache, logger)
	dashboardService := service.NewDashboardService(
		queryRepo, supplierRepo, projectRepo, appCache, cfg.Cache.DashboardTTL, logger,
	)
	reportWriter := report.NewTaskReportWriter(logger)

	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		catalogService,
		scheduleService,
		taskService,
		dashboardService,
		reportWriter,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
