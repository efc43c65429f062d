package main

import (
	"fmt"
	"os"

	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/config"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/db"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/handlers"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/logger"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/mlmodel"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/repos"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/server"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/services"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/storage"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config — a missing store URL or API key is fatal at startup.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration error", "error", err)
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos...")
	scenarioRepo := repos.NewScenarioRepo(thePG, log)
	modelRepo := repos.NewModelRepo(thePG, log)
	scenarioModelRepo := repos.NewScenarioModelRepo(thePG, log)
	trainingDataRepo := repos.NewTrainingDataRepo(thePG, log)
	predictionRepo := repos.NewPredictionRepo(thePG, log)

	// Object storage
	bucketService, err := storage.NewBucketService(log, cfg)
	if err != nil {
		log.Fatal("Could not init BucketService", "error", err)
	}

	// One model cache for the process; the activation and inference
	// services share the same instance.
	modelCache := mlmodel.NewCache(log, nil)

	// Services
	log.Info("Setting up services...")
	scenarioService := services.NewScenarioService(thePG, log, scenarioRepo, scenarioModelRepo)
	modelService := services.NewModelService(thePG, log, scenarioRepo, modelRepo, scenarioModelRepo, bucketService)
	activationService := services.NewActivationService(thePG, log, modelRepo, scenarioModelRepo, bucketService, modelCache, cfg.RequestTimeout)
	inferenceService := services.NewInferenceService(thePG, log, scenarioRepo, scenarioModelRepo, predictionRepo, modelCache)
	trainingService := services.NewTrainingService(thePG, log, scenarioRepo, trainingDataRepo, bucketService)

	// Handlers
	scenarioHandler := handlers.NewScenarioHandler(log, scenarioService)
	modelHandler := handlers.NewModelHandler(log, modelService, activationService)
	inferenceHandler := handlers.NewInferenceHandler(log, inferenceService)
	trainingHandler := handlers.NewTrainingHandler(log, trainingService)

	router := server.NewRouter(server.RouterConfig{
		ScenarioHandler:  scenarioHandler,
		ModelHandler:     modelHandler,
		InferenceHandler: inferenceHandler,
		TrainingHandler:  trainingHandler,
	})

	log.Info("Starting server", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
