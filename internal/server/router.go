package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/handlers"
)

type RouterConfig struct {
	ScenarioHandler  *handlers.ScenarioHandler
	ModelHandler     *handlers.ModelHandler
	InferenceHandler *handlers.InferenceHandler
	TrainingHandler  *handlers.TrainingHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	v1 := router.Group("/v1")
	{
		v1.GET("/scenarios", cfg.ScenarioHandler.ListScenarios)
		v1.GET("/scenarios/:scenario_id/models", cfg.ScenarioHandler.ListScenarioModels)

		// "model" and "reconcile" are dispatched inside ModelsRoute, see the
		// handler for why they share the :model_id segment.
		v1.POST("/scenarios/:scenario_id/models/:model_id", cfg.ModelHandler.ModelsRoute)
		v1.POST("/scenarios/:scenario_id/models/:model_id/activate", cfg.ModelHandler.ActivateModel)

		v1.POST("/scenarios/:scenario_id/predict", cfg.InferenceHandler.Predict)

		// "training_data" is dispatched inside TrainRoute.
		v1.POST("/scenarios/:scenario_id/train/:data_id", cfg.TrainingHandler.TrainRoute)
	}

	return router
}
