package startup

import (
	"context"

	"facegate.io/application/controller"
	"facegate.io/application/liveness"
	"facegate.io/infrastructure/database/connection/cache"
	"facegate.io/infrastructure/detector"
	"facegate.io/infrastructure/logger"
)

// Used to start services such as loggers, caches, detectors, etc.
func StartServices() {
	logger.InitializeLogger()
	client, err := cache.GetInstance()
	if err != nil {
		panic(err)
	}
	if err := client.Ping(context.Background()); err != nil {
		panic(err)
	}
	detector.InitialiseFaceDetector()

	cfg := liveness.LoadConfig()
	registry := liveness.NewSessionRegistry(cfg)
	controller.InitialiseLivenessController(registry, cfg)
}

// Used to clean up after services that have been shutdown.
func CleanUpServices() {
	cache.CleanUp()
}
