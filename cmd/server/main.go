// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/opd-ai/go-clothsim/pkg/config"
	"github.com/opd-ai/go-clothsim/pkg/engine"
	"github.com/opd-ai/go-clothsim/pkg/health"
	"github.com/opd-ai/go-clothsim/pkg/logging"
	"github.com/opd-ai/go-clothsim/pkg/network"
	"github.com/opd-ai/go-clothsim/pkg/physics"
	"github.com/opd-ai/go-clothsim/pkg/resource"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "config.json", "Path to configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	flag.Parse()

	// Create default configuration file if requested
	if *createDefault {
		defaultConfig := config.DefaultConfig()
		if err := config.SaveConfig(defaultConfig, *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	// Load configuration
	var simConfig *config.SimConfig

	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", *configPath,
		)
		simConfig = config.DefaultConfig()
	} else {
		simConfig, err = config.LoadConfig(*configPath)
		if err != nil {
			logger.Error(ctx, "Failed to load configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
	}

	// Apply environment variable overrides
	if err := config.ApplyEnvironmentOverrides(simConfig); err != nil {
		logger.Error(ctx, "Failed to apply environment configuration", err)
		os.Exit(1)
	}

	envConfig, err := config.LoadConfigFromEnv()
	if err != nil {
		logger.Error(ctx, "Failed to load environment configuration", err)
		os.Exit(1)
	}

	// Create simulation
	sim, err := engine.NewSimulation(simConfig)
	if err != nil {
		logger.Error(ctx, "Failed to create simulation", err)
		os.Exit(1)
	}

	// Create server
	server := network.NewSimServer(sim, simConfig.Network.MaxClients)

	// Resource manager bounds goroutine use and drives graceful shutdown
	resourceManager := resource.NewResourceManager(envConfig)
	if err := resourceManager.Start(); err != nil {
		logger.Error(ctx, "Failed to start resource manager", err)
		os.Exit(1)
	}

	// Setup health checks
	healthChecker := health.NewHealthChecker()
	healthChecker.AddCheck(health.NewSimulationHealthCheck(
		func() bool { return sim.Status() == engine.SimStatusRunning },
		sim.LastUpdate,
		5*time.Second,
	))
	healthChecker.AddCheck(health.NewClothStateHealthCheck(func() []physics.Vec3 {
		_, positions := sim.SnapshotState()
		return positions
	}))
	healthChecker.AddCheck(health.NewNetworkHealthCheck(
		server.ClientCount,
		simConfig.Network.MaxClients,
	))
	healthChecker.AddCheck(resource.NewResourceHealthCheck(resourceManager))

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", healthChecker.LivenessHandler)
	healthMux.HandleFunc("/ready", healthChecker.ReadinessHandler)

	healthServer := &http.Server{
		Addr:         ":" + strconv.Itoa(simConfig.Network.HealthPort),
		Handler:      healthMux,
		ReadTimeout:  envConfig.ReadTimeout,
		WriteTimeout: envConfig.WriteTimeout,
	}

	go func() {
		logger.Info(ctx, "Starting health check server",
			"port", simConfig.Network.HealthPort,
		)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Health check server failed", err)
		}
	}()

	// Start the simulation loop as a tracked goroutine
	simCtx, cancelSim := context.WithCancel(ctx)
	if err := resourceManager.StartGoroutine(simCtx, "simulation-loop", sim.Run); err != nil {
		logger.Error(ctx, "Failed to start simulation loop", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Starting server",
		"address", simConfig.Network.ListenAddress,
		"nodes", simConfig.Cloth.Dim*simConfig.Cloth.Dim,
		"max_clients", simConfig.Network.MaxClients,
	)
	if err := server.Start(simConfig.Network.ListenAddress); err != nil {
		logger.Error(ctx, "Failed to start server", err,
			"address", simConfig.Network.ListenAddress,
		)
		os.Exit(1)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), envConfig.ShutdownTimeout)
	defer cancel()

	cancelSim()

	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Health check server shutdown failed", err)
	}

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown failed", err)
	}

	if err := resourceManager.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Resource manager shutdown failed", err)
	}
}
