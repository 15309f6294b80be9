// pkg/config/env_config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvironmentConfig holds the deployment-level settings that come from
// environment variables rather than the simulation config file.
type EnvironmentConfig struct {
	ListenAddress string
	HealthPort    int
	MaxClients    int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	UpdateRate    int

	// Circuit Breaker Configuration
	CircuitBreakerMaxRequests         uint32
	CircuitBreakerInterval            time.Duration
	CircuitBreakerTimeout             time.Duration
	CircuitBreakerMaxConsecutiveFails uint32

	// Resource Management Configuration
	MaxMemoryMB           int64
	MaxGoroutines         int
	ShutdownTimeout       time.Duration
	ResourceCheckInterval time.Duration
}

// LoadConfigFromEnv loads deployment configuration from CLOTHSIM_*
// environment variables, falling back to defaults for unset values.
func LoadConfigFromEnv() (*EnvironmentConfig, error) {
	config := &EnvironmentConfig{
		ListenAddress: getEnvOrDefault("CLOTHSIM_LISTEN_ADDRESS", ":8080"),
		HealthPort:    getEnvAsIntOrDefault("CLOTHSIM_HEALTH_PORT", 8081),
		MaxClients:    getEnvAsIntOrDefault("CLOTHSIM_MAX_CLIENTS", 16),
		ReadTimeout:   getEnvAsDurationOrDefault("CLOTHSIM_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:  getEnvAsDurationOrDefault("CLOTHSIM_WRITE_TIMEOUT", 30*time.Second),
		UpdateRate:    getEnvAsIntOrDefault("CLOTHSIM_UPDATE_RATE", 20),

		CircuitBreakerMaxRequests:         uint32(getEnvAsIntOrDefault("CLOTHSIM_CB_MAX_REQUESTS", 3)),
		CircuitBreakerInterval:            getEnvAsDurationOrDefault("CLOTHSIM_CB_INTERVAL", 60*time.Second),
		CircuitBreakerTimeout:             getEnvAsDurationOrDefault("CLOTHSIM_CB_TIMEOUT", 30*time.Second),
		CircuitBreakerMaxConsecutiveFails: uint32(getEnvAsIntOrDefault("CLOTHSIM_CB_MAX_CONSECUTIVE_FAILS", 5)),

		MaxMemoryMB:           int64(getEnvAsIntOrDefault("CLOTHSIM_MAX_MEMORY_MB", 500)),
		MaxGoroutines:         getEnvAsIntOrDefault("CLOTHSIM_MAX_GOROUTINES", 100),
		ShutdownTimeout:       getEnvAsDurationOrDefault("CLOTHSIM_SHUTDOWN_TIMEOUT", 30*time.Second),
		ResourceCheckInterval: getEnvAsDurationOrDefault("CLOTHSIM_RESOURCE_CHECK_INTERVAL", 10*time.Second),
	}

	if err := validateEnvironmentConfig(config); err != nil {
		return nil, fmt.Errorf("invalid environment configuration: %w", err)
	}

	return config, nil
}

// ApplyEnvironmentOverrides applies environment variable overrides to an
// existing simulation configuration. File values win unless the matching
// CLOTHSIM_* variable is set.
func ApplyEnvironmentOverrides(config *SimConfig) error {
	if addr := os.Getenv("CLOTHSIM_LISTEN_ADDRESS"); addr != "" {
		config.Network.ListenAddress = addr
	}
	if port := os.Getenv("CLOTHSIM_HEALTH_PORT"); port != "" {
		value, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid CLOTHSIM_HEALTH_PORT %q: %w", port, err)
		}
		config.Network.HealthPort = value
	}
	if clients := os.Getenv("CLOTHSIM_MAX_CLIENTS"); clients != "" {
		value, err := strconv.Atoi(clients)
		if err != nil {
			return fmt.Errorf("invalid CLOTHSIM_MAX_CLIENTS %q: %w", clients, err)
		}
		config.Network.MaxClients = value
	}
	if rate := os.Getenv("CLOTHSIM_UPDATE_RATE"); rate != "" {
		value, err := strconv.Atoi(rate)
		if err != nil {
			return fmt.Errorf("invalid CLOTHSIM_UPDATE_RATE %q: %w", rate, err)
		}
		config.Network.UpdateRate = value
	}
	if workers := os.Getenv("CLOTHSIM_WORKERS"); workers != "" {
		value, err := strconv.Atoi(workers)
		if err != nil {
			return fmt.Errorf("invalid CLOTHSIM_WORKERS %q: %w", workers, err)
		}
		config.Step.Workers = value
	}
	return config.Validate()
}

func validateEnvironmentConfig(config *EnvironmentConfig) error {
	if config.ListenAddress == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if config.HealthPort < 1 || config.HealthPort > 65535 {
		return fmt.Errorf("health port must be between 1 and 65535, got %d", config.HealthPort)
	}
	if config.MaxClients < 1 {
		return fmt.Errorf("max clients must be at least 1, got %d", config.MaxClients)
	}
	if config.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %v", config.ReadTimeout)
	}
	if config.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive, got %v", config.WriteTimeout)
	}
	if config.UpdateRate < 1 {
		return fmt.Errorf("update rate must be at least 1, got %d", config.UpdateRate)
	}
	if config.CircuitBreakerMaxRequests < 1 {
		return fmt.Errorf("circuit breaker max requests must be at least 1, got %d", config.CircuitBreakerMaxRequests)
	}
	if config.CircuitBreakerInterval <= 0 {
		return fmt.Errorf("circuit breaker interval must be positive, got %v", config.CircuitBreakerInterval)
	}
	if config.CircuitBreakerTimeout <= 0 {
		return fmt.Errorf("circuit breaker timeout must be positive, got %v", config.CircuitBreakerTimeout)
	}
	if config.MaxMemoryMB < 1 {
		return fmt.Errorf("max memory must be at least 1MB, got %d", config.MaxMemoryMB)
	}
	if config.MaxGoroutines < 1 {
		return fmt.Errorf("max goroutines must be at least 1, got %d", config.MaxGoroutines)
	}
	if config.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %v", config.ShutdownTimeout)
	}
	if config.ResourceCheckInterval <= 0 {
		return fmt.Errorf("resource check interval must be positive, got %v", config.ResourceCheckInterval)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
