package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type PlacesConfig struct {
	APIKey         string
	SearchBaseURL  string
	DetailsBaseURL string
	GeocodeBaseURL string
	Timeout        time.Duration
}

type FirestoreConfig struct {
	ProjectID string
}

type DiscoveryConfig struct {
	DefaultRadiusMeters int
	MaxConcurrent       int
}

type Config struct {
	Places    PlacesConfig
	Firestore FirestoreConfig
	Discovery DiscoveryConfig
}

func Load() (*Config, error) {
	// Best effort: fall back to real environment variables when no .env exists.
	_ = godotenv.Load()

	cfg := &Config{
		Places: PlacesConfig{
			APIKey:         os.Getenv("GOOGLE_PLACES_API_KEY"),
			SearchBaseURL:  getEnvOrDefault("PLACES_SEARCH_URL", "https://maps.googleapis.com/maps/api/place/nearbysearch/json"),
			DetailsBaseURL: getEnvOrDefault("PLACES_DETAILS_URL", "https://maps.googleapis.com/maps/api/place/details/json"),
			GeocodeBaseURL: getEnvOrDefault("PLACES_GEOCODE_URL", "https://maps.googleapis.com/maps/api/geocode/json"),
			Timeout:        getEnvDuration("PLACES_TIMEOUT", 10*time.Second),
		},
		Firestore: FirestoreConfig{
			ProjectID: getEnvOrDefault("FIRESTORE_PROJECT_ID", "reserveit"),
		},
		Discovery: DiscoveryConfig{
			DefaultRadiusMeters: getEnvInt("DISCOVERY_RADIUS_METERS", 1500),
			MaxConcurrent:       getEnvInt("DISCOVERY_MAX_CONCURRENT", 4),
		},
	}

	if cfg.Places.APIKey == "" {
		return nil, fmt.Errorf("GOOGLE_PLACES_API_KEY environment variable is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
