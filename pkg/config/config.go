package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	GitHub   GitHubConfig
	Scoring  ScoringConfig
	API      APIConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

type DatabaseConfig struct {
	Path string
}

type GitHubConfig struct {
	Token          string
	MaxRetries     int
	MaxPages       int
	RequestsPerSec float64
}

type ScoringConfig struct {
	// MinPopulation is the smallest contributor population the sampler will
	// draw from. Populations below this return no sample.
	MinPopulation int
	HeatmapYears  []int

	WeightPRActivity     float64
	WeightConsistency    float64
	WeightCommentQuality float64
	WeightPRQuality      float64
	WeightTimeTaken      float64
	WeightNumRepos       float64
}

type APIConfig struct {
	Key string
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./gitscore.db"),
		},
		GitHub: GitHubConfig{
			Token:          getEnv("GITHUB_TOKEN", ""),
			MaxRetries:     getEnvAsInt("GITHUB_MAX_RETRIES", 5),
			MaxPages:       getEnvAsInt("GITHUB_MAX_PAGES", 10),
			RequestsPerSec: getEnvAsFloat("GITHUB_REQUESTS_PER_SEC", 10.0),
		},
		Scoring: ScoringConfig{
			MinPopulation:        getEnvAsInt("SAMPLER_MIN_POPULATION", 30),
			HeatmapYears:         []int{2024, 2025, 2026},
			WeightPRActivity:     getEnvAsFloat("WEIGHT_PR_ACTIVITY", 1.0),
			WeightConsistency:    getEnvAsFloat("WEIGHT_CONSISTENCY", 1.0),
			WeightCommentQuality: getEnvAsFloat("WEIGHT_COMMENT_QUALITY", 1.0),
			WeightPRQuality:      getEnvAsFloat("WEIGHT_PR_QUALITY", 1.0),
			WeightTimeTaken:      getEnvAsFloat("WEIGHT_TIME_TAKEN", 1.0),
			WeightNumRepos:       getEnvAsFloat("WEIGHT_NUM_REPOS", 1.0),
		},
		API: APIConfig{
			Key: getEnv("API_KEY", ""),
		},
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
