package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds every setting the backend reads from the environment.
type Config struct {
	Environment string
	Port        string

	// Admin session
	AdminPassword string
	SessionSecret string

	// Webflow CMS
	WebflowToken           string
	WebflowAPIURL          string
	WebflowSiteID          string
	BlogCollectionID       string
	CategoriesCollectionID string
	LocationsCollectionID  string

	// Image hosting fallbacks
	ImgBBKey               string
	CloudinaryCloudName    string
	CloudinaryUploadPreset string

	// Upload limits
	MaxUploadBytes int64

	// CORS
	AllowedOrigins []string

	Debug bool
}

// DefaultWebflowAPIURL is the production Webflow Data API base.
const DefaultWebflowAPIURL = "https://api.webflow.com/v2"

// DefaultMaxUploadBytes matches the Vercel serverless request body ceiling.
const DefaultMaxUploadBytes = 4 * 1024 * 1024

// LoadConfig reads configuration from the environment, with .env file
// support for local development.
func LoadConfig() *Config {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	switch env {
	case "production":
		loadEnvFile(".env.production")
	default:
		loadEnvFile(".env.local")
	}

	config := &Config{
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
		Port:        getEnvWithDefault("PORT", "3000"),
		Debug:       getEnvBool("DEBUG", false),
	}

	// Trim whitespace to avoid trailing spaces/newlines from env sources
	config.AdminPassword = strings.TrimSpace(os.Getenv("ADMIN_PASSWORD"))
	config.SessionSecret = strings.TrimSpace(getEnvWithDefault("SESSION_SECRET", "default-secret"))

	config.WebflowToken = strings.TrimSpace(os.Getenv("WEBFLOW_API_KEY"))
	config.WebflowAPIURL = strings.TrimSpace(getEnvWithDefault("WEBFLOW_API_URL", DefaultWebflowAPIURL))
	config.WebflowSiteID = strings.TrimSpace(os.Getenv("WEBFLOW_SITE_ID"))
	config.BlogCollectionID = strings.TrimSpace(os.Getenv("BLOG_COLLECTION_ID"))
	config.CategoriesCollectionID = strings.TrimSpace(os.Getenv("CATEGORIES_COLLECTION_ID"))
	config.LocationsCollectionID = strings.TrimSpace(os.Getenv("LOCATIONS_COLLECTION_ID"))

	config.ImgBBKey = strings.TrimSpace(os.Getenv("IMGBB_API_KEY"))
	config.CloudinaryCloudName = strings.TrimSpace(os.Getenv("CLOUDINARY_CLOUD_NAME"))
	config.CloudinaryUploadPreset = strings.TrimSpace(os.Getenv("CLOUDINARY_UPLOAD_PRESET"))

	config.MaxUploadBytes = getEnvInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)

	allowedOrigins := getEnvWithDefault("ALLOWED_ORIGINS", "*")
	if allowedOrigins == "*" {
		config.AllowedOrigins = []string{"*"}
	} else {
		config.AllowedOrigins = strings.Split(allowedOrigins, ",")
	}

	if config.Environment == "production" {
		config.Debug = false
	}

	return config
}

// Cached config (initialized once per cold start)
var (
	cachedConfig *Config
	configOnce   sync.Once
)

// GetCached returns the process-wide cached Config. On serverless (Vercel)
// it initializes once per cold start and is reused across warm invocations.
// The returned value is read-only shared state.
func GetCached() *Config {
	configOnce.Do(func() {
		cachedConfig = LoadConfig()
	})
	return cachedConfig
}

// Validate checks the settings that must be present for the process to
// serve at all. Feature-level settings (admin password, Webflow token,
// image host keys) are checked by the components that need them so their
// absence produces a precise error on the operation that requires them.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.SessionSecret == "" || c.SessionSecret == "default-secret" {
		if c.Environment == "production" {
			return fmt.Errorf("SESSION_SECRET must be set in production")
		}
	}

	return nil
}

// IsProduction reports whether the backend runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment reports whether the backend runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnvWithDefault returns the env value or a default when unset.
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool parses a boolean env value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvInt64 parses an integer env value.
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// loadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment. Existing variables are never overwritten.
func loadEnvFile(filename string) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return
	}

	file, err := os.Open(filename)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if len(value) >= 2 {
			if (strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"")) ||
				(strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'")) {
				value = value[1 : len(value)-1]
			}
		}

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
