package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided
// via the config file or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Anonymous posting policy: when enabled, unauthenticated creates and
	// replies are attributed to the AnonymousUser account.
	AllowAnonymous bool
	AnonymousUser  string
	// Uploads
	UploadsDir string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Database
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Redis for caching and flash notifications
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool
var anonConfigured bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// SetForTesting replaces the cached configuration. Test helper only.
func SetForTesting(c AppConfig) {
	cfg = c
	loaded = true
}

// loadJSONConfig reads the JSON file into out if present. Returns error only
// for invalid JSON; a missing file is silently ignored.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var raw struct {
		App struct {
			AppPort            string   `json:"AppPort"`
			JWTSecret          string   `json:"JWTSecret"`
			RateLimitPerMinute int      `json:"RateLimitPerMinute"`
			AllowedOrigins     []string `json:"AllowedOrigins"`
			AllowAnonymous     *bool    `json:"AllowAnonymous"`
			AnonymousUser      string   `json:"AnonymousUser"`
			UploadsDir         string   `json:"UploadsDir"`
		} `json:"app"`
		Gin struct {
			Mode    string `json:"Mode"`
			LogPath string `json:"LogPath"`
		} `json:"gin"`
		Database struct {
			DatabaseURI string `json:"DatabaseURI"`
			DBHost      string `json:"DBHost"`
			DBPort      string `json:"DBPort"`
			DBUser      string `json:"DBUser"`
			DBPassword  string `json:"DBPassword"`
			DBName      string `json:"DBName"`
		} `json:"database"`
		Redis struct {
			RedisHost     string `json:"RedisHost"`
			RedisPort     int    `json:"RedisPort"`
			RedisDB       int    `json:"RedisDB"`
			RedisPassword string `json:"RedisPassword"`
		} `json:"redis"`
		Log struct {
			Level      string `json:"Level"`
			Path       string `json:"Path"`
			MaxSizeMB  int    `json:"MaxSizeMB"`
			MaxBackups int    `json:"MaxBackups"`
			MaxAgeDays int    `json:"MaxAgeDays"`
			Compress   bool   `json:"Compress"`
		} `json:"log"`
	}

	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	out.AppPort = raw.App.AppPort
	out.JWTSecret = raw.App.JWTSecret
	out.RateLimitPerMinute = raw.App.RateLimitPerMinute
	out.AllowedOrigins = raw.App.AllowedOrigins
	if raw.App.AllowAnonymous != nil {
		out.AllowAnonymous = *raw.App.AllowAnonymous
		anonConfigured = true
	}
	out.AnonymousUser = raw.App.AnonymousUser
	out.UploadsDir = raw.App.UploadsDir
	out.GinMode = raw.Gin.Mode
	out.GinPath = raw.Gin.LogPath
	out.DatabaseURI = raw.Database.DatabaseURI
	out.DBHost = raw.Database.DBHost
	out.DBPort = raw.Database.DBPort
	out.DBUser = raw.Database.DBUser
	out.DBPassword = raw.Database.DBPassword
	out.DBName = raw.Database.DBName
	out.RedisHost = raw.Redis.RedisHost
	out.RedisPort = raw.Redis.RedisPort
	out.RedisDB = raw.Redis.RedisDB
	out.RedisPassword = raw.Redis.RedisPassword
	out.LogLevel = raw.Log.Level
	out.LogPath = raw.Log.Path
	out.LogMaxSizeMB = raw.Log.MaxSizeMB
	out.LogMaxBackups = raw.Log.MaxBackups
	out.LogMaxAgeDays = raw.Log.MaxAgeDays
	out.LogCompress = raw.Log.Compress

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	// Anonymous posting mirrors the historical fallback-author behavior and
	// stays on unless explicitly disabled.
	if !anonConfigured {
		c.AllowAnonymous = true
	}
	if c.AnonymousUser == "" {
		c.AnonymousUser = "anonymous"
	}
	if c.UploadsDir == "" {
		c.UploadsDir = filepath.Join("static", "uploads", "tweets")
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "minitweet"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := os.Getenv("APP_PORT"); v != "" {
		c.AppPort = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("ALLOW_ANONYMOUS"); v != "" {
		c.AllowAnonymous = v == "true"
	}
	if v := os.Getenv("ANONYMOUS_USER"); v != "" {
		c.AnonymousUser = v
	}
	if v := os.Getenv("UPLOADS_DIR"); v != "" {
		c.UploadsDir = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.GinMode = v
	}
	if v := os.Getenv("GIN_PATH"); v != "" {
		c.GinPath = v
	}
	if v := os.Getenv("DATABASE_URI"); v != "" {
		c.DatabaseURI = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.DBHost = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		c.DBPort = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.DBUser = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.DBPassword = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.DBName = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.RedisHost = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_PATH"); v != "" {
		c.LogPath = v
	}
	if v := os.Getenv("LOG_MAX_SIZE_MB"); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := os.Getenv("LOG_MAX_BACKUPS"); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := os.Getenv("LOG_MAX_AGE_DAYS"); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		c.LogCompress = v == "true"
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
