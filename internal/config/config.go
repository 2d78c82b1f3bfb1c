package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendRedis = "redis"
	BackendMySQL = "mysql"
)

// Config holds application level configuration. Values come from an optional
// YAML file named by DBMODEL_CONFIG, then from environment variables.
type Config struct {
	ServerPort   string `yaml:"serverPort"`
	StoreBackend string `yaml:"storeBackend"`
	MySQLDSN     string `yaml:"mysqlDSN"`
	RedisAddr    string `yaml:"redisAddr"`
	RedisDB      int    `yaml:"redisDB"`
	RedisPass    string `yaml:"redisPassword"`
	CacheDB      int    `yaml:"cacheDB"`
	JWTSecret    string `yaml:"jwtSecret"`
	SwaggerHost  string `yaml:"swaggerHost"`
	LogLevel     string `yaml:"logLevel"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		ServerPort:   "8080",
		StoreBackend: BackendRedis,
		MySQLDSN:     "user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=Local",
		RedisAddr:    "localhost:6379",
		RedisDB:      0,
		CacheDB:      1,
		JWTSecret:    "change-me",
		LogLevel:     "info",
	}
}

// Load builds Config from the optional file and the environment.
func Load() (*Config, error) {
	cfg := Defaults()
	if path := os.Getenv("DBMODEL_CONFIG"); path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.StoreBackend = getEnv("STORE_BACKEND", cfg.StoreBackend)
	cfg.MySQLDSN = getEnv("MYSQL_DSN", cfg.MySQLDSN)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.RedisPass = getEnv("REDIS_PASSWORD", cfg.RedisPass)
	cfg.CacheDB = getEnvInt("CACHE_DB", cfg.CacheDB)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.SwaggerHost = getEnv("SWAGGER_HOST", cfg.SwaggerHost)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendRedis, BackendMySQL:
	default:
		return fmt.Errorf("config: unknown store backend %q", c.StoreBackend)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("config: jwt secret is empty")
	}
	return nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
