package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config 애플리케이션 설정
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Cache     CacheConfig     `yaml:"cache"`
	Graph     GraphConfig     `yaml:"graph"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig 서버 설정
type ServerConfig struct {
	Mode            string        `yaml:"mode"` // debug, release, test
	Env             string        `yaml:"env"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig 데이터베이스 설정
type DatabaseConfig struct {
	Driver          string `yaml:"driver"`
	DSN             string `yaml:"dsn"`
	Host            string `yaml:"host"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Name            string `yaml:"name"`
	Port            int    `yaml:"port"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
}

// RedisConfig Redis 설정
type RedisConfig struct {
	Host     string `yaml:"host"`
	Password string `yaml:"password"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	Enabled  bool   `yaml:"enabled"`
}

// CacheConfig 캐시 TTL 설정
type CacheConfig struct {
	TenantTTL time.Duration `yaml:"tenant_ttl"`
	QueryTTL  time.Duration `yaml:"query_ttl"`
}

// GraphConfig 그래프 탐색 설정
type GraphConfig struct {
	MaxDepth         int `yaml:"max_depth"`
	FetchConcurrency int `yaml:"fetch_concurrency"`
}

// CORSConfig CORS 설정
type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"` // comma separated, "*" for any
}

// RateLimitConfig 테넌트별 요청 제한 (Redis 필요, 개발 환경에서는 비활성)
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// LogConfig 로그 설정
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads path, applies defaults and then environment overrides.
// A missing file is not an error: defaults and env still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8787
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMySQL
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 10
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 50
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Cache.TenantTTL == 0 {
		c.Cache.TenantTTL = time.Minute
	}
	if c.Cache.QueryTTL == 0 {
		c.Cache.QueryTTL = 30 * time.Second
	}
	if c.Graph.MaxDepth == 0 {
		c.Graph.MaxDepth = 10
	}
	if c.Graph.FetchConcurrency == 0 {
		c.Graph.FetchConcurrency = 8
	}
	if c.CORS.AllowOrigins == "" {
		c.CORS.AllowOrigins = "*"
	}
	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 120
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// applyEnv 환경변수가 설정 파일보다 우선
func (c *Config) applyEnv() {
	setString(&c.Server.Env, "APP_ENV")
	setString(&c.Server.Mode, "GIN_MODE")
	setInt(&c.Server.Port, "SERVER_PORT")

	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DB_DSN")
	setString(&c.Database.Host, "DB_HOST")
	setInt(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Name, "DB_NAME")

	setBool(&c.Redis.Enabled, "REDIS_ENABLED")
	setString(&c.Redis.Host, "REDIS_HOST")
	setInt(&c.Redis.Port, "REDIS_PORT")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")

	setInt(&c.Graph.MaxDepth, "GRAPH_MAX_DEPTH")
	setInt(&c.Graph.FetchConcurrency, "GRAPH_FETCH_CONCURRENCY")
	setString(&c.CORS.AllowOrigins, "CORS_ALLOW_ORIGINS")
	setInt(&c.RateLimit.RequestsPerMinute, "RATE_LIMIT_RPM")
	setString(&c.Log.Level, "LOG_LEVEL")
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Graph.MaxDepth < 1 {
		return fmt.Errorf("graph.max_depth must be positive, got %d", c.Graph.MaxDepth)
	}
	if c.Graph.FetchConcurrency < 1 {
		return fmt.Errorf("graph.fetch_concurrency must be positive, got %d", c.Graph.FetchConcurrency)
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("rate_limit.requests_per_minute must not be negative, got %d", c.RateLimit.RequestsPerMinute)
	}
	return nil
}

// IsDevelopment 개발 환경 여부
func (c *Config) IsDevelopment() bool {
	switch c.Server.Env {
	case "", "local", "dev", "development":
		return true
	}
	return false
}

// GetDSN returns the explicit DSN or builds one for the driver
func (d *DatabaseConfig) GetDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	switch d.Driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			d.Host, d.Port, d.User, d.Password, d.Name)
	case DriverSQLite:
		if d.Name == "" {
			return "notion-gateway.db"
		}
		return d.Name
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User, d.Password, d.Host, d.Port, d.Name)
	}
}

// Addr returns host:port
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AllowOriginList splits the comma separated origin list
func (c *CORSConfig) AllowOriginList() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
