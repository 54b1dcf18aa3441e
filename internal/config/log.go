package config

import (
	"github.com/damoang/notion-gateway/pkg/logger"
)

// LogResolved logs the effective configuration with secrets masked
func LogResolved(cfg *Config) {
	l := logger.GetLogger()
	l.Info().
		Str("env", cfg.Server.Env).
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("db_driver", cfg.Database.Driver).
		Str("db_host", cfg.Database.Host).
		Str("db_name", cfg.Database.Name).
		Str("db_password", mask(cfg.Database.Password)).
		Bool("redis_enabled", cfg.Redis.Enabled).
		Str("redis_addr", cfg.Redis.Addr()).
		Dur("tenant_ttl", cfg.Cache.TenantTTL).
		Dur("query_ttl", cfg.Cache.QueryTTL).
		Int("graph_max_depth", cfg.Graph.MaxDepth).
		Int("graph_fetch_concurrency", cfg.Graph.FetchConcurrency).
		Str("cors_allow_origins", cfg.CORS.AllowOrigins).
		Int("rate_limit_rpm", cfg.RateLimit.RequestsPerMinute).
		Msg("config resolved")
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "****"
}
