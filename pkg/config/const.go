package config

const EnvPrefix = "SMARTCAL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "SMARTCAL_APP_ENV"
	EnvLogLevel   = "SMARTCAL_LOG_LEVEL"
	EnvAPIBaseURL = "SMARTCAL_API_BASE_URL"
	EnvAPITimeout = "SMARTCAL_API_TIMEOUT"
	EnvSessionDir = "SMARTCAL_SESSION_DIR"
	EnvRedisURL   = "SMARTCAL_REDIS_URL"
	EnvCachePath  = "SMARTCAL_CACHE_PATH"
)
