package config

const (
	EnvPrefix = "essenza"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                 = "ESSENZA_APP_ENV"
	EnvPort                   = "ESSENZA_APP_PORT"
	EnvDBDSN                  = "ESSENZA_DB_DSN"
	EnvDBHost                 = "ESSENZA_DB_HOST"
	EnvDBUser                 = "ESSENZA_DB_USER"
	EnvDBName                 = "ESSENZA_DB_NAME"
	EnvDBPassword             = "ESSENZA_DB_PASSWORD"
	EnvRedisURL               = "ESSENZA_REDIS_URL"
	EnvJWTSecret              = "ESSENZA_JWT_SECRET"
	EnvJWTIssuer              = "ESSENZA_JWT_ISSUER"
	EnvJWTExpMins             = "ESSENZA_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "ESSENZA_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "ESSENZA_GCP_PROJECT_ID"
	EnvPubSubStockTopic       = "ESSENZA_PUBSUB_STOCK_TOPIC"
	EnvPubSubStockSub         = "ESSENZA_PUBSUB_STOCK_SUBSCRIPTION"
	EnvPubSubOrdersTopic      = "ESSENZA_PUBSUB_ORDERS_TOPIC"
	EnvPubSubOrdersSub        = "ESSENZA_PUBSUB_ORDERS_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
