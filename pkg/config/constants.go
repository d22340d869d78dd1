package config

// EnvPrefix scopes every environment variable envconfig parses.
const EnvPrefix = "SC"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "SC_APP_ENV"
	EnvPort         = "SC_APP_PORT"
	EnvRedisURL     = "SC_REDIS_URL"
	EnvJWTSecret    = "SC_JWT_SECRET"
	EnvJWTIssuer    = "SC_JWT_ISSUER"
	EnvJWTExpMins   = "SC_JWT_EXPIRATION_MINUTES"
	EnvGCPProjectID = "SC_GCP_PROJECT_ID"

	EnvPubSubDomainSub = "SC_PUBSUB_DOMAIN_SUBSCRIPTION"
)

const (
	EnvDBDSN  = "SC_DB_DSN"
	EnvDBHost = "SC_DB_HOST"
	EnvDBUser = "SC_DB_USER"
	EnvDBName = "SC_DB_NAME"
)

var fallbackDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
