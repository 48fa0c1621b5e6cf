package config

// EnvPrefix scopes every environment variable the app reads.
const EnvPrefix = "TBO"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv             = "TBO_APP_ENV"
	EnvPort               = "TBO_APP_PORT"
	EnvDBDSN              = "TBO_DB_DSN"
	EnvDBHost             = "TBO_DB_HOST"
	EnvDBUser             = "TBO_DB_USER"
	EnvDBName             = "TBO_DB_NAME"
	EnvRedisURL           = "TBO_REDIS_URL"
	EnvJWTSecret          = "TBO_JWT_SECRET"
	EnvJWTIssuer          = "TBO_JWT_ISSUER"
	EnvCheckoutSuccessURL = "TBO_CHECKOUT_SUCCESS_URL"
	EnvCheckoutCancelURL  = "TBO_CHECKOUT_CANCEL_URL"
	EnvWhatsAppNumber     = "TBO_WHATSAPP_NUMBER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
