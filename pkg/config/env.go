package config

// EnvPrefix is handed to envconfig when processing the environment.
const EnvPrefix = "caterkita"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error
// messages).
const (
	EnvAppEnv   = "CATERKITA_APP_ENV"
	EnvPort     = "CATERKITA_APP_PORT"
	EnvSiteURL  = "CATERKITA_SITE_URL"
	EnvDBDSN    = "CATERKITA_DB_DSN"
	EnvDBHost   = "CATERKITA_DB_HOST"
	EnvDBUser   = "CATERKITA_DB_USER"
	EnvDBName   = "CATERKITA_DB_NAME"
	EnvRedisURL = "CATERKITA_REDIS_URL"

	EnvJWTSecret              = "CATERKITA_JWT_SECRET"
	EnvJWTIssuer              = "CATERKITA_JWT_ISSUER"
	EnvJWTExpMins             = "CATERKITA_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "CATERKITA_REFRESH_TOKEN_TTL_MINUTES"

	EnvGCPProjectID       = "CATERKITA_GCP_PROJECT_ID"
	EnvPubSubAuditTopic   = "CATERKITA_PUBSUB_AUDIT_TOPIC"
	EnvSESRegion          = "CATERKITA_SES_REGION"
	EnvSESFromEmail       = "CATERKITA_SES_FROM_EMAIL"
	EnvInvitationTTLHours = "CATERKITA_INVITATION_TTL_HOURS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
