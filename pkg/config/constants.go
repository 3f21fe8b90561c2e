package config

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "TIFFINBOX"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "TIFFINBOX_APP_ENV"
	EnvDBDSN  = "TIFFINBOX_DB_DSN"
	EnvDBHost = "TIFFINBOX_DB_HOST"
	EnvDBUser = "TIFFINBOX_DB_USER"
	EnvDBName = "TIFFINBOX_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
