package config

const (
	EnvPrefix = "STOCKLINE"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "STOCKLINE_APP_ENV"
	EnvPort   = "STOCKLINE_APP_PORT"

	EnvDBDSN  = "STOCKLINE_DB_DSN"
	EnvDBHost = "STOCKLINE_DB_HOST"
	EnvDBUser = "STOCKLINE_DB_USER"
	EnvDBName = "STOCKLINE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
