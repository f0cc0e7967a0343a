package config

// EnvPrefix is the namespace applied to every environment variable.
const EnvPrefix = "VYAAPAR"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "VYAAPAR_DB_DSN"
	EnvDBHost = "VYAAPAR_DB_HOST"
	EnvDBUser = "VYAAPAR_DB_USER"
	EnvDBName = "VYAAPAR_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
