package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "LEMARCHE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "LEMARCHE_DB_DSN"
	EnvDBHost = "LEMARCHE_DB_HOST"
	EnvDBUser = "LEMARCHE_DB_USER"
	EnvDBName = "LEMARCHE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
