package envvar

const (
	// LinguaEnv is the environment variable used to determine the environment
	LinguaEnv = "LINGUA_ENV"

	// LinguaServerHTTPPort is the environment variable used to determine the HTTP port
	LinguaServerHTTPPort = "LINGUA_SERVER_HTTP_PORT"

	// LinguaDatabaseURL is the environment variable holding the registry Postgres DSN
	LinguaDatabaseURL = "LINGUA_DATABASE_URL"

	// LinguaMQTTBrokerURL is the environment variable overriding the usage MQTT broker
	LinguaMQTTBrokerURL = "LINGUA_MQTT_BROKER_URL"

	// LinguaLogFile is the environment variable used to determine the log file path
	LinguaLogFile = "LINGUA_LOG_FILE"
)
