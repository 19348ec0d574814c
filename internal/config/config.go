package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"    validate:"required"`
	Queue    QueueConfig    `mapstructure:"queue"    validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int    `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" validate:"gte=0"` // seconds
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// RedisConfig contains connection settings for the cache backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"   validate:"gte=0"`
}

// QueueConfig contains settings for the notification channel.
type QueueConfig struct {
	// Queue is the name of the list notifications are published to.
	Queue string `mapstructure:"queue" validate:"required"`

	// PublishTimeoutSeconds bounds how long a single publish attempt may take.
	PublishTimeoutSeconds int `mapstructure:"publish_timeout_seconds" validate:"required,gt=0"`

	// ConnectAttempts bounds startup reconnect attempts before the
	// dispatcher gives up and stays disconnected.
	ConnectAttempts int `mapstructure:"connect_attempts" validate:"required,gt=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=0,lte=31"`
}
