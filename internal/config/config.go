package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	OAuth    OAuthConfig    `yaml:"oauth"`
	Mirror   MirrorConfig   `yaml:"mirror"`
	Cover    CoverConfig    `yaml:"cover"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings for the credential store.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// OAuthConfig holds the client credentials used to refresh stored user tokens.
type OAuthConfig struct {
	ClientID     string `yaml:"client_id"     env:"OAUTH_CLIENT_ID"     env-required:"true"`
	ClientSecret string `yaml:"client_secret" env:"OAUTH_CLIENT_SECRET" env-required:"true"`
	AuthURL      string `yaml:"auth_url"      env:"OAUTH_AUTH_URL"      env-default:"https://accounts.google.com/o/oauth2/auth"`
	TokenURL     string `yaml:"token_url"     env:"OAUTH_TOKEN_URL"     env-default:"https://accounts.google.com/o/oauth2/token"`
}

// MirrorConfig holds settings for the remote timeline service.
type MirrorConfig struct {
	BaseURL     string        `yaml:"base_url"     env:"MIRROR_BASE_URL"     env-default:"https://www.googleapis.com/mirror/v1"`
	Timeout     time.Duration `yaml:"timeout"      env:"MIRROR_TIMEOUT"      env-default:"15s"`
	CallbackURL string        `yaml:"callback_url" env:"MIRROR_CALLBACK_URL"`
}

// CoverConfig holds the presentation settings for the bundle cover card.
type CoverConfig struct {
	Title     string `yaml:"title"      env:"COVER_TITLE"      env-default:"To Do List"`
	ImageURL  string `yaml:"image_url"  env:"COVER_IMAGE_URL"  env-default:"http://glasstodo.azurewebsites.net/content/images/todo.jpg"`
	ImagePath string `yaml:"image_path" env:"COVER_IMAGE_PATH" env-default:"./assets/todo.jpg"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
