package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Environment names recognized in APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

var ErrParsingConfig = errors.New("failed to parse environment variables into config")

// Config holds the application configuration
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	JWTSecret   string `env:"JWT_SECRET,required"`

	Mongo MongoConfig
	Email EmailConfig

	// How long after otpExpiry a stale pending signup survives before the
	// background sweeper removes it.
	PendingGrace    time.Duration `env:"PENDING_CLEANUP_GRACE" envDefault:"1h"`
	PendingInterval time.Duration `env:"PENDING_CLEANUP_INTERVAL" envDefault:"15m"`
}

// MongoConfig configures the document store connection.
type MongoConfig struct {
	URL             string        `env:"MONGODB_URL,required"`
	Database        string        `env:"MONGODB_DATABASE" envDefault:"houseoftheai"`
	ConnectTimeout  time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`
	MaxPoolSize     uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`
	MinPoolSize     uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"1"`
	MaxConnIdleTime time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"300s"`
	RetryAttempts   int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval   time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"5s"`
}

// EmailConfig configures the transactional email sender.
// PostmarkServerToken is optional so development environments can fall back
// to the file-based dev sender.
type EmailConfig struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"no-reply@houseoftheai.app"`
	SenderName           string `env:"SENDER_NAME" envDefault:"House of the AI"`
	FeedbackToEmail      string `env:"FEEDBACK_TO_EMAIL" envDefault:"support@houseoftheai.app"`
	DevOutputDir         string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// IsProduction reports whether the app runs in production mode. Cookie
// attributes (Secure, SameSite=None) depend on it.
func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}
