package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Mail          MailConfig
	Bookings      BookingsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"SC_APP_ENV" required:"true"`
	Port         string   `envconfig:"SC_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"SC_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"SC_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"SC_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SC_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SC_DB_DSN"`
	Driver string `envconfig:"SC_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SC_DB_HOST"`
	Port     int    `envconfig:"SC_DB_PORT" default:"5432"`
	User     string `envconfig:"SC_DB_USER"`
	Password string `envconfig:"SC_DB_PASSWORD"`
	Name     string `envconfig:"SC_DB_NAME"`
	SSLMode  string `envconfig:"SC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SC_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SC_REDIS_ADDR"`
	Password     string        `envconfig:"SC_REDIS_PASSWORD"`
	DB           int           `envconfig:"SC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SC_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SC_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SC_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SC_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SC_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SC_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SC_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SC_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SC_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SC_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SC_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SC_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SC_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SC_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SC_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SC_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SC_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"SC_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SC_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"SC_PUBSUB_DOMAIN_TOPIC" default:"sc-domain-events"`
	DomainSubscription string `envconfig:"SC_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SC_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SC_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SC_OUTBOX_MAX_ATTEMPTS" default:"10"`

	IdempotencyTTL time.Duration `envconfig:"SC_OUTBOX_IDEMPOTENCY_TTL" default:"720h"`
}

type MailConfig struct {
	Enabled  bool   `envconfig:"SC_MAIL_ENABLED" default:"false"`
	SMTPHost string `envconfig:"SC_MAIL_SMTP_HOST"`
	SMTPPort int    `envconfig:"SC_MAIL_SMTP_PORT" default:"587"`
	Username string `envconfig:"SC_MAIL_USERNAME"`
	Password string `envconfig:"SC_MAIL_PASSWORD"`
	From     string `envconfig:"SC_MAIL_FROM"`
}

type BookingsConfig struct {
	PaymentNudgeDays  int `envconfig:"SC_BOOKING_PAYMENT_NUDGE_DAYS" default:"3"`
	PaymentExpiryDays int `envconfig:"SC_BOOKING_PAYMENT_EXPIRY_DAYS" default:"7"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range fallbackDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
