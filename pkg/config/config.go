package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	AuthLimit    AuthRateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Cart         CartConfig
	Checkout     CheckoutConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"ESSENZA_APP_ENV" required:"true"`
	Port         string `envconfig:"ESSENZA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ESSENZA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ESSENZA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ESSENZA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ESSENZA_DB_DSN"`
	Driver string `envconfig:"ESSENZA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ESSENZA_DB_HOST"`
	LegacyPort     int    `envconfig:"ESSENZA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ESSENZA_DB_USER"`
	LegacyPassword string `envconfig:"ESSENZA_DB_PASSWORD"`
	LegacyName     string `envconfig:"ESSENZA_DB_NAME"`
	LegacySSLMode  string `envconfig:"ESSENZA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ESSENZA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ESSENZA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ESSENZA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ESSENZA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ESSENZA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ESSENZA_REDIS_ADDR"`
	Password     string        `envconfig:"ESSENZA_REDIS_PASSWORD"`
	DB           int           `envconfig:"ESSENZA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ESSENZA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ESSENZA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ESSENZA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ESSENZA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ESSENZA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ESSENZA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ESSENZA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"ESSENZA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"ESSENZA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ESSENZA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ESSENZA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ESSENZA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ESSENZA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ESSENZA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"ESSENZA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"ESSENZA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"ESSENZA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ESSENZA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ESSENZA_AUTO_MIGRATE" default:"false"`
}

type CartConfig struct {
	TTL time.Duration `envconfig:"ESSENZA_CART_TTL" default:"720h"`
}

type CheckoutConfig struct {
	DeliveryFee string `envconfig:"ESSENZA_CHECKOUT_DELIVERY_FEE" default:"2.000"`
	Currency    string `envconfig:"ESSENZA_CHECKOUT_CURRENCY" default:"KWD"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ESSENZA_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"ESSENZA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ESSENZA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	StockTopic         string `envconfig:"ESSENZA_PUBSUB_STOCK_TOPIC" required:"true"`
	StockSubscription  string `envconfig:"ESSENZA_PUBSUB_STOCK_SUBSCRIPTION" required:"true"`
	OrdersTopic        string `envconfig:"ESSENZA_PUBSUB_ORDERS_TOPIC" required:"true"`
	OrdersSubscription string `envconfig:"ESSENZA_PUBSUB_ORDERS_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ESSENZA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ESSENZA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ESSENZA_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
