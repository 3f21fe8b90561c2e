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
	AdminSeed     AdminSeedConfig
	FeatureFlags  FeatureFlagsConfig
	Checkout      CheckoutConfig
	Razorpay      RazorpayConfig
	PhonePe       PhonePeConfig
	Cron          CronConfig
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
	Env          string `envconfig:"TIFFINBOX_APP_ENV" required:"true"`
	Port         string `envconfig:"TIFFINBOX_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TIFFINBOX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TIFFINBOX_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TIFFINBOX_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TIFFINBOX_DB_DSN"`
	Driver string `envconfig:"TIFFINBOX_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TIFFINBOX_DB_HOST"`
	LegacyPort     int    `envconfig:"TIFFINBOX_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TIFFINBOX_DB_USER"`
	LegacyPassword string `envconfig:"TIFFINBOX_DB_PASSWORD"`
	LegacyName     string `envconfig:"TIFFINBOX_DB_NAME"`
	LegacySSLMode  string `envconfig:"TIFFINBOX_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TIFFINBOX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TIFFINBOX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TIFFINBOX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TIFFINBOX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TIFFINBOX_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TIFFINBOX_REDIS_ADDR"`
	Password     string        `envconfig:"TIFFINBOX_REDIS_PASSWORD"`
	DB           int           `envconfig:"TIFFINBOX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TIFFINBOX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TIFFINBOX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TIFFINBOX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TIFFINBOX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TIFFINBOX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TIFFINBOX_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TIFFINBOX_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TIFFINBOX_JWT_EXPIRATION_MINUTES" default:"120"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TIFFINBOX_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TIFFINBOX_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TIFFINBOX_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TIFFINBOX_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TIFFINBOX_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"TIFFINBOX_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"TIFFINBOX_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"TIFFINBOX_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// AdminSeedConfig bootstraps the first dashboard account. Both fields
// set means the api process ensures the account exists at startup.
type AdminSeedConfig struct {
	Email    string `envconfig:"TIFFINBOX_ADMIN_SEED_EMAIL"`
	Password string `envconfig:"TIFFINBOX_ADMIN_SEED_PASSWORD"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TIFFINBOX_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TIFFINBOX_AUTO_MIGRATE" default:"false"`
}

type CheckoutConfig struct {
	SessionTTL          time.Duration `envconfig:"TIFFINBOX_CHECKOUT_SESSION_TTL" default:"24h"`
	CallbackDedupeTTL   time.Duration `envconfig:"TIFFINBOX_CHECKOUT_CALLBACK_DEDUPE_TTL" default:"168h"`
	PendingOrderMaxAge  time.Duration `envconfig:"TIFFINBOX_CHECKOUT_PENDING_ORDER_MAX_AGE" default:"48h"`
	ReconcileLookback   time.Duration `envconfig:"TIFFINBOX_CHECKOUT_RECONCILE_LOOKBACK" default:"24h"`
	ReconcileBatchLimit int           `envconfig:"TIFFINBOX_CHECKOUT_RECONCILE_BATCH_LIMIT" default:"50"`
}

type RazorpayConfig struct {
	KeyID     string `envconfig:"TIFFINBOX_RAZORPAY_KEY_ID"`
	KeySecret string `envconfig:"TIFFINBOX_RAZORPAY_KEY_SECRET"`
	BaseURL   string `envconfig:"TIFFINBOX_RAZORPAY_BASE_URL" default:"https://api.razorpay.com"`
}

type PhonePeConfig struct {
	MerchantID  string `envconfig:"TIFFINBOX_PHONEPE_MERCHANT_ID"`
	SaltKey     string `envconfig:"TIFFINBOX_PHONEPE_SALT_KEY"`
	SaltIndex   string `envconfig:"TIFFINBOX_PHONEPE_SALT_INDEX" default:"1"`
	BaseURL     string `envconfig:"TIFFINBOX_PHONEPE_BASE_URL" default:"https://api-preprod.phonepe.com/apis/pg-sandbox"`
	RedirectURL string `envconfig:"TIFFINBOX_PHONEPE_REDIRECT_URL"`
	CallbackURL string `envconfig:"TIFFINBOX_PHONEPE_CALLBACK_URL"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"TIFFINBOX_CRON_INTERVAL" default:"15m"`
	LockTTL  time.Duration `envconfig:"TIFFINBOX_CRON_LOCK_TTL" default:"14m"`
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
