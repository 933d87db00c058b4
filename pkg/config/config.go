package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "EBOOKPOP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "EBOOKPOP_DB_DSN"
	EnvDBHost = "EBOOKPOP_DB_HOST"
	EnvDBUser = "EBOOKPOP_DB_USER"
	EnvDBName = "EBOOKPOP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

// Repository drivers selectable at startup. The memory driver serves the
// offline/demo mode and is never used as a fallback for transient errors.
const (
	OrdersDriverPostgres = "postgres"
	OrdersDriverMemory   = "memory"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Orders    OrdersConfig
	GCP       GCPConfig
	GCS       GCSConfig
	Slip      SlipConfig
	Telegram  TelegramConfig
	Mailer    MailerConfig
	PromptPay PromptPayConfig
	Admin     AdminConfig
	JWT       JWTConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Orders.Driver == OrdersDriverPostgres {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EBOOKPOP_APP_ENV" required:"true"`
	Port         string `envconfig:"EBOOKPOP_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"EBOOKPOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EBOOKPOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"EBOOKPOP_DB_DSN"`

	LegacyHost     string `envconfig:"EBOOKPOP_DB_HOST"`
	LegacyPort     int    `envconfig:"EBOOKPOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"EBOOKPOP_DB_USER"`
	LegacyPassword string `envconfig:"EBOOKPOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"EBOOKPOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"EBOOKPOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EBOOKPOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EBOOKPOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EBOOKPOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EBOOKPOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"EBOOKPOP_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EBOOKPOP_REDIS_URL"`
	Address      string        `envconfig:"EBOOKPOP_REDIS_ADDR"`
	Password     string        `envconfig:"EBOOKPOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"EBOOKPOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EBOOKPOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EBOOKPOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EBOOKPOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EBOOKPOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EBOOKPOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// OrdersConfig selects the order repository implementation at startup.
type OrdersConfig struct {
	Driver string `envconfig:"EBOOKPOP_ORDERS_DRIVER" default:"postgres"`
}

func (o OrdersConfig) IsDemo() bool {
	return strings.EqualFold(o.Driver, OrdersDriverMemory)
}

type GCPConfig struct {
	ProjectID              string `envconfig:"EBOOKPOP_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"EBOOKPOP_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"EBOOKPOP_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	SlipBucket        string        `envconfig:"EBOOKPOP_GCS_SLIP_BUCKET" default:"order-slips"`
	AssetsBucket      string        `envconfig:"EBOOKPOP_GCS_ASSETS_BUCKET" default:"book-assets"`
	SlipURLExpiry     time.Duration `envconfig:"EBOOKPOP_GCS_SLIP_URL_EXPIRY" default:"168h"`
	DownloadURLExpiry time.Duration `envconfig:"EBOOKPOP_GCS_DOWNLOAD_URL_EXPIRY" default:"1h"`
}

type SlipConfig struct {
	MaxUploadMB int `envconfig:"EBOOKPOP_SLIP_MAX_UPLOAD_MB" default:"10"`
}

type TelegramConfig struct {
	BotToken string `envconfig:"EBOOKPOP_TELEGRAM_BOT_TOKEN"`
	ChatID   string `envconfig:"EBOOKPOP_TELEGRAM_CHAT_ID"`
}

type MailerConfig struct {
	APIKey      string `envconfig:"EBOOKPOP_MAILER_API_KEY"`
	DefaultFrom string `envconfig:"EBOOKPOP_MAILER_FROM_EMAIL" default:"E-Book Store <onboarding@resend.dev>"`
}

type PromptPayConfig struct {
	MerchantID string `envconfig:"EBOOKPOP_PROMPTPAY_ID" default:"0812345678"`
}

type AdminConfig struct {
	Email        string `envconfig:"EBOOKPOP_ADMIN_EMAIL"`
	PasswordHash string `envconfig:"EBOOKPOP_ADMIN_PASSWORD_HASH"`

	ArgonMemoryKB    int `envconfig:"EBOOKPOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"EBOOKPOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"EBOOKPOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"EBOOKPOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"EBOOKPOP_ARGON_KEY_LEN" default:"32"`
}

type JWTConfig struct {
	Secret            string `envconfig:"EBOOKPOP_JWT_SECRET"`
	Issuer            string `envconfig:"EBOOKPOP_JWT_ISSUER" default:"ebook-pop"`
	ExpirationMinutes int    `envconfig:"EBOOKPOP_JWT_EXPIRATION_MINUTES" default:"720"`
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
