package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "DOMIQ"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "DOMIQ_APP_ENV"
	EnvPort      = "DOMIQ_APP_PORT"
	EnvDBDSN     = "DOMIQ_DB_DSN"
	EnvDBHost    = "DOMIQ_DB_HOST"
	EnvDBUser    = "DOMIQ_DB_USER"
	EnvDBName    = "DOMIQ_DB_NAME"
	EnvRedisURL  = "DOMIQ_REDIS_URL"
	EnvJWTSecret = "DOMIQ_JWT_SECRET"
	EnvJWTIssuer = "DOMIQ_JWT_ISSUER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Dispatch     DispatchConfig
	Fees         FeesConfig
	Pricing      PricingConfig
	Operability  OperabilityConfig
	Geocoder     GeocoderConfig

	AuthRateLimit AuthRateLimitConfig
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
	Env          string `envconfig:"DOMIQ_APP_ENV" required:"true"`
	Port         string `envconfig:"DOMIQ_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DOMIQ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DOMIQ_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DOMIQ_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DOMIQ_DB_DSN"`
	Driver string `envconfig:"DOMIQ_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DOMIQ_DB_HOST"`
	LegacyPort     int    `envconfig:"DOMIQ_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DOMIQ_DB_USER"`
	LegacyPassword string `envconfig:"DOMIQ_DB_PASSWORD"`
	LegacyName     string `envconfig:"DOMIQ_DB_NAME"`
	LegacySSLMode  string `envconfig:"DOMIQ_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DOMIQ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DOMIQ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DOMIQ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DOMIQ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DOMIQ_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DOMIQ_REDIS_ADDR"`
	Password     string        `envconfig:"DOMIQ_REDIS_PASSWORD"`
	DB           int           `envconfig:"DOMIQ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DOMIQ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DOMIQ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DOMIQ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DOMIQ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DOMIQ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"DOMIQ_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"DOMIQ_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"DOMIQ_JWT_EXPIRATION_MINUTES" default:"1440"`
	RefreshTokenTTLMinutes int    `envconfig:"DOMIQ_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DOMIQ_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DOMIQ_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DOMIQ_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DOMIQ_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DOMIQ_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DOMIQ_AUTO_MIGRATE" default:"false"`
}

// DispatchConfig drives offer timing and courier ranking windows.
type DispatchConfig struct {
	OfferTimeout      time.Duration `envconfig:"DOMIQ_DISPATCH_OFFER_TIMEOUT" default:"30s"`
	MaxCycleWindow    time.Duration `envconfig:"DOMIQ_DISPATCH_MAX_CYCLE_WINDOW" default:"7m"`
	LocationStaleness time.Duration `envconfig:"DOMIQ_DISPATCH_LOCATION_STALENESS" default:"120s"`
	SweepInterval     time.Duration `envconfig:"DOMIQ_DISPATCH_SWEEP_INTERVAL" default:"10s"`
}

type FeesConfig struct {
	DeliveryServiceFee int64 `envconfig:"DOMIQ_FEE_DELIVERY_SERVICE" default:"300"`
	ExpiredCycleFee    int64 `envconfig:"DOMIQ_FEE_EXPIRED_CYCLE" default:"300"`
}

type PricingConfig struct {
	BaseKM        float64 `envconfig:"DOMIQ_PRICING_BASE_KM" default:"2"`
	MidKM         float64 `envconfig:"DOMIQ_PRICING_MID_KM" default:"3"`
	BasePrice     int64   `envconfig:"DOMIQ_PRICING_BASE_PRICE" default:"5000"`
	MidPrice      int64   `envconfig:"DOMIQ_PRICING_MID_PRICE" default:"6000"`
	PerKMPrice    int64   `envconfig:"DOMIQ_PRICING_PER_KM" default:"1200"`
	LongHaulKM    float64 `envconfig:"DOMIQ_PRICING_LONG_HAUL_KM" default:"10"`
	LongHaulPerKM int64   `envconfig:"DOMIQ_PRICING_LONG_HAUL_PER_KM" default:"1000"`
}

type OperabilityConfig struct {
	MinCouriers  int   `envconfig:"DOMIQ_OPERABILITY_MIN_COURIERS" default:"10"`
	BalanceFloor int64 `envconfig:"DOMIQ_OPERABILITY_BALANCE_FLOOR" default:"5000"`
}

// AuthRateLimitConfig throttles login and registration traffic. A zero
// window or zero limits disable the corresponding counter.
type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"DOMIQ_AUTH_RL_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit    int           `envconfig:"DOMIQ_AUTH_RL_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit int           `envconfig:"DOMIQ_AUTH_RL_LOGIN_EMAIL_LIMIT" default:"5"`

	RegisterWindow     time.Duration `envconfig:"DOMIQ_AUTH_RL_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"DOMIQ_AUTH_RL_REGISTER_IP_LIMIT" default:"10"`
	RegisterEmailLimit int           `envconfig:"DOMIQ_AUTH_RL_REGISTER_EMAIL_LIMIT" default:"3"`
}

type GeocoderConfig struct {
	BaseURL string `envconfig:"DOMIQ_GEOCODER_BASE_URL"`
	APIKey  string `envconfig:"DOMIQ_GEOCODER_API_KEY"`
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
