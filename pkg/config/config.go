package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App             AppConfig
	Service         ServiceConfig
	DB              DBConfig
	Redis           RedisConfig
	JWT             JWTConfig
	Password        PasswordConfig
	AuthRateLimit   AuthRateLimitConfig
	InviteRateLimit InviteRateLimitConfig
	Invitations     InvitationsConfig
	Mailer          MailerConfig
	FeatureFlags    FeatureFlagsConfig
	GCP             GCPConfig
	PubSub          PubSubConfig
	Audit           AuditConfig
	Cron            CronConfig
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
	Env          string `envconfig:"CATERKITA_APP_ENV" required:"true"`
	Port         string `envconfig:"CATERKITA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CATERKITA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CATERKITA_LOG_WARN_STACK" default:"false"`
	SiteURL      string `envconfig:"CATERKITA_SITE_URL" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CATERKITA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CATERKITA_DB_DSN"`
	Driver string `envconfig:"CATERKITA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CATERKITA_DB_HOST"`
	LegacyPort     int    `envconfig:"CATERKITA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CATERKITA_DB_USER"`
	LegacyPassword string `envconfig:"CATERKITA_DB_PASSWORD"`
	LegacyName     string `envconfig:"CATERKITA_DB_NAME"`
	LegacySSLMode  string `envconfig:"CATERKITA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CATERKITA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CATERKITA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CATERKITA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CATERKITA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CATERKITA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CATERKITA_REDIS_ADDR"`
	Password     string        `envconfig:"CATERKITA_REDIS_PASSWORD"`
	DB           int           `envconfig:"CATERKITA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CATERKITA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CATERKITA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CATERKITA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CATERKITA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CATERKITA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CATERKITA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CATERKITA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"CATERKITA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"CATERKITA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CATERKITA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CATERKITA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CATERKITA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CATERKITA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CATERKITA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CATERKITA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CATERKITA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CATERKITA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CATERKITA_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CATERKITA_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CATERKITA_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// InviteRateLimitConfig throttles invitation resends and admin member
// creation; limits surface as Retry-After / X-RateLimit-* headers.
type InviteRateLimitConfig struct {
	ResendWindow      time.Duration `envconfig:"CATERKITA_INVITE_RATE_LIMIT_RESEND_WINDOW" default:"1h"`
	ResendLimit       int           `envconfig:"CATERKITA_INVITE_RATE_LIMIT_RESEND_LIMIT" default:"3"`
	AdminCreateWindow time.Duration `envconfig:"CATERKITA_INVITE_RATE_LIMIT_ADMIN_CREATE_WINDOW" default:"1h"`
	AdminCreateLimit  int           `envconfig:"CATERKITA_INVITE_RATE_LIMIT_ADMIN_CREATE_LIMIT" default:"20"`
}

type InvitationsConfig struct {
	TTLHours int `envconfig:"CATERKITA_INVITATION_TTL_HOURS" default:"168"`
}

// TTL returns the configured invitation lifetime.
func (i InvitationsConfig) TTL() time.Duration {
	if i.TTLHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(i.TTLHours) * time.Hour
}

type MailerConfig struct {
	Region    string `envconfig:"CATERKITA_SES_REGION" default:"ap-southeast-1"`
	FromEmail string `envconfig:"CATERKITA_SES_FROM_EMAIL"`
	ReplyTo   string `envconfig:"CATERKITA_SES_REPLY_TO"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CATERKITA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CATERKITA_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"CATERKITA_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"CATERKITA_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	AuditTopic        string `envconfig:"CATERKITA_PUBSUB_AUDIT_TOPIC" default:"ck-audit-events"`
	AuditSubscription string `envconfig:"CATERKITA_PUBSUB_AUDIT_SUBSCRIPTION"`
}

type AuditConfig struct {
	BatchSize      int `envconfig:"CATERKITA_AUDIT_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CATERKITA_AUDIT_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CATERKITA_AUDIT_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval             time.Duration `envconfig:"CATERKITA_CRON_INTERVAL" default:"1h"`
	ShiftCheckoutCutoff  time.Duration `envconfig:"CATERKITA_CRON_SHIFT_CHECKOUT_CUTOFF" default:"18h"`
	NotificationMaxAge   time.Duration `envconfig:"CATERKITA_CRON_NOTIFICATION_MAX_AGE" default:"2160h"`
	InvitationGraceAfter time.Duration `envconfig:"CATERKITA_CRON_INVITATION_GRACE" default:"0"`
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
