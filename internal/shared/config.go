package shared

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MetricsAddr    string
	StorageDriver  string // mysql | memory
	MySQLDSN       string
	MigrateOnStart bool
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CacheTTL       time.Duration
	MaxNights      int

	Token TokenConfig
	Mail  MailConfig
}

type TokenConfig struct {
	HashKey      []byte
	BlockKey     []byte
	TTL          time.Duration
	CookieTTL    time.Duration
	SecureCookie bool
}

type MailConfig struct {
	Transport   string // smtp | relay | log
	From        string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	RelayURL    string
	RelayKey    string
	Workers     int
	QueueSize   int
	RPS         int
	MaxAttempts int
	Timeout     time.Duration
}

func (c Config) Dev() bool { return c.AppEnv == "dev" || c.AppEnv == "development" }

// vars mirrors the environment. Durations arrive as whole seconds or days.
type vars struct {
	AppEnv         string `env:"APP_ENV" envDefault:"prod"`
	HTTPAddr       string `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsAddr    string `env:"METRICS_ADDR"`
	StorageDriver  string `env:"STORAGE_DRIVER" envDefault:"mysql"`
	MySQLDSN       string `env:"MYSQL_DSN" envDefault:"root:root@tcp(localhost:3306)/hotels?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`
	RedisAddr      string `env:"REDIS_ADDR"`
	RedisPass      string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	CacheTTLSec    int    `env:"CACHE_TTL_SECONDS" envDefault:"900"`
	MaxNights      int    `env:"MAX_NIGHTS" envDefault:"3"`

	TokenDays  int    `env:"TOKEN_EXPIRE_DAYS" envDefault:"30"`
	CookieDays int    `env:"COOKIE_EXPIRE_DAYS" envDefault:"30"`
	HashKey    string `env:"TOKEN_HASH_KEY"`
	BlockKey   string `env:"TOKEN_BLOCK_KEY"`

	MailTransport   string `env:"MAIL_TRANSPORT" envDefault:"log"`
	MailFrom        string `env:"MAIL_FROM" envDefault:"no-reply@hotel-booking.local"`
	SMTPHost        string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort        int    `env:"SMTP_PORT" envDefault:"465"`
	SMTPUser        string `env:"SMTP_USER"`
	SMTPPass        string `env:"SMTP_PASSWORD"`
	RelayURL        string `env:"MAIL_RELAY_URL"`
	RelayKey        string `env:"MAIL_RELAY_KEY"`
	MailWorkers     int    `env:"MAIL_WORKERS" envDefault:"2"`
	MailQueue       int    `env:"MAIL_QUEUE" envDefault:"256"`
	MailRPS         int    `env:"MAIL_RPS" envDefault:"5"`
	MailMaxAttempts int    `env:"MAIL_MAX_ATTEMPTS" envDefault:"4"`
	MailTimeoutSec  int    `env:"MAIL_TIMEOUT_SECONDS" envDefault:"20"`
}

// Load reads the environment once. Every collaborator receives the result
// instead of consulting the environment itself. All bad values are reported
// together.
func Load() (Config, error) {
	var (
		v    vars
		errs []string
	)
	if err := env.Parse(&v); err != nil {
		errs = append(errs, parseErrors(err)...)
	}
	days := func(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

	c := Config{
		AppEnv:         v.AppEnv,
		HTTPAddr:       v.HTTPAddr,
		MetricsAddr:    v.MetricsAddr,
		StorageDriver:  v.StorageDriver,
		MySQLDSN:       v.MySQLDSN,
		MigrateOnStart: v.MigrateOnStart,
		RedisAddr:      v.RedisAddr,
		RedisPass:      v.RedisPass,
		RedisDB:        v.RedisDB,
		CacheTTL:       time.Duration(v.CacheTTLSec) * time.Second,
		MaxNights:      v.MaxNights,
		Token: TokenConfig{
			TTL:       days(v.TokenDays),
			CookieTTL: days(v.CookieDays),
		},
		Mail: MailConfig{
			Transport:   v.MailTransport,
			From:        v.MailFrom,
			SMTPHost:    v.SMTPHost,
			SMTPPort:    v.SMTPPort,
			SMTPUser:    v.SMTPUser,
			SMTPPass:    v.SMTPPass,
			RelayURL:    v.RelayURL,
			RelayKey:    v.RelayKey,
			Workers:     v.MailWorkers,
			QueueSize:   v.MailQueue,
			RPS:         v.MailRPS,
			MaxAttempts: v.MailMaxAttempts,
			Timeout:     time.Duration(v.MailTimeoutSec) * time.Second,
		},
	}
	c.Token.SecureCookie = c.AppEnv == "prod" || c.AppEnv == "production"

	var err error
	if c.Token.HashKey, err = decodeKey("TOKEN_HASH_KEY", v.HashKey, 32); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Token.BlockKey, err = decodeKey("TOKEN_BLOCK_KEY", v.BlockKey, 32); err != nil {
		errs = append(errs, err.Error())
	}

	switch c.StorageDriver {
	case "mysql", "memory":
	default:
		errs = append(errs, "STORAGE_DRIVER must be mysql or memory")
	}
	switch c.Mail.Transport {
	case "smtp", "relay", "log":
	default:
		errs = append(errs, "MAIL_TRANSPORT must be smtp, relay or log")
	}
	if c.Mail.Transport == "relay" && c.Mail.RelayURL == "" {
		errs = append(errs, "MAIL_RELAY_URL is required for the relay transport")
	}
	if c.MaxNights < 1 {
		errs = append(errs, "MAX_NIGHTS must be >= 1")
	}
	if c.Mail.Transport == "smtp" && c.Mail.SMTPUser == "" {
		log.Warn().Msg("SMTP_USER is empty")
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return c, nil
}

// parseErrors names each failed field by its variable rather than its Go
// field name.
func parseErrors(err error) []string {
	var agg env.AggregateError
	if !errors.As(err, &agg) {
		return []string{err.Error()}
	}
	t := reflect.TypeOf(vars{})
	out := make([]string, 0, len(agg.Errors))
	for _, e := range agg.Errors {
		var pe env.ParseError
		if errors.As(e, &pe) {
			if f, ok := t.FieldByName(pe.Name); ok {
				out = append(out, fmt.Sprintf("%s: %v", f.Tag.Get("env"), pe.Err))
				continue
			}
		}
		out = append(out, e.Error())
	}
	return out
}

// decodeKey decodes a base64 key. An unset key is replaced by a random one,
// which invalidates issued tokens on restart.
func decodeKey(k, v string, size int) ([]byte, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		log.Warn().Str("key", k).Msg("not set; generating an ephemeral key")
		b := make([]byte, size)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		return b, nil
	}
	b, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		if b, err = base64.RawStdEncoding.DecodeString(v); err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
	}
	if len(b) != 16 && len(b) != 24 && len(b) != 32 {
		return nil, fmt.Errorf("%s must decode to 16, 24 or 32 bytes (got %d)", k, len(b))
	}
	return b, nil
}
