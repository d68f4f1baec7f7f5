package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	ProviderSupabase     = "supabase"
	ProviderFirebase     = "firebase"
	ProviderLocalStorage = "localStorage"
)

// Config holds every runtime setting. Values come from the environment (and .env),
// optionally overlaid with AWS SSM parameters.
type Config struct {
	AppEnv         string `mapstructure:"APP_ENV"`
	Port           int    `mapstructure:"PORT"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	AdminStaticDir string `mapstructure:"ADMIN_STATIC_DIR"`

	LogLevel       string `mapstructure:"LOG_LEVEL"`
	LogPretty      bool   `mapstructure:"LOG_PRETTY"`
	LogFilePath    string `mapstructure:"LOG_FILE_PATH"`
	LogFileMaxSize int    `mapstructure:"LOG_FILE_MAX_SIZE_MB"`
	LogFileMaxAge  int    `mapstructure:"LOG_FILE_MAX_AGE_DAYS"`

	DBProvider         string `mapstructure:"DB_PROVIDER"`
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	DBHost             string `mapstructure:"SUPABASE_DB_HOST"`
	DBUser             string `mapstructure:"SUPABASE_DB_USER"`
	DBPassword         string `mapstructure:"SUPABASE_DB_PASSWORD"`
	DBName             string `mapstructure:"SUPABASE_DB_NAME"`
	DBPort             int    `mapstructure:"SUPABASE_DB_PORT"`
	DBReplicaHosts     string `mapstructure:"SUPABASE_DB_REPLICA_HOSTS"`
	SupabaseURL        string `mapstructure:"SUPABASE_URL"`
	SupabaseAnonKey    string `mapstructure:"SUPABASE_ANON_KEY"`
	FirebaseURL        string `mapstructure:"FIREBASE_DATABASE_URL"`
	FirebaseSecret     string `mapstructure:"FIREBASE_DATABASE_SECRET"`
	RedisURL           string `mapstructure:"REDIS_URL"`
	RedisNamespace     string `mapstructure:"REDIS_NAMESPACE"`
	AdminAllowlistRaw  string `mapstructure:"ADMIN_ALLOWLIST_EMAILS"`
	LocalAdminEmail    string `mapstructure:"LOCAL_ADMIN_EMAIL"`
	LocalAdminPassword string `mapstructure:"LOCAL_ADMIN_PASSWORD_HASH"`
	SessionSecret      string `mapstructure:"SESSION_SECRET"`

	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`

	ResendAPIKey     string `mapstructure:"RESEND_API_KEY"`
	NotifyEmailFrom  string `mapstructure:"NOTIFY_EMAIL_FROM"`
	NotifyEmailTo    string `mapstructure:"NOTIFY_EMAIL_TO"`
	TwilioAccountSID string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `mapstructure:"TWILIO_FROM_NUMBER"`
	NotifySMSTo      string `mapstructure:"NOTIFY_SMS_TO"`

	StorageEndpoint  string `mapstructure:"STORAGE_ENDPOINT"`
	StorageRegion    string `mapstructure:"STORAGE_REGION"`
	StorageBucket    string `mapstructure:"STORAGE_BUCKET"`
	StorageAccessKey string `mapstructure:"STORAGE_ACCESS_KEY_ID"`
	StorageSecretKey string `mapstructure:"STORAGE_SECRET_ACCESS_KEY"`
	StoragePublicURL string `mapstructure:"STORAGE_PUBLIC_URL"`

	SSMPrefix string `mapstructure:"AWS_SSM_PREFIX"`
}

var defaults = map[string]any{
	"APP_ENV":                   "development",
	"PORT":                      8080,
	"ALLOWED_ORIGINS":           "http://localhost:3000",
	"ADMIN_STATIC_DIR":          "",
	"LOG_LEVEL":                 "info",
	"LOG_PRETTY":                true,
	"LOG_FILE_PATH":             "",
	"LOG_FILE_MAX_SIZE_MB":      50,
	"LOG_FILE_MAX_AGE_DAYS":     14,
	"DB_PROVIDER":               ProviderSupabase,
	"DATABASE_URL":              "",
	"SUPABASE_DB_HOST":          "",
	"SUPABASE_DB_USER":          "",
	"SUPABASE_DB_PASSWORD":      "",
	"SUPABASE_DB_NAME":          "postgres",
	"SUPABASE_DB_PORT":          5432,
	"SUPABASE_DB_REPLICA_HOSTS": "",
	"SUPABASE_URL":              "",
	"SUPABASE_ANON_KEY":         "",
	"FIREBASE_DATABASE_URL":     "",
	"FIREBASE_DATABASE_SECRET":  "",
	"REDIS_URL":                 "redis://localhost:6379/0",
	"REDIS_NAMESPACE":           "chiaview",
	"ADMIN_ALLOWLIST_EMAILS":    "",
	"LOCAL_ADMIN_EMAIL":         "",
	"LOCAL_ADMIN_PASSWORD_HASH": "",
	"SESSION_SECRET":            "",
	"STRIPE_SECRET_KEY":         "",
	"STRIPE_WEBHOOK_SECRET":     "",
	"RESEND_API_KEY":            "",
	"NOTIFY_EMAIL_FROM":         "",
	"NOTIFY_EMAIL_TO":           "",
	"TWILIO_ACCOUNT_SID":        "",
	"TWILIO_AUTH_TOKEN":         "",
	"TWILIO_FROM_NUMBER":        "",
	"NOTIFY_SMS_TO":             "",
	"STORAGE_ENDPOINT":          "",
	"STORAGE_REGION":            "us-east-1",
	"STORAGE_BUCKET":            "",
	"STORAGE_ACCESS_KEY_ID":     "",
	"STORAGE_SECRET_ACCESS_KEY": "",
	"STORAGE_PUBLIC_URL":        "",
	"AWS_SSM_PREFIX":            "",
}

// Load reads .env (if present) and the environment. When AWS_SSM_PREFIX is set the
// parameters under that path override environment values.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	v := newViper()
	cfg, err := unmarshal(v)
	if err != nil {
		return nil, err
	}

	if cfg.SSMPrefix == "" {
		return cfg, nil
	}

	client, err := newSSMClient(ctx)
	if err != nil {
		return nil, err
	}
	if err := overlaySSM(ctx, v, client, cfg.SSMPrefix); err != nil {
		return nil, err
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	// The frontend build reads the provider from its public variable; honour it too.
	_ = v.BindEnv("DB_PROVIDER", "DB_PROVIDER", "NEXT_PUBLIC_DB_PROVIDER")
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding configuration")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBProvider {
	case ProviderSupabase, ProviderFirebase, ProviderLocalStorage:
	default:
		return errors.Errorf("unsupported DB_PROVIDER %q", c.DBProvider)
	}
	if c.Port <= 0 {
		return errors.Errorf("invalid PORT %d", c.Port)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DSN returns DATABASE_URL when set, otherwise a DSN built from the SUPABASE_DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.dsnForHost(c.DBHost)
}

// ReplicaDSNs returns one DSN per host in SUPABASE_DB_REPLICA_HOSTS.
func (c *Config) ReplicaDSNs() []string {
	var dsns []string
	for _, host := range splitList(c.DBReplicaHosts) {
		dsns = append(dsns, c.dsnForHost(host))
	}
	return dsns
}

func (c *Config) dsnForHost(host string) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=require",
		host, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func (c *Config) Origins() []string {
	return splitList(c.AllowedOrigins)
}

// AdminAllowlist returns the lower-cased admin emails. An empty list admits everyone.
func (c *Config) AdminAllowlist() []string {
	emails := splitList(c.AdminAllowlistRaw)
	for i := range emails {
		emails[i] = strings.ToLower(emails[i])
	}
	return emails
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
