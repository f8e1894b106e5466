package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Env        string
	DB         db
	Server     server
	Logger     logger
	Sync       sync
	Tables     tables
	Validation validation
	Telemetry  telemetry
}

type db struct {
	Driver      string `env:"STORAGE_DRIVER"`
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type server struct {
	RunAddress      string        `env:"RUN_ADDRESS"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

type logger struct {
	LogLevel string `env:"LOG_LEVEL"`
}

type sync struct {
	DefaultCollections []string      `env:"SYNC_DEFAULT_COLLECTIONS"`
	PageLimit          int           `env:"SYNC_PAGE_LIMIT"`
	MaxPageLimit       int           `env:"SYNC_MAX_PAGE_LIMIT"`
	MaxPages           int           `env:"SYNC_MAX_PAGES"`
	DeletedLimit       int           `env:"SYNC_DELETED_LIMIT"`
	Interval           time.Duration `env:"SYNC_INTERVAL"`
	HeartbeatWindow    time.Duration `env:"SYNC_HEARTBEAT_WINDOW"`
	SessionLimit       int           `env:"SYNC_SESSION_LIMIT"`
	PollLimit          int           `env:"SYNC_POLL_LIMIT"`
	PushWorkers        int           `env:"SYNC_PUSH_WORKERS"`
	GlobalRoles        []string      `env:"SYNC_GLOBAL_ROLES"`
	TriggerToken       string        `env:"SYNC_TRIGGER_TOKEN"`
}

type tables struct {
	Documents     string `env:"SYNC_DOCUMENT_TABLE"`
	Tombstones    string `env:"SYNC_TOMBSTONE_TABLE"`
	Users         string `env:"SYNC_USER_TABLE"`
	Sessions      string `env:"SYNC_SESSION_TABLE"`
	Notifications string `env:"SYNC_NOTIFICATION_TABLE"`
	Realtime      string `env:"SYNC_REALTIME_TABLE"`
	Audit         string `env:"SYNC_AUDIT_TABLE"`
}

type validation struct {
	RulesPath string `env:"VALIDATION_RULES_PATH"`
}

type telemetry struct {
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool   `env:"OTEL_INSECURE"`
	ServiceName string `env:"OTEL_SERVICE_NAME"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", EnvLocal)
	v.SetDefault("run_address", ":8080")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("storage_driver", DriverPostgres)
	v.SetDefault("migrations_path", "migrations")
	v.SetDefault("log_level", "")

	v.SetDefault("sync_default_collections", []string{"patients", "appointments", "medical_records", "prescriptions", "facilities"})
	v.SetDefault("sync_page_limit", 100)
	v.SetDefault("sync_max_page_limit", 500)
	v.SetDefault("sync_max_pages", 10)
	v.SetDefault("sync_deleted_limit", 50)
	v.SetDefault("sync_interval", 5*time.Minute)
	v.SetDefault("sync_heartbeat_window", 300*time.Second)
	v.SetDefault("sync_session_limit", 100)
	v.SetDefault("sync_poll_limit", 50)
	v.SetDefault("sync_push_workers", 8)
	v.SetDefault("sync_global_roles", []string{"admin", "super_admin"})
	v.SetDefault("sync_trigger_token", "")

	v.SetDefault("sync_document_table", "documents")
	v.SetDefault("sync_tombstone_table", "deletion_log")
	v.SetDefault("sync_user_table", "users")
	v.SetDefault("sync_session_table", "sync_sessions")
	v.SetDefault("sync_notification_table", "sync_notifications")
	v.SetDefault("sync_realtime_table", "realtime_updates")
	v.SetDefault("sync_audit_table", "sync_operations")

	v.SetDefault("validation_rules_path", "configs/validation_rules.yaml")
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_insecure", false)
	v.SetDefault("otel_service_name", "medsync")
}

// MustLoad загружает конфигурацию и завершает процесс при ошибке
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return cfg
}

// Load читает .env (если есть), переменные окружения и необязательный файл
// конфигурации path. Переменные окружения важнее файла.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Env: v.GetString("app_env"),
		DB: db{
			Driver:      strings.ToLower(v.GetString("storage_driver")),
			DatabaseURI: v.GetString("database_uri"),
			Migrations:  v.GetString("migrations_path"),
		},
		Server: server{
			RunAddress:      v.GetString("run_address"),
			ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		},
		Logger: logger{LogLevel: v.GetString("log_level")},
		Sync: sync{
			DefaultCollections: stringList(v, "sync_default_collections"),
			PageLimit:          v.GetInt("sync_page_limit"),
			MaxPageLimit:       v.GetInt("sync_max_page_limit"),
			MaxPages:           v.GetInt("sync_max_pages"),
			DeletedLimit:       v.GetInt("sync_deleted_limit"),
			Interval:           v.GetDuration("sync_interval"),
			HeartbeatWindow:    v.GetDuration("sync_heartbeat_window"),
			SessionLimit:       v.GetInt("sync_session_limit"),
			PollLimit:          v.GetInt("sync_poll_limit"),
			PushWorkers:        v.GetInt("sync_push_workers"),
			GlobalRoles:        stringList(v, "sync_global_roles"),
			TriggerToken:       v.GetString("sync_trigger_token"),
		},
		Tables: tables{
			Documents:     v.GetString("sync_document_table"),
			Tombstones:    v.GetString("sync_tombstone_table"),
			Users:         v.GetString("sync_user_table"),
			Sessions:      v.GetString("sync_session_table"),
			Notifications: v.GetString("sync_notification_table"),
			Realtime:      v.GetString("sync_realtime_table"),
			Audit:         v.GetString("sync_audit_table"),
		},
		Validation: validation{RulesPath: v.GetString("validation_rules_path")},
		Telemetry: telemetry{
			Endpoint:    v.GetString("otel_exporter_otlp_endpoint"),
			Insecure:    v.GetBool("otel_insecure"),
			ServiceName: v.GetString("otel_service_name"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverPostgres:
		if c.DB.DatabaseURI == "" {
			return fmt.Errorf("DATABASE_URI is required for storage driver %q", c.DB.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.DB.Driver)
	}
	return nil
}

// stringList читает список из переменной окружения через запятую или из файла как массив
func stringList(v *viper.Viper, key string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
