package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tracepace/coach/core/db"
)

// ServiceType selects which binary is loading configuration, so defaults
// can differ per process (the data tool server needs a DB, the prompt
// tool server does not, the controller needs both tool endpoints
// configured).
type ServiceType string

const (
	ServiceTypeController   ServiceType = "controller"
	ServiceTypeDataServer   ServiceType = "data_server"
	ServiceTypePromptServer ServiceType = "prompt_server"
)

// Config holds all application configuration.
type Config struct {
	// Env is the environment name (development, staging, production)
	Env string

	// Port is the HTTP server port
	Port string

	// DB holds database configuration
	DB db.Config

	RedisAddr string

	OTel OTelConfig

	Controller ControllerConfig

	Completion CompletionConfig
}

// CompletionConfig configures the structured-completion provider client
// every schema-constrained call site (extraction, target classification,
// session-text generation) shares.
type CompletionConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// ControllerConfig holds the recognized config options for the execution
// controller.
type ControllerConfig struct {
	DataToolEndpoint          string
	PromptToolEndpoint        string
	ToolCallTimeoutSeconds    int
	TurnDeadlineSeconds       int
	PlanDeadlineSeconds       int
	SyncRecentUserWindowHours int
}

// OTelConfig configures the OpenTelemetry exporters.
type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

// Enabled reports whether OTel export is configured.
func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

// ToolCallTimeout returns the configured tool call timeout as a duration.
func (c ControllerConfig) ToolCallTimeout() time.Duration {
	return time.Duration(c.ToolCallTimeoutSeconds) * time.Second
}

// TurnDeadline returns the configured turn deadline as a duration.
func (c ControllerConfig) TurnDeadline() time.Duration {
	return time.Duration(c.TurnDeadlineSeconds) * time.Second
}

// PlanDeadline returns the configured planning-tool deadline as a
// duration — applied instead of ToolCallTimeout for the six planning tool
// names (see internal/toolclient).
func (c ControllerConfig) PlanDeadline() time.Duration {
	return time.Duration(c.PlanDeadlineSeconds) * time.Second
}

// Load loads configuration from environment variables.
// It provides sensible defaults for development, varying the HTTP port
// default by which service is starting up.
func Load(svc ServiceType) Config {
	return Config{
		Env:  getEnv("COACH_ENV", "development"),
		Port: getEnv("PORT", defaultPort(svc)),
		DB: db.Config{
			DSN:      buildDSN(),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 2)),
		},
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", defaultServiceName(svc)),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Completion: CompletionConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Controller: ControllerConfig{
			DataToolEndpoint:          getEnv("DATA_TOOL_ENDPOINT", ""),
			PromptToolEndpoint:        getEnv("PROMPT_TOOL_ENDPOINT", ""),
			ToolCallTimeoutSeconds:    getEnvInt("TOOL_CALL_TIMEOUT_SECONDS", 30),
			TurnDeadlineSeconds:       getEnvInt("TURN_DEADLINE_SECONDS", 60),
			PlanDeadlineSeconds:       getEnvInt("PLAN_DEADLINE_SECONDS", 120),
			SyncRecentUserWindowHours: getEnvInt("SYNC_RECENT_USER_WINDOW_HOURS", 2),
		},
	}
}

func defaultServiceName(svc ServiceType) string {
	switch svc {
	case ServiceTypeDataServer:
		return "coach-data-server"
	case ServiceTypePromptServer:
		return "coach-prompt-server"
	default:
		return "coach-controller"
	}
}

func defaultPort(svc ServiceType) string {
	switch svc {
	case ServiceTypeDataServer:
		return "8081"
	case ServiceTypePromptServer:
		return "8082"
	default:
		return "8080"
	}
}

// buildDSN constructs the database connection string from individual env vars.
func buildDSN() string {
	host := getEnv("DATABASE_HOST", "localhost")
	port := getEnv("DATABASE_PORT", "5432")
	user := getEnv("DATABASE_USER", "postgres")
	password := getEnv("DATABASE_PASSWORD", "postgres")
	name := getEnv("DATABASE_NAME", "coach")
	sslMode := getEnv("DATABASE_SSLMODE", "disable")

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, name, sslMode,
	)
}

// IsProduction returns true if running in production environment.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// IsDevelopment returns true if running in development environment.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}
