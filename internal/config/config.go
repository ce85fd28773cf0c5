package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/example/studybot/internal/planner"
	"github.com/example/studybot/internal/spaced_repetition"
	"github.com/joho/godotenv"
)

// Store backends recognized by STORE_BACKEND.
const (
	BackendSQL    = "sql"
	BackendNotion = "notion"
)

// AppConfig holds all configuration for the application. Scheduling and
// planning tunables are carried explicitly so runs are reproducible; nothing
// reads ambient process state after Load returns.
type AppConfig struct {
	// Storage
	StoreBackend string // "sql" (sqlite/postgres via DB_TYPE) or "notion"
	DBType       string // "sqlite" or "postgres"
	SQLitePath   string
	PostgresURL  string

	// Notion catalog
	NotionAPIKey   string
	NotionQuizDB   string
	NotionEventsDB string
	NotionPlansDB  string

	// AI grading (OpenAI-compatible endpoint)
	AIAPIKey  string
	AIBaseURL string
	AIModel   string

	// Telegram delivery
	TelegramToken  string
	TelegramChatID int64

	// Daily plan job
	PlanHour    int // hour of day (0-23) when the serve daemon plans
	HorizonDays int

	// Logging
	LogLevel  string
	LogFormat string

	// Review scheduling bounds
	EaseFloor       float64
	EaseCap         float64
	RelearnInterval int
	BootstrapFirst  int
	BootstrapSecond int

	// Plan selection constraints
	MinSubjectsPerDay  int
	MaxSubjectsPerDay  int
	MinItemsPerSubject int
	MaxItemsPerSubject int
	MaxItemsPerDay     int
}

// Load reads configuration from environment variables and a .env file if one
// is present. Existing env variables are not overridden by the file.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.StoreBackend = strings.ToLower(getEnv("STORE_BACKEND", BackendSQL))
	if cfg.StoreBackend != BackendSQL && cfg.StoreBackend != BackendNotion {
		return nil, fmt.Errorf("invalid STORE_BACKEND %q (want %q or %q)", cfg.StoreBackend, BackendSQL, BackendNotion)
	}

	cfg.DBType = strings.ToLower(getEnv("DB_TYPE", "sqlite"))
	cfg.SQLitePath = getEnv("SQLITE_PATH", "data/studybot.db")
	cfg.PostgresURL = os.Getenv("DATABASE_URL")
	if cfg.StoreBackend == BackendSQL && cfg.DBType == "postgres" && cfg.PostgresURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set for DB_TYPE=postgres")
	}

	cfg.NotionAPIKey = os.Getenv("NOTION_API_KEY")
	cfg.NotionQuizDB = os.Getenv("NOTION_QUIZ_DB_ID")
	cfg.NotionEventsDB = os.Getenv("NOTION_EVENTS_DB_ID")
	cfg.NotionPlansDB = os.Getenv("NOTION_PLANS_DB_ID")
	if cfg.StoreBackend == BackendNotion {
		if cfg.NotionAPIKey == "" {
			return nil, fmt.Errorf("NOTION_API_KEY is not set for STORE_BACKEND=notion")
		}
		if cfg.NotionQuizDB == "" || cfg.NotionEventsDB == "" || cfg.NotionPlansDB == "" {
			return nil, fmt.Errorf("NOTION_QUIZ_DB_ID, NOTION_EVENTS_DB_ID and NOTION_PLANS_DB_ID must all be set for STORE_BACKEND=notion")
		}
	}

	cfg.AIAPIKey = os.Getenv("DEEPSEEK_API_KEY")
	cfg.AIBaseURL = getEnv("AI_BASE_URL", "https://api.deepseek.com/v1")
	cfg.AIModel = getEnv("AI_MODEL", "deepseek-chat")

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	var err error
	if cfg.PlanHour, err = getEnvInt("PLAN_HOUR", 8); err != nil {
		return nil, err
	}
	if cfg.PlanHour < 0 || cfg.PlanHour > 23 {
		return nil, fmt.Errorf("PLAN_HOUR %d out of range 0-23", cfg.PlanHour)
	}
	if cfg.HorizonDays, err = getEnvInt("HORIZON_DAYS", 1); err != nil {
		return nil, err
	}
	if cfg.HorizonDays < 1 {
		return nil, fmt.Errorf("HORIZON_DAYS must be at least 1")
	}

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "text")

	if cfg.EaseFloor, err = getEnvFloat("EASE_FLOOR", 1.3); err != nil {
		return nil, err
	}
	if cfg.EaseCap, err = getEnvFloat("EASE_CAP", 2.8); err != nil {
		return nil, err
	}
	if cfg.RelearnInterval, err = getEnvInt("RELEARN_INTERVAL", 1); err != nil {
		return nil, err
	}
	if cfg.BootstrapFirst, err = getEnvInt("BOOTSTRAP_FIRST_INTERVAL", 1); err != nil {
		return nil, err
	}
	if cfg.BootstrapSecond, err = getEnvInt("BOOTSTRAP_SECOND_INTERVAL", 6); err != nil {
		return nil, err
	}

	if cfg.MinSubjectsPerDay, err = getEnvInt("MIN_SUBJECTS_PER_DAY", 2); err != nil {
		return nil, err
	}
	if cfg.MaxSubjectsPerDay, err = getEnvInt("MAX_SUBJECTS_PER_DAY", 3); err != nil {
		return nil, err
	}
	if cfg.MinItemsPerSubject, err = getEnvInt("MIN_ITEMS_PER_SUBJECT", 2); err != nil {
		return nil, err
	}
	if cfg.MaxItemsPerSubject, err = getEnvInt("MAX_ITEMS_PER_SUBJECT", 2); err != nil {
		return nil, err
	}
	if cfg.MaxItemsPerDay, err = getEnvInt("MAX_ITEMS_PER_DAY", 6); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SchedulerConfig maps the loaded tunables onto the review scheduler bounds.
func (c *AppConfig) SchedulerConfig() spaced_repetition.Config {
	cfg := spaced_repetition.DefaultConfig()
	cfg.EaseFloor = c.EaseFloor
	cfg.EaseCap = c.EaseCap
	cfg.RelearnInterval = c.RelearnInterval
	cfg.BootstrapIntervals = []int{c.BootstrapFirst, c.BootstrapSecond}
	return cfg
}

// PlanConstraints maps the loaded tunables onto the plan selector constraints.
func (c *AppConfig) PlanConstraints() planner.Constraints {
	return planner.Constraints{
		MinSubjectsPerDay:  c.MinSubjectsPerDay,
		MaxSubjectsPerDay:  c.MaxSubjectsPerDay,
		MinItemsPerSubject: c.MinItemsPerSubject,
		MaxItemsPerSubject: c.MaxItemsPerSubject,
		MaxItemsPerDay:     c.MaxItemsPerDay,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
