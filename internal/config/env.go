package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const defaultTimezone = "Asia/Kolkata"

type AppConfig struct {
	Port     string
	Env      string
	Location *time.Location

	LLMProvider     string
	GroqAPIKey      string
	GroqBaseURL     string
	GroqSmartModel  string
	GroqFastModel   string
	GeminiAPIKey    string
	GeminiModelName string

	RapidAPIKey      string
	RapidAPIHost     string
	TrainDemoPNR     string
	TrainLiveTimeout time.Duration

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	DatabaseDSN string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	WhatsappEnabled  bool
	WhatsappStoreDSN string

	BotName  string
	BotOwner string

	DraftSessionTimeout time.Duration
	ClassifyTimeout     time.Duration
	DraftTimeout        time.Duration
	BriefingTimeout     time.Duration
	BriefingCity        string

	RateLimitPerSecond float64
	RateLimitBurst     int
}

// LoadAppConfig reads the environment once. Missing credentials stay empty
// and the component that needs them runs degraded.
func LoadAppConfig() (AppConfig, error) {
	tz := getEnv("APP_TIMEZONE", defaultTimezone)
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return AppConfig{}, err
	}

	return AppConfig{
		Port:     getEnv("APP_PORT", "3000"),
		Env:      getEnv("APP_ENV", "development"),
		Location: loc,

		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", "groq")),
		GroqAPIKey:      os.Getenv("GROQ_API_KEY"),
		GroqBaseURL:     os.Getenv("GROQ_BASE_URL"),
		GroqSmartModel:  os.Getenv("GROQ_MODEL_SMART"),
		GroqFastModel:   os.Getenv("GROQ_MODEL_FAST"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModelName: os.Getenv("GEMINI_MODEL_NAME"),

		RapidAPIKey:      os.Getenv("RAPIDAPI_KEY"),
		RapidAPIHost:     os.Getenv("RAPIDAPI_HOST"),
		TrainDemoPNR:     os.Getenv("TRAIN_DEMO_PNR"),
		TrainLiveTimeout: getDuration("TRAIN_LIVE_TIMEOUT", 5*time.Second),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		DatabaseDSN: os.Getenv("DB_DSN"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		WhatsappEnabled:  getBool("WHATSAPP_ENABLED", false),
		WhatsappStoreDSN: getEnv("WHATSAPP_STORE_DSN", os.Getenv("DB_DSN")),

		BotName:  getEnv("BOT_NAME", "AI Buddy"),
		BotOwner: os.Getenv("BOT_OWNER"),

		DraftSessionTimeout: getDuration("DRAFT_SESSION_TIMEOUT", 30*time.Minute),
		ClassifyTimeout:     getDuration("CLASSIFY_TIMEOUT", 10*time.Second),
		DraftTimeout:        getDuration("DRAFT_TIMEOUT", 45*time.Second),
		BriefingTimeout:     getDuration("BRIEFING_TIMEOUT", 45*time.Second),
		BriefingCity:        getEnv("BRIEFING_CITY", "Vijayawada"),

		RateLimitPerSecond: getFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     getInt("RATE_LIMIT_BURST", 20),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// getDuration accepts Go durations ("45s") or plain seconds ("45").
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
