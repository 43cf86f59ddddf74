package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB         int    `mapstructure:"REDIS_CACHE_DB"`
	RedisLockDB          int    `mapstructure:"REDIS_LOCK_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// Firebase service account for FCM pushes.
	FirebaseCredFile string `mapstructure:"FIREBASE_CRED_FILE"`

	// Scheduling policy. All slot math runs in the canonical timezone;
	// business-hour boundaries are minutes from midnight.
	CanonicalTZ      string `mapstructure:"CANONICAL_TZ"`
	BusinessOpenMin  int    `mapstructure:"BUSINESS_OPEN_MIN"`
	BusinessCloseMin int    `mapstructure:"BUSINESS_CLOSE_MIN"`
	SlotStepMin      int    `mapstructure:"SLOT_STEP_MIN"`
	MinLeadTimeMin   int    `mapstructure:"MIN_LEAD_TIME_MIN"`
	MaxDurationMin   int    `mapstructure:"MAX_APPT_DURATION_MIN"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_LOCK_DB", 1)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "lexbook")
	viper.SetDefault("FIREBASE_CRED_FILE", "serviceAccountKey.json")
	viper.SetDefault("CANONICAL_TZ", "UTC")
	viper.SetDefault("BUSINESS_OPEN_MIN", 480)   // 08:00
	viper.SetDefault("BUSINESS_CLOSE_MIN", 1080) // 18:00
	viper.SetDefault("SLOT_STEP_MIN", 30)
	viper.SetDefault("MIN_LEAD_TIME_MIN", 30)
	viper.SetDefault("MAX_APPT_DURATION_MIN", 240)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// CanonicalLocation resolves the configured canonical timezone.
func CanonicalLocation() *time.Location {
	loc, err := time.LoadLocation(AppConfig.CanonicalTZ)
	if err != nil {
		log.Fatalf("Invalid CANONICAL_TZ %q: %v", AppConfig.CanonicalTZ, err)
	}
	return loc
}
