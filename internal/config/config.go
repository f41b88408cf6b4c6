// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr string

	// Randomness provider
	RandomAPIURL string
	RandomAPIKey string

	// Email provider
	MailAPIURL   string
	MailAPIKey   string
	MailFrom     string
	AdminEmail   string
	SendInterval time.Duration

	// Draw settings
	LuckyDipAmount   int64 // pence, per lucky-dip winner
	LuckyDipWinners  int
	GuardCooldown    time.Duration
	DrawSchedule     string // cron expression for the scheduled monthly draw
	ScheduledJackpot int64  // pence, jackpot for scheduled draws

	MigrationsDir string
}

func Load() Config {
	return Config{
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		RandomAPIURL: getenv("RANDOM_API_URL", "https://api.csrng.example.com"),
		RandomAPIKey: os.Getenv("RANDOM_API_KEY"),

		MailAPIURL:   getenv("MAIL_API_URL", "https://api.mail.example.com"),
		MailAPIKey:   os.Getenv("MAIL_API_KEY"),
		MailFrom:     getenv("MAIL_FROM", "draw@kelbrookafc.example.com"),
		AdminEmail:   getenv("ADMIN_EMAIL", "secretary@kelbrookafc.example.com"),
		SendInterval: getduration("MAIL_SEND_INTERVAL", 600*time.Millisecond),

		LuckyDipAmount:   getint64("LUCKY_DIP_AMOUNT", 1000), // £10.00
		LuckyDipWinners:  getint("LUCKY_DIP_WINNERS", 5),
		GuardCooldown:    getduration("DRAW_GUARD_COOLDOWN", 5*time.Minute),
		DrawSchedule:     getenv("DRAW_SCHEDULE", "0 20 1 * *"), // 1st of the month, 20:00
		ScheduledJackpot: getint64("DRAW_JACKPOT_AMOUNT", 10000), // £100.00

		MigrationsDir: getenv("MIGRATIONS_DIR", "migrations"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getint64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
