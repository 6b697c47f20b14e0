package config

import (
	"log"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/you/go-flight-deals/internal/service"
)

type Config struct {
	HTTPAddr    string
	JWTSecret   string
	JWTUser     string
	JWTPassword string

	AmadeusURL          string
	AmadeusClientID     string
	AmadeusClientSecret string

	TelegramToken  string
	TelegramChatID int64

	MailgunRecipients []string

	SearchRatePerSec float64
	RunLogSize       int

	Criteria service.Criteria
}

func Load() *Config {
	v := viper.New()

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("auth_user", "demo")
	v.SetDefault("auth_pass", "demo123")

	v.SetDefault("amadeus_url", "https://test.api.amadeus.com")

	v.SetDefault("search_rate_per_sec", 2.0)
	v.SetDefault("run_log_size", 20)

	v.SetDefault("origin", "SFO")
	v.SetDefault("destination", "OGG")
	v.SetDefault("start_date", "2025-07-31")
	v.SetDefault("flexibility", 3)
	v.SetDefault("min_stay_days", 7)
	v.SetDefault("max_stay_days", 8)
	v.SetDefault("max_price", 500.0)
	v.SetDefault("currency", "USD")
	v.SetDefault("adults", 1)
	v.SetDefault("max_results", 50)
	v.SetDefault("non_stop", false)

	if path := os.Getenv("FLIGHTDEALS_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		// Fallback to conventional locations for local dev
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/flightdeals")
	}

	if err := v.ReadInConfig(); err != nil {
		log.Printf("no config file found, using defaults + env vars: %v", err)
	}

	v.AutomaticEnv()

	startDate, err := time.Parse("2006-01-02", v.GetString("start_date"))
	if err != nil {
		log.Fatalf("bad start_date: %v", err)
	}

	criteria := service.Criteria{
		Origin:      v.GetString("origin"),
		Destination: v.GetString("destination"),
		StartDate:   startDate,
		Flexibility: v.GetInt("flexibility"),
		MinStay:     v.GetInt("min_stay_days"),
		MaxStay:     v.GetInt("max_stay_days"),
		MaxPrice:    v.GetFloat64("max_price"),
		Currency:    v.GetString("currency"),
		Adults:      v.GetInt("adults"),
		MaxResults:  v.GetInt("max_results"),
		NonStop:     v.GetBool("non_stop"),
	}
	if err := criteria.Validate(); err != nil {
		log.Fatalf("bad search criteria: %v", err)
	}

	return &Config{
		HTTPAddr:            v.GetString("http_addr"),
		JWTSecret:           v.GetString("jwt_secret"),
		JWTUser:             v.GetString("auth_user"),
		JWTPassword:         v.GetString("auth_pass"),
		AmadeusURL:          v.GetString("amadeus_url"),
		AmadeusClientID:     v.GetString("amadeus_client_id"),
		AmadeusClientSecret: v.GetString("amadeus_client_secret"),
		TelegramToken:       v.GetString("telegram_bot_token"),
		TelegramChatID:      v.GetInt64("telegram_chat_id"),
		MailgunRecipients:   v.GetStringSlice("mailgun_recipients"),
		SearchRatePerSec:    v.GetFloat64("search_rate_per_sec"),
		RunLogSize:          v.GetInt("run_log_size"),
		Criteria:            criteria,
	}
}
