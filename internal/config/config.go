package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config is the process-wide configuration, loaded once at startup. Provider
// credentials live here and nowhere else; clients receive their section by
// injection so nothing is constructed at import time.
type Config struct {
	Environment string
	HTTPAddr    string
	DatabaseDSN string

	Tracing Tracing

	OnePayment OnePayment
	Payport    Payport
	PayBridge  PayBridge
	PayChain   PayChain
	PlatiPay   PlatiPay
	Profiat    Profiat
}

type Tracing struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

type OnePayment struct {
	APIKey  string
	APIURL  string
	HookURL string
}

type Payport struct {
	APIv3Key    string
	APIv5Key    string
	APIURL      string
	CallbackURL string
}

type PayBridge struct {
	APIURL     string
	MerchantID string
	APISecret  string
}

type PayChain struct {
	APIKey string
	APIURL string
}

type PlatiPay struct {
	APIKey      string
	SecretKey   string
	APIURL      string
	CallbackURL string
}

type Profiat struct {
	Host          string
	KID           string
	PrivateKeyB64 string
	Platform      string
	CallbackURL   string
	TokenTTL      time.Duration
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads configuration from the environment, with a local .env file as a
// convenience for development.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8000"),
		DatabaseDSN: getEnv("DATABASE_DSN", "host=localhost user=postgres password=password dbname=panel port=5432 sslmode=disable"),
		Tracing: Tracing{
			Enabled:          getEnvBool("TRACING_ENABLED", false),
			ExporterEndpoint: getEnv("TRACING_EXPORTER_ENDPOINT", ""),
			ExporterProtocol: getEnv("TRACING_EXPORTER_PROTOCOL", "http"),
			SamplingRatio:    getEnvFloat("TRACING_SAMPLING_RATIO", 1.0),
		},
		OnePayment: OnePayment{
			APIKey:  os.Getenv("ONEPAYMENT_API_KEY_KZ"),
			APIURL:  getEnv("ONEPAYMENT_API_URL_KZ", "https://sandbox.onepayments.tech/api/v1/"),
			HookURL: os.Getenv("ONEPAYMENT_HOOK_URL_KZ"),
		},
		Payport: Payport{
			APIv3Key:    os.Getenv("PAYPORT_API3_KEY"),
			APIv5Key:    os.Getenv("PAYPORT_API5_KEY"),
			APIURL:      os.Getenv("PAYPORT_API_URL"),
			CallbackURL: os.Getenv("PAYPORT_HOOK_URL"),
		},
		PayBridge: PayBridge{
			APIURL:     os.Getenv("PAYBRIDGE_API_URL"),
			MerchantID: os.Getenv("PAYBRIDGE_MERCHANT_ID"),
			APISecret:  os.Getenv("PAYBRIDGE_API_SECRET"),
		},
		PayChain: PayChain{
			APIKey: os.Getenv("PAYCHAIN_API_KEY"),
			APIURL: getEnv("PAYCHAIN_API_URL", "https://api.paychain.fund/"),
		},
		PlatiPay: PlatiPay{
			APIKey:      os.Getenv("PLATI_PAYS_KEY"),
			SecretKey:   os.Getenv("PLATI_PAYS_SECRET"),
			APIURL:      getEnv("PLATI_PAYS_API_URL", "https://partner-api.chatlpays.com"),
			CallbackURL: os.Getenv("PLATI_PAYS_CALLBACK"),
		},
		Profiat: Profiat{
			Host:          getEnv("PROFIAT_HOST", "api.profiat.xyz"),
			KID:           os.Getenv("PROFIAT_UID"),
			PrivateKeyB64: os.Getenv("PROFIAT_KEY"),
			Platform:      os.Getenv("PROFIAT_PLATFORM"),
			CallbackURL:   os.Getenv("PROFIAT_HOOK_URL"),
			TokenTTL:      getEnvDuration("PROFIAT_TOKEN_TTL", time.Hour),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

var Module = fx.Module("config",
	fx.Provide(Load),
)
