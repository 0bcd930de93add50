package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Destination values for PHARMACY_DESTINATION
const (
	DestinationPharmacyAPI = "pharmacy"
	DestinationBackend     = "backend"
)

// Config holds all application configuration values
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string
	Location  *time.Location

	// Backend data store
	BackendDriver   string // "supabase" or "postgres"
	SupabaseURL     string
	SupabaseAPIKey  string
	PostgresDSN     string
	BackendTimeout  time.Duration
	AllowedOrigins  []string
	CSRFAuthKey     string
	CSRFSecure      bool
	ModalResetDelay time.Duration

	// Waitlist duplicate store
	WaitlistDBPath    string
	WaitlistRedisAddr string
	WaitlistRedisPass string

	Pharmacy PharmacyConfig

	// Notifications
	ResendAPIKey     string
	NotifyFrom       string
	NotifyStaffEmail string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
}

// PharmacyConfig holds the pharmacy-management API credentials
type PharmacyConfig struct {
	Destination string
	BaseURL     string
	APIKey      string
	Username    string
	Password    string
	PharmacyID  string
	Timeout     time.Duration
}

// MissingForRefill lists the environment variables the refill endpoint needs
// but that are not set.
func (p PharmacyConfig) MissingForRefill() []string {
	return missing(map[string]string{
		"PHARMACY_API_BASE_URL": p.BaseURL,
		"PHARMACY_API_KEY":      p.APIKey,
		"PHARMACY_ID":           p.PharmacyID,
	})
}

// MissingForTransfer lists the environment variables the transfer endpoint
// needs but that are not set.
func (p PharmacyConfig) MissingForTransfer() []string {
	return missing(map[string]string{
		"PHARMACY_API_BASE_URL": p.BaseURL,
		"PHARMACY_API_USERNAME": p.Username,
		"PHARMACY_API_PASSWORD": p.Password,
		"PHARMACY_ID":           p.PharmacyID,
	})
}

func missing(vals map[string]string) []string {
	var out []string
	for _, k := range []string{"PHARMACY_API_BASE_URL", "PHARMACY_API_KEY", "PHARMACY_API_USERNAME", "PHARMACY_API_PASSWORD", "PHARMACY_ID"} {
		if v, ok := vals[k]; ok && strings.TrimSpace(v) == "" {
			out = append(out, k)
		}
	}
	return out
}

// LoadConfig reads configuration from environment variables
func LoadConfig() *Config {
	loc, err := time.LoadLocation(get("PHARMACY_TIMEZONE", "America/New_York"))
	if err != nil {
		loc = time.Local
	}

	return &Config{
		Port:      get("PORT", "8080"),
		LogLevel:  get("LOG_LEVEL", "info"),
		LogFormat: get("LOG_FORMAT", "json"),
		Location:  loc,

		BackendDriver:   get("BACKEND_DRIVER", "supabase"),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAPIKey:  os.Getenv("SUPABASE_ANON_KEY"),
		PostgresDSN:     os.Getenv("DATABASE_URL"),
		BackendTimeout:  duration("BACKEND_TIMEOUT", 10*time.Second),
		AllowedOrigins:  list(get("ALLOWED_ORIGINS", "*")),
		CSRFAuthKey:     os.Getenv("CSRF_AUTH_KEY"),
		CSRFSecure:      get("CSRF_SECURE", "true") == "true",
		ModalResetDelay: duration("MODAL_RESET_DELAY", 300*time.Millisecond),

		WaitlistDBPath:    get("WAITLIST_DB_PATH", "waitlist.db"),
		WaitlistRedisAddr: os.Getenv("WAITLIST_REDIS_ADDR"),
		WaitlistRedisPass: os.Getenv("WAITLIST_REDIS_PASSWORD"),

		Pharmacy: PharmacyConfig{
			Destination: get("PHARMACY_DESTINATION", DestinationPharmacyAPI),
			BaseURL:     os.Getenv("PHARMACY_API_BASE_URL"),
			APIKey:      os.Getenv("PHARMACY_API_KEY"),
			Username:    os.Getenv("PHARMACY_API_USERNAME"),
			Password:    os.Getenv("PHARMACY_API_PASSWORD"),
			PharmacyID:  os.Getenv("PHARMACY_ID"),
			Timeout:     duration("PHARMACY_API_TIMEOUT", 15*time.Second),
		},

		ResendAPIKey:     os.Getenv("RESEND_API_KEY"),
		NotifyFrom:       get("NOTIFY_FROM", "Pharmacy Website <noreply@example.com>"),
		NotifyStaffEmail: os.Getenv("NOTIFY_STAFF_EMAIL"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
	}
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// duration accepts Go duration strings ("15s") or plain seconds ("15").
func duration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

func list(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
