// Package config provides application configuration loaded from environment
// variables (and an optional .env file) with defaults and validation. It
// centralizes the backend connection, the local store, server timeouts,
// logging, rate limiting, and observability.
package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// RequestTimeout bounds every call to the top-up backend. It is not
// configurable.
const RequestTimeout = 30 * time.Second

// EndpointsConfig names the backend paths. They are matched by substring for
// the 403 policy, so keep them distinct.
type EndpointsConfig struct {
	Auth          string // TOPUP_ENDPOINT_AUTH
	FindSuppliers string // TOPUP_ENDPOINT_FIND_SUPPLIERS
	Buy           string // TOPUP_ENDPOINT_BUY
}

// BackendConfig describes the top-up backend and the fixed values the
// portal sends with every purchase.
type BackendConfig struct {
	APIBase     string        // TOPUP_API_BASE
	Timeout     time.Duration // RequestTimeout
	Username    string        // TOPUP_USERNAME, login default
	Commerce    int64         // TOPUP_COMMERCE, login default
	PointOfSale string        // TOPUP_POINT_OF_SALE
	CityCode    string        // TOPUP_CITY_CODE
	Latitude    string        // TOPUP_DEFAULT_LATITUDE
	Longitude   string        // TOPUP_DEFAULT_LONGITUDE
	Endpoints   EndpointsConfig
}

// StoreConfig holds local store settings.
type StoreConfig struct {
	DBPath           string        // DB_PATH
	SupplierCacheTTL time.Duration // SUPPLIER_CACHE_TTL
	HistoryLimit     int           // HISTORY_LIMIT
}

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-topup-portal")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // must outlast RequestTimeout
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	Backend BackendConfig
	Store   StoreConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables, applies defaults,
// normalizes values, and validates the result. A .env file in the working
// directory is read first; variables already set in the environment win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", RequestTimeout+5*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		Backend: BackendConfig{
			APIBase:     strings.TrimRight(strings.TrimSpace(getenv("TOPUP_API_BASE", "")), "/"),
			Timeout:     RequestTimeout,
			Username:    getenv("TOPUP_USERNAME", ""),
			Commerce:    getint64("TOPUP_COMMERCE", 0),
			PointOfSale: strings.TrimSpace(getenv("TOPUP_POINT_OF_SALE", "")),
			CityCode:    getenv("TOPUP_CITY_CODE", ""),
			Latitude:    getenv("TOPUP_DEFAULT_LATITUDE", ""),
			Longitude:   getenv("TOPUP_DEFAULT_LONGITUDE", ""),
			Endpoints: EndpointsConfig{
				Auth:          getenv("TOPUP_ENDPOINT_AUTH", "/auth"),
				FindSuppliers: getenv("TOPUP_ENDPOINT_FIND_SUPPLIERS", "/recharge/find-suppliers"),
				Buy:           getenv("TOPUP_ENDPOINT_BUY", "/recharge/buy"),
			},
		},
		Store: StoreConfig{
			DBPath:           getenv("DB_PATH", "topup.db"),
			SupplierCacheTTL: getdur("SUPPLIER_CACHE_TTL", 24*time.Hour),
			HistoryLimit:     getint("HISTORY_LIMIT", 100),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-topup-portal"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	if !oneOf(cfg.GinMode, "debug", "release", "test") {
		cfg.GinMode = "release"
	}

	return cfg, cfg.validate()
}

// validate returns the first violated rule, in declaration order.
func (c Config) validate() error {
	e := c.Backend.Endpoints
	rules := []struct {
		bad bool
		msg string
	}{
		{!oneOf(c.LogLevel, "debug", "info", "warn", "error", "fatal", "panic"),
			"LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic"},
		{strings.TrimSpace(c.Port) == "", "PORT must not be empty"},
		{c.ReadTimeout <= 0 || c.ReadHeaderTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0,
			"timeouts must be positive durations"},
		{c.MaxHeaderBytes <= 0, "MAX_HEADER_BYTES must be > 0"},
		{c.Backend.APIBase == "", "TOPUP_API_BASE must not be empty"},
		{!absoluteHTTP(c.Backend.APIBase), "TOPUP_API_BASE must be an absolute http(s) URL"},
		{!numericOrEmpty(c.Backend.PointOfSale), "TOPUP_POINT_OF_SALE must be numeric"},
		{blank(e.Auth) || blank(e.FindSuppliers) || blank(e.Buy), "TOPUP_ENDPOINT_* must not be empty"},
		{blank(c.Store.DBPath), "DB_PATH must not be empty"},
		{c.Store.SupplierCacheTTL <= 0, "SUPPLIER_CACHE_TTL must be > 0"},
		{c.Store.HistoryLimit < 1, "HISTORY_LIMIT must be >= 1"},
		{c.RateRPS < 0, "RATE_RPS must be >= 0"},
		{c.RateBurst < 1, "RATE_BURST must be >= 1"},
		{c.Security.HSTSMaxAge < 0, "HSTS_MAX_AGE must be >= 0"},
		{c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]"},
	}
	for _, r := range rules {
		if r.bad {
			return errors.New(r.msg)
		}
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func absoluteHTTP(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// numericOrEmpty accepts an unset point of sale; TopUp rejects it later.
func numericOrEmpty(s string) bool {
	if s == "" {
		return true
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// ---- helpers ----

// lookup returns the raw value of k. An empty value counts as unset; a
// value of spaces does not, so validation can reject it.
func lookup(k string) (string, bool) {
	v, ok := os.LookupEnv(k)
	return v, ok && v != ""
}

// parsed returns parse(trimmed value of k), or def when k is unset or
// unparsable.
func parsed[T any](k string, def T, parse func(string) (T, error)) T {
	if v, ok := lookup(k); ok {
		if out, err := parse(strings.TrimSpace(v)); err == nil {
			return out
		}
	}
	return def
}

func getenv(k, def string) string {
	if v, ok := lookup(k); ok {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	return parsed(k, def, func(v string) (float64, error) { return strconv.ParseFloat(v, 64) })
}

func getint(k string, def int) int { return parsed(k, def, strconv.Atoi) }

func getint64(k string, def int64) int64 {
	return parsed(k, def, func(v string) (int64, error) { return strconv.ParseInt(v, 10, 64) })
}

func getdur(k string, def time.Duration) time.Duration { return parsed(k, def, time.ParseDuration) }

func getbool(k string, def bool) bool {
	v, _ := lookup(k)
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	return def
}

// splitCSV splits a comma list, dropping blank items. Empty input is nil.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
